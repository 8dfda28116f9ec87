// Package qivalue implements the qi runtime value algebra (spec
// component C4): a sum type mirroring qitype.Type variant for variant,
// plus the type-annotated Dynamic cell that bridges a value to an
// explicit wire signature.
package qivalue

import (
	"fmt"
	"unicode/utf8"

	"github.com/aldebaran/qimessaging/pkg/qitype"
)

// MapEntry is one key/value pair of a Map value. Map preserves
// insertion order and does not enforce key uniqueness (spec.md §4.4);
// a decode that needs uniqueness must check it itself, see
// DecodeUniqueMap.
type MapEntry struct {
	Key   Value
	Value Value
}

// Value is a node in the qi runtime value algebra. Only the fields
// relevant to Kind are meaningful; use the New* constructors rather
// than building a Value literal directly.
type Value struct {
	Kind qitype.Kind

	b   bool
	i8  int8
	u8  uint8
	i16 int16
	u16 uint16
	i32 int32
	u32 uint32
	i64 int64
	u64 uint64
	f32 float32
	f64 float64

	// String and Raw both store their bytes here; String additionally
	// expects (but, per spec.md §4.5, does not strictly require) valid
	// UTF-8 — see NewStringBytes.
	bytes []byte

	// Option
	optionType *qitype.Type // element type, always known even when absent
	optionElem *Value       // nil means absent

	// List
	listElemType qitype.Type
	list         []Value

	// Map
	mapKeyType   qitype.Type
	mapValueType qitype.Type
	entries      []MapEntry

	// Tuple
	tupleName     string
	tupleFields   []string
	tupleElements []Value

	// Dynamic
	dynType *qitype.Type
	dynElem *Value
}

func NewUnit() Value         { return Value{Kind: qitype.Unit} }
func NewBool(v bool) Value   { return Value{Kind: qitype.Bool, b: v} }
func NewInt8(v int8) Value   { return Value{Kind: qitype.Int8, i8: v} }
func NewUInt8(v uint8) Value { return Value{Kind: qitype.UInt8, u8: v} }
func NewInt16(v int16) Value   { return Value{Kind: qitype.Int16, i16: v} }
func NewUInt16(v uint16) Value { return Value{Kind: qitype.UInt16, u16: v} }
func NewInt32(v int32) Value   { return Value{Kind: qitype.Int32, i32: v} }
func NewUInt32(v uint32) Value { return Value{Kind: qitype.UInt32, u32: v} }
func NewInt64(v int64) Value   { return Value{Kind: qitype.Int64, i64: v} }
func NewUInt64(v uint64) Value { return Value{Kind: qitype.UInt64, u64: v} }
func NewFloat32(v float32) Value { return Value{Kind: qitype.Float32, f32: v} }
func NewFloat64(v float64) Value { return Value{Kind: qitype.Float64, f64: v} }

// NewString constructs a String value from a Go string, which is
// always valid UTF-8 by construction.
func NewString(v string) Value { return Value{Kind: qitype.String, bytes: []byte(v)} }

// NewStringBytes constructs a String value from raw bytes without
// validating UTF-8, per spec.md §4.5 ("a dedicated string value may
// store either validated UTF-8 or raw bytes"). Use Display to render
// it safely.
func NewStringBytes(b []byte) Value { return Value{Kind: qitype.String, bytes: b} }

func NewRaw(b []byte) Value { return Value{Kind: qitype.Raw, bytes: b} }

func NewObject(id uint32) Value { return Value{Kind: qitype.Object, u32: id} }

// NewOptionSome builds a present Option(elemType) wrapping v. v's
// runtime type must be convertible to elemType.
func NewOptionSome(elemType qitype.Type, v Value) (Value, error) {
	if !v.RuntimeType().ConvertibleTo(elemType) {
		return Value{}, &TypeMismatchError{Expected: elemType, Actual: v.RuntimeType()}
	}
	return Value{Kind: qitype.Option, optionType: &elemType, optionElem: &v}, nil
}

// NewOptionNone builds an absent Option(elemType).
func NewOptionNone(elemType qitype.Type) Value {
	return Value{Kind: qitype.Option, optionType: &elemType}
}

// NewList builds a List(elemType) from items, each of which must be
// convertible to elemType.
func NewList(elemType qitype.Type, items []Value) (Value, error) {
	for i, it := range items {
		if !it.RuntimeType().ConvertibleTo(elemType) {
			return Value{}, fmt.Errorf("qivalue: list element %d: %w", i, &TypeMismatchError{Expected: elemType, Actual: it.RuntimeType()})
		}
	}
	return Value{Kind: qitype.List, listElemType: elemType, list: items}, nil
}

// NewMap builds a Map(keyType,valueType) from entries in the given
// order, preserving duplicates (spec.md §4.4).
func NewMap(keyType, valueType qitype.Type, entries []MapEntry) (Value, error) {
	for i, e := range entries {
		if !e.Key.RuntimeType().ConvertibleTo(keyType) {
			return Value{}, fmt.Errorf("qivalue: map entry %d key: %w", i, &TypeMismatchError{Expected: keyType, Actual: e.Key.RuntimeType()})
		}
		if !e.Value.RuntimeType().ConvertibleTo(valueType) {
			return Value{}, fmt.Errorf("qivalue: map entry %d value: %w", i, &TypeMismatchError{Expected: valueType, Actual: e.Value.RuntimeType()})
		}
	}
	return Value{Kind: qitype.Map, mapKeyType: keyType, mapValueType: valueType, entries: entries}, nil
}

// NewTuple builds a plain (unannotated) tuple value.
func NewTuple(elements ...Value) Value {
	return Value{Kind: qitype.Tuple, tupleElements: elements}
}

// NewStruct builds a tuple value annotated with a struct name and
// field names, mirroring qitype.NewStruct.
func NewStruct(name string, fields []string, elements ...Value) Value {
	if len(fields) != len(elements) {
		panic("qivalue: NewStruct field count does not match element count")
	}
	return Value{Kind: qitype.Tuple, tupleName: name, tupleFields: fields, tupleElements: elements}
}

// NewDynamic builds a Dynamic(v,t) cell. Construction fails unless v's
// runtime type is convertible to t (spec.md §3.2).
func NewDynamic(v Value, t qitype.Type) (Value, error) {
	if !v.RuntimeType().ConvertibleTo(t) {
		return Value{}, &TypeMismatchError{Expected: t, Actual: v.RuntimeType()}
	}
	return Value{Kind: qitype.Dynamic, dynType: &t, dynElem: &v}, nil
}

// TypeMismatchError reports that a value's runtime type was not
// convertible to an expected type.
type TypeMismatchError struct {
	Expected, Actual qitype.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// DynamicValueIsNotAStringError is returned by AsErrorDescription (and
// any other decoder expecting a Dynamic wrapping a String) when the
// Dynamic's inner value is not a String.
type DynamicValueIsNotAStringError struct{ Actual qitype.Type }

func (e *DynamicValueIsNotAStringError) Error() string {
	return fmt.Sprintf("dynamic value is not a string: got %s", e.Actual)
}

// Bool, Int8, ... accessors panic if Kind does not match; callers are
// expected to check RuntimeType() or use the decode helpers below when
// the kind is not already known from context.

func (v Value) Bool() bool       { v.mustKind(qitype.Bool); return v.b }
func (v Value) Int8() int8       { v.mustKind(qitype.Int8); return v.i8 }
func (v Value) UInt8() uint8     { v.mustKind(qitype.UInt8); return v.u8 }
func (v Value) Int16() int16     { v.mustKind(qitype.Int16); return v.i16 }
func (v Value) UInt16() uint16   { v.mustKind(qitype.UInt16); return v.u16 }
func (v Value) Int32() int32     { v.mustKind(qitype.Int32); return v.i32 }
func (v Value) UInt32() uint32   { v.mustKind(qitype.UInt32); return v.u32 }
func (v Value) Int64() int64     { v.mustKind(qitype.Int64); return v.i64 }
func (v Value) UInt64() uint64   { v.mustKind(qitype.UInt64); return v.u64 }
func (v Value) Float32() float32 { v.mustKind(qitype.Float32); return v.f32 }
func (v Value) Float64() float64 { v.mustKind(qitype.Float64); return v.f64 }

// Text returns the value's bytes interpreted as a Go string without
// validation; use Display to get a \xNN-escaped rendering when the
// bytes might not be valid UTF-8.
func (v Value) Text() string {
	if v.Kind != qitype.String && v.Kind != qitype.Raw {
		panic(fmt.Sprintf("qivalue: Text() called on a %s value", v.Kind))
	}
	return string(v.bytes)
}

func (v Value) Bytes() []byte {
	if v.Kind != qitype.String && v.Kind != qitype.Raw {
		panic(fmt.Sprintf("qivalue: Bytes() called on a %s value", v.Kind))
	}
	return v.bytes
}

func (v Value) ObjectID() uint32 { v.mustKind(qitype.Object); return v.u32 }

// OptionValue returns the inner value and true if present.
func (v Value) OptionValue() (Value, bool) {
	v.mustKind(qitype.Option)
	if v.optionElem == nil {
		return Value{}, false
	}
	return *v.optionElem, true
}

func (v Value) ListElements() []Value {
	v.mustKind(qitype.List)
	return v.list
}

func (v Value) MapEntries() []MapEntry {
	v.mustKind(qitype.Map)
	return v.entries
}

func (v Value) TupleElements() []Value {
	v.mustKind(qitype.Tuple)
	return v.tupleElements
}

func (v Value) TupleName() string {
	v.mustKind(qitype.Tuple)
	return v.tupleName
}

func (v Value) TupleFields() []string {
	v.mustKind(qitype.Tuple)
	return v.tupleFields
}

// DynamicValue returns the wrapped value and its declared type.
func (v Value) DynamicValue() (Value, qitype.Type) {
	v.mustKind(qitype.Dynamic)
	return *v.dynElem, *v.dynType
}

// AsErrorDescription extracts the string out of a Dynamic that is
// expected to wrap a String value (the Error message body of
// spec.md §4.5).
func (v Value) AsErrorDescription() (string, error) {
	inner, t := v.DynamicValue()
	if t.Kind != qitype.String {
		return "", &DynamicValueIsNotAStringError{Actual: t}
	}
	return inner.Text(), nil
}

func (v Value) mustKind(k qitype.Kind) {
	if v.Kind != k {
		panic(fmt.Sprintf("qivalue: expected %s value, got %s", k, v.Kind))
	}
}

// Display renders the value for debugging, escaping non-UTF-8 String
// and Raw bytes as \xNN per spec.md §4.5.
func (v Value) Display() string {
	switch v.Kind {
	case qitype.String, qitype.Raw:
		if utf8.Valid(v.bytes) {
			return string(v.bytes)
		}
		return escapeBytes(v.bytes)
	default:
		return fmt.Sprintf("%v", v.RuntimeType())
	}
}

func escapeBytes(b []byte) string {
	out := make([]byte, 0, len(b)*4)
	for _, c := range b {
		out = append(out, fmt.Sprintf("\\x%02X", c)...)
	}
	return string(out)
}
