// Package qitype implements the qi type algebra and its textual
// signature grammar (spec component C3): a recursive sum type closed
// under Option/VarArgs/List/Map/Tuple constructors, with an annotation
// block on tuples that names a struct and its fields.
package qitype

import "strings"

// Kind discriminates a Type's variant.
type Kind int

const (
	Unit Kind = iota
	Bool
	Int8
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Int64
	UInt64
	Float32
	Float64
	String
	Raw
	Object
	Dynamic
	Option
	VarArgs
	List
	Map
	Tuple
)

func (k Kind) String() string {
	switch k {
	case Unit:
		return "Unit"
	case Bool:
		return "Bool"
	case Int8:
		return "Int8"
	case UInt8:
		return "UInt8"
	case Int16:
		return "Int16"
	case UInt16:
		return "UInt16"
	case Int32:
		return "Int32"
	case UInt32:
		return "UInt32"
	case Int64:
		return "Int64"
	case UInt64:
		return "UInt64"
	case Float32:
		return "Float32"
	case Float64:
		return "Float64"
	case String:
		return "String"
	case Raw:
		return "Raw"
	case Object:
		return "Object"
	case Dynamic:
		return "Dynamic"
	case Option:
		return "Option"
	case VarArgs:
		return "VarArgs"
	case List:
		return "List"
	case Map:
		return "Map"
	case Tuple:
		return "Tuple"
	default:
		return "?"
	}
}

// scalarChars maps every scalar Kind to its canonical signature
// character, per spec.md §3.1.
var scalarChars = map[Kind]byte{
	Unit: 'v', Bool: 'b', Int8: 'c', UInt8: 'C', Int16: 'w', UInt16: 'W',
	Int32: 'i', UInt32: 'I', Int64: 'l', UInt64: 'L', Float32: 'f', Float64: 'd',
	String: 's', Raw: 'r', Object: 'o', Dynamic: 'm',
}

var charScalars = func() map[byte]Kind {
	m := make(map[byte]Kind, len(scalarChars))
	for k, c := range scalarChars {
		m[c] = k
	}
	return m
}()

// Type is a node in the qi type algebra. Only the fields relevant to
// Kind are meaningful; constructors below should be used rather than
// building a Type literal directly.
type Type struct {
	Kind Kind

	// Option, VarArgs, List
	Elem *Type

	// Map
	Key   *Type
	Value *Type

	// Tuple
	Elements []Type
	Name     string   // struct name; empty means no name annotation
	Fields   []string // field names; nil means no field annotation
}

func scalar(k Kind) Type { return Type{Kind: k} }

func NewUnit() Type    { return scalar(Unit) }
func NewBool() Type    { return scalar(Bool) }
func NewInt8() Type    { return scalar(Int8) }
func NewUInt8() Type   { return scalar(UInt8) }
func NewInt16() Type   { return scalar(Int16) }
func NewUInt16() Type  { return scalar(UInt16) }
func NewInt32() Type   { return scalar(Int32) }
func NewUInt32() Type  { return scalar(UInt32) }
func NewInt64() Type   { return scalar(Int64) }
func NewUInt64() Type  { return scalar(UInt64) }
func NewFloat32() Type { return scalar(Float32) }
func NewFloat64() Type { return scalar(Float64) }
func NewString() Type  { return scalar(String) }
func NewRaw() Type     { return scalar(Raw) }
func NewObject() Type  { return scalar(Object) }
func NewDynamic() Type { return scalar(Dynamic) }

func NewOption(inner Type) Type { return Type{Kind: Option, Elem: &inner} }
func NewVarArgs(inner Type) Type { return Type{Kind: VarArgs, Elem: &inner} }
func NewList(inner Type) Type   { return Type{Kind: List, Elem: &inner} }
func NewMap(key, value Type) Type {
	return Type{Kind: Map, Key: &key, Value: &value}
}

// NewTuple builds a plain (unannotated) tuple.
func NewTuple(elements ...Type) Type {
	return Type{Kind: Tuple, Elements: elements}
}

// NewTupleStruct builds a tuple annotated with a struct name but no
// field names.
func NewTupleStruct(name string, elements ...Type) Type {
	return Type{Kind: Tuple, Elements: elements, Name: name}
}

// NewStruct builds a tuple annotated with a struct name and one field
// name per element. Panics if len(fields) != len(elements); callers
// constructing types programmatically are expected to get this right,
// unlike the signature parser which reports it as a parse error.
func NewStruct(name string, fields []string, elements ...Type) Type {
	if len(fields) != len(elements) {
		panic("qitype: NewStruct field count does not match element count")
	}
	return Type{Kind: Tuple, Elements: elements, Name: name, Fields: fields}
}

// HasName reports whether the tuple carries a non-empty struct name.
func (t Type) HasName() bool { return t.Kind == Tuple && t.Name != "" }

// HasFields reports whether the tuple carries field name annotations.
func (t Type) HasFields() bool { return t.Kind == Tuple && len(t.Fields) > 0 }

// Equal reports structural equality, including annotation fields.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Option, VarArgs, List:
		return t.Elem.Equal(*o.Elem)
	case Map:
		return t.Key.Equal(*o.Key) && t.Value.Equal(*o.Value)
	case Tuple:
		if t.Name != o.Name || len(t.Elements) != len(o.Elements) {
			return false
		}
		if (t.Fields == nil) != (o.Fields == nil) || len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i] != o.Fields[i] {
				return false
			}
		}
		for i := range t.Elements {
			if !t.Elements[i].Equal(o.Elements[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the canonical signature form. Annotations are emitted
// only when the tuple has a non-empty name or field list.
func (t Type) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t Type) write(b *strings.Builder) {
	if c, ok := scalarChars[t.Kind]; ok {
		b.WriteByte(c)
		return
	}
	switch t.Kind {
	case Option:
		b.WriteByte('+')
		t.Elem.write(b)
	case VarArgs:
		b.WriteByte('#')
		t.Elem.write(b)
	case List:
		b.WriteByte('[')
		t.Elem.write(b)
		b.WriteByte(']')
	case Map:
		b.WriteByte('{')
		t.Key.write(b)
		t.Value.write(b)
		b.WriteByte('}')
	case Tuple:
		b.WriteByte('(')
		for _, e := range t.Elements {
			e.write(b)
		}
		b.WriteByte(')')
		if t.Name == "" && len(t.Fields) == 0 {
			return
		}
		b.WriteByte('<')
		b.WriteString(t.Name)
		for _, f := range t.Fields {
			b.WriteByte(',')
			b.WriteString(f)
		}
		b.WriteByte('>')
	}
}
