package qivalue

import (
	"bytes"
	"math"

	"github.com/aldebaran/qimessaging/pkg/qitype"
)

// Equal reports deep structural equality, including tuple annotations
// and map entry order (insertion order is significant per spec.md
// §4.4: two maps with the same pairs in different order are unequal).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case qitype.Unit:
		return true
	case qitype.Bool:
		return v.b == o.b
	case qitype.Int8:
		return v.i8 == o.i8
	case qitype.UInt8:
		return v.u8 == o.u8
	case qitype.Int16:
		return v.i16 == o.i16
	case qitype.UInt16:
		return v.u16 == o.u16
	case qitype.Int32:
		return v.i32 == o.i32
	case qitype.UInt32:
		return v.u32 == o.u32
	case qitype.Int64:
		return v.i64 == o.i64
	case qitype.UInt64:
		return v.u64 == o.u64
	case qitype.Float32:
		// Bit-pattern comparison so identical NaNs compare equal, per
		// spec.md §9/§8.1's NaN round-trip invariant (== would not,
		// since NaN != NaN under IEEE 754).
		return math.Float32bits(v.f32) == math.Float32bits(o.f32)
	case qitype.Float64:
		return math.Float64bits(v.f64) == math.Float64bits(o.f64)
	case qitype.String, qitype.Raw:
		return bytes.Equal(v.bytes, o.bytes)
	case qitype.Object:
		return v.u32 == o.u32
	case qitype.Option:
		if !v.optionType.Equal(*o.optionType) {
			return false
		}
		vp, vok := v.OptionValue()
		op, ook := o.OptionValue()
		if vok != ook {
			return false
		}
		return !vok || vp.Equal(op)
	case qitype.List:
		if !v.listElemType.Equal(o.listElemType) || len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case qitype.Map:
		if !v.mapKeyType.Equal(o.mapKeyType) || !v.mapValueType.Equal(o.mapValueType) {
			return false
		}
		if len(v.entries) != len(o.entries) {
			return false
		}
		for i := range v.entries {
			if !v.entries[i].Key.Equal(o.entries[i].Key) || !v.entries[i].Value.Equal(o.entries[i].Value) {
				return false
			}
		}
		return true
	case qitype.Tuple:
		if v.tupleName != o.tupleName || len(v.tupleElements) != len(o.tupleElements) {
			return false
		}
		if len(v.tupleFields) != len(o.tupleFields) {
			return false
		}
		for i := range v.tupleFields {
			if v.tupleFields[i] != o.tupleFields[i] {
				return false
			}
		}
		for i := range v.tupleElements {
			if !v.tupleElements[i].Equal(o.tupleElements[i]) {
				return false
			}
		}
		return true
	case qitype.Dynamic:
		if !v.dynType.Equal(*o.dynType) {
			return false
		}
		return v.dynElem.Equal(*o.dynElem)
	default:
		return false
	}
}
