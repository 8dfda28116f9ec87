package qivalue

import (
	"github.com/aldebaran/qimessaging/internal/qiformat"
	"github.com/aldebaran/qimessaging/pkg/qitype"
)

// MarshalQi serializes v's wire bytes directly, with no type tag
// (spec.md §4.4): every variant writes exactly what its Type's
// signature implies, and Dynamic emits its signature string ahead of
// the wrapped value.
func (v Value) MarshalQi(enc *qiformat.Encoder) error {
	switch v.Kind {
	case qitype.Unit:
		return enc.EncodeUnit()
	case qitype.Object:
		return enc.EncodeUint32(v.u32)
	case qitype.Bool:
		return enc.EncodeBool(v.b)
	case qitype.Int8:
		return enc.EncodeInt8(v.i8)
	case qitype.UInt8:
		return enc.EncodeUint8(v.u8)
	case qitype.Int16:
		return enc.EncodeInt16(v.i16)
	case qitype.UInt16:
		return enc.EncodeUint16(v.u16)
	case qitype.Int32:
		return enc.EncodeInt32(v.i32)
	case qitype.UInt32:
		return enc.EncodeUint32(v.u32)
	case qitype.Int64:
		return enc.EncodeInt64(v.i64)
	case qitype.UInt64:
		return enc.EncodeUint64(v.u64)
	case qitype.Float32:
		return enc.EncodeFloat32(v.f32)
	case qitype.Float64:
		return enc.EncodeFloat64(v.f64)
	case qitype.String:
		return enc.EncodeString(string(v.bytes))
	case qitype.Raw:
		return enc.EncodeBytes(v.bytes)
	case qitype.Option:
		present := v.optionElem != nil
		if err := enc.EncodeOption(present); err != nil {
			return err
		}
		if present {
			return v.optionElem.MarshalQi(enc)
		}
		return nil
	case qitype.List:
		if err := enc.EncodeSeqLen(len(v.list)); err != nil {
			return err
		}
		for _, e := range v.list {
			if err := e.MarshalQi(enc); err != nil {
				return err
			}
		}
		return nil
	case qitype.Map:
		if err := enc.EncodeSeqLen(len(v.entries)); err != nil {
			return err
		}
		for _, e := range v.entries {
			if err := e.Key.MarshalQi(enc); err != nil {
				return err
			}
			if err := e.Value.MarshalQi(enc); err != nil {
				return err
			}
		}
		return nil
	case qitype.Tuple:
		tup := enc.BeginTuple(len(v.tupleElements))
		for i := range v.tupleElements {
			el := v.tupleElements[i]
			if err := tup.Element(func(e *qiformat.Encoder) error { return el.MarshalQi(e) }); err != nil {
				return err
			}
		}
		return nil
	case qitype.Dynamic:
		if err := enc.EncodeString(qitype.ToSignature(*v.dynType)); err != nil {
			return err
		}
		return v.dynElem.MarshalQi(enc)
	default:
		return &qiformat.CustomError{Msg: "qivalue: cannot marshal a value of unknown kind"}
	}
}
