package qivalue

import "github.com/aldebaran/qimessaging/pkg/qitype"

// RuntimeType computes a Type consistent with v's contents, per
// spec.md §3.2. For List/Map this deduces the element/key/value type
// from the declared constructor type (not by re-inspecting every
// element, since New* constructors already verified convertibility at
// construction time); if a collection was built with heterogeneous
// entries that all separately convert to the declared type, the
// declared type is what is reported.
func (v Value) RuntimeType() qitype.Type {
	switch v.Kind {
	case qitype.Unit:
		return qitype.NewUnit()
	case qitype.Bool:
		return qitype.NewBool()
	case qitype.Int8:
		return qitype.NewInt8()
	case qitype.UInt8:
		return qitype.NewUInt8()
	case qitype.Int16:
		return qitype.NewInt16()
	case qitype.UInt16:
		return qitype.NewUInt16()
	case qitype.Int32:
		return qitype.NewInt32()
	case qitype.UInt32:
		return qitype.NewUInt32()
	case qitype.Int64:
		return qitype.NewInt64()
	case qitype.UInt64:
		return qitype.NewUInt64()
	case qitype.Float32:
		return qitype.NewFloat32()
	case qitype.Float64:
		return qitype.NewFloat64()
	case qitype.String:
		return qitype.NewString()
	case qitype.Raw:
		return qitype.NewRaw()
	case qitype.Object:
		return qitype.NewObject()
	case qitype.Dynamic:
		return qitype.NewDynamic()
	case qitype.Option:
		return qitype.NewOption(*v.optionType)
	case qitype.List:
		return qitype.NewList(v.listElemType)
	case qitype.Map:
		return qitype.NewMap(v.mapKeyType, v.mapValueType)
	case qitype.Tuple:
		elemTypes := make([]qitype.Type, len(v.tupleElements))
		for i, e := range v.tupleElements {
			elemTypes[i] = e.RuntimeType()
		}
		if len(v.tupleFields) > 0 {
			return qitype.NewStruct(v.tupleName, v.tupleFields, elemTypes...)
		}
		if v.tupleName != "" {
			return qitype.NewTupleStruct(v.tupleName, elemTypes...)
		}
		return qitype.NewTuple(elemTypes...)
	default:
		return qitype.NewDynamic()
	}
}
