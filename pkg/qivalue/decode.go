package qivalue

import (
	"fmt"

	"github.com/aldebaran/qimessaging/internal/qiformat"
	"github.com/aldebaran/qimessaging/pkg/qitype"
)

// DecodeValue is the type-driven seed deserializer of spec.md §4.4: it
// decodes the wire bytes produced for a value of type t, dispatching
// on t.Kind exactly the way the wire codec's equivalence table would.
// For Type.Dynamic it recurses into DecodeDynamic.
func DecodeValue(dec *qiformat.Decoder, t qitype.Type) (Value, error) {
	switch t.Kind {
	case qitype.Unit:
		return NewUnit(), dec.DecodeUnit()
	case qitype.Bool:
		b, err := dec.DecodeBool()
		return NewBool(b), err
	case qitype.Int8:
		x, err := dec.DecodeInt8()
		return NewInt8(x), err
	case qitype.UInt8:
		x, err := dec.DecodeUint8()
		return NewUInt8(x), err
	case qitype.Int16:
		x, err := dec.DecodeInt16()
		return NewInt16(x), err
	case qitype.UInt16:
		x, err := dec.DecodeUint16()
		return NewUInt16(x), err
	case qitype.Int32:
		x, err := dec.DecodeInt32()
		return NewInt32(x), err
	case qitype.UInt32:
		x, err := dec.DecodeUint32()
		return NewUInt32(x), err
	case qitype.Int64:
		x, err := dec.DecodeInt64()
		return NewInt64(x), err
	case qitype.UInt64:
		x, err := dec.DecodeUint64()
		return NewUInt64(x), err
	case qitype.Float32:
		x, err := dec.DecodeFloat32()
		return NewFloat32(x), err
	case qitype.Float64:
		x, err := dec.DecodeFloat64()
		return NewFloat64(x), err
	case qitype.String:
		s, err := dec.DecodeString()
		return NewString(s), err
	case qitype.Raw:
		b, err := dec.DecodeBytes()
		return NewRaw(b), err
	case qitype.Object:
		id, err := dec.DecodeUint32()
		return NewObject(id), err
	case qitype.Option:
		present, err := dec.DecodeOption()
		if err != nil {
			return Value{}, err
		}
		if !present {
			return NewOptionNone(*t.Elem), nil
		}
		inner, err := DecodeValue(dec, *t.Elem)
		if err != nil {
			return Value{}, err
		}
		return NewOptionSome(*t.Elem, inner)
	case qitype.List:
		n, err := dec.DecodeSeqLen()
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, n)
		for i := 0; i < n; i++ {
			items[i], err = DecodeValue(dec, *t.Elem)
			if err != nil {
				return Value{}, err
			}
		}
		return NewList(*t.Elem, items)
	case qitype.Map:
		n, err := dec.DecodeSeqLen()
		if err != nil {
			return Value{}, err
		}
		entries := make([]MapEntry, n)
		for i := 0; i < n; i++ {
			k, err := DecodeValue(dec, *t.Key)
			if err != nil {
				return Value{}, err
			}
			val, err := DecodeValue(dec, *t.Value)
			if err != nil {
				return Value{}, err
			}
			entries[i] = MapEntry{Key: k, Value: val}
		}
		return NewMap(*t.Key, *t.Value, entries)
	case qitype.Tuple:
		elements := make([]Value, len(t.Elements))
		for i, et := range t.Elements {
			var err error
			elements[i], err = DecodeValue(dec, et)
			if err != nil {
				return Value{}, err
			}
		}
		if len(t.Fields) > 0 {
			return NewStruct(t.Name, t.Fields, elements...), nil
		}
		if t.Name != "" {
			return NewStruct(t.Name, nil, elements...), nil
		}
		return NewTuple(elements...), nil
	case qitype.Dynamic:
		return DecodeDynamic(dec)
	case qitype.VarArgs:
		// At rest a VarArgs(T) value is indistinguishable from List(T);
		// the distinction only matters to a method's call signature.
		n, err := dec.DecodeSeqLen()
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, n)
		for i := 0; i < n; i++ {
			items[i], err = DecodeValue(dec, *t.Elem)
			if err != nil {
				return Value{}, err
			}
		}
		return NewList(*t.Elem, items)
	default:
		return Value{}, fmt.Errorf("qivalue: cannot decode unknown type kind %s", t.Kind)
	}
}

// DecodeDynamic reads a signature string, parses it into a Type, then
// decodes the payload guided by that type — the canonical way to
// decode type-tagged values on the wire (spec.md §4.4).
func DecodeDynamic(dec *qiformat.Decoder) (Value, error) {
	sig, err := dec.DecodeString()
	if err != nil {
		return Value{}, err
	}
	t, err := qitype.Parse(sig)
	if err != nil {
		return Value{}, fmt.Errorf("qivalue: decoding dynamic signature %q: %w", sig, err)
	}
	inner, err := DecodeValue(dec, t)
	if err != nil {
		return Value{}, err
	}
	return NewDynamic(inner, t)
}

// DecodeUniqueMap decodes a Map(keyType,valueType) like DecodeValue
// but fails if any key repeats, for callers that need map semantics
// rather than the wire's bag-of-pairs default (spec.md §4.4 open
// question on map key uniqueness).
func DecodeUniqueMap(dec *qiformat.Decoder, keyType, valueType qitype.Type) (Value, error) {
	v, err := DecodeValue(dec, qitype.NewMap(keyType, valueType))
	if err != nil {
		return Value{}, err
	}
	seen := make(map[string]struct{}, len(v.entries))
	for _, e := range v.entries {
		k := e.Key.Display() + "|" + qitype.ToSignature(e.Key.RuntimeType())
		if _, dup := seen[k]; dup {
			return Value{}, fmt.Errorf("qivalue: duplicate map key %s", e.Key.Display())
		}
		seen[k] = struct{}{}
	}
	return v, nil
}
