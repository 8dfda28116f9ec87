package qivalue

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aldebaran/qimessaging/pkg/qitype"
)

// jsonValue is the wire shape used when a Value needs to cross a
// self-describing driver (spec.md §4.4: "deserialization of Value from
// a self-describing driver is supported, needed for tests and dynamic
// bridges"). encoding/json fills that role the way the teacher's
// internal/qmp already carries JSON-tagged command/response structs.
type jsonValue struct {
	Kind     string      `json:"kind"`
	Bool     *bool       `json:"bool,omitempty"`
	Int      *int64      `json:"int,omitempty"`
	Uint     *uint64     `json:"uint,omitempty"`
	Float    *float64    `json:"float,omitempty"`
	Text     *string     `json:"text,omitempty"`
	RawB64   *string     `json:"raw,omitempty"`
	ObjectID *uint32     `json:"object,omitempty"`
	Option   *jsonValue  `json:"option,omitempty"`
	List     []jsonValue `json:"list,omitempty"`
	MapKeys  []jsonValue `json:"mapKeys,omitempty"`
	MapVals  []jsonValue `json:"mapValues,omitempty"`
	Tuple    []jsonValue `json:"tuple,omitempty"`
	Name     string      `json:"name,omitempty"`
	Fields   []string    `json:"fields,omitempty"`
	Sig      string      `json:"sig,omitempty"`
	Inner    *jsonValue  `json:"value,omitempty"`
}

// MarshalJSON implements the self-describing encode side.
func (v Value) MarshalJSON() ([]byte, error) {
	jv, err := v.toJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(jv)
}

func (v Value) toJSON() (jsonValue, error) {
	switch v.Kind {
	case qitype.Unit:
		return jsonValue{Kind: "unit"}, nil
	case qitype.Bool:
		b := v.b
		return jsonValue{Kind: "bool", Bool: &b}, nil
	case qitype.Int8, qitype.Int16, qitype.Int32, qitype.Int64:
		i := v.asInt64()
		return jsonValue{Kind: v.Kind.String(), Int: &i}, nil
	case qitype.UInt8, qitype.UInt16, qitype.UInt32, qitype.UInt64:
		u := v.asUint64()
		return jsonValue{Kind: v.Kind.String(), Uint: &u}, nil
	case qitype.Float32, qitype.Float64:
		f := v.asFloat64()
		return jsonValue{Kind: v.Kind.String(), Float: &f}, nil
	case qitype.String:
		s := string(v.bytes)
		return jsonValue{Kind: "string", Text: &s}, nil
	case qitype.Raw:
		b := base64.StdEncoding.EncodeToString(v.bytes)
		return jsonValue{Kind: "raw", RawB64: &b}, nil
	case qitype.Object:
		id := v.u32
		return jsonValue{Kind: "object", ObjectID: &id}, nil
	case qitype.Option:
		out := jsonValue{Kind: "option", Sig: qitype.ToSignature(*v.optionType)}
		if inner, ok := v.OptionValue(); ok {
			j, err := inner.toJSON()
			if err != nil {
				return jsonValue{}, err
			}
			out.Option = &j
		}
		return out, nil
	case qitype.List:
		out := jsonValue{Kind: "list", Sig: qitype.ToSignature(v.listElemType)}
		for _, e := range v.list {
			j, err := e.toJSON()
			if err != nil {
				return jsonValue{}, err
			}
			out.List = append(out.List, j)
		}
		return out, nil
	case qitype.Map:
		out := jsonValue{Kind: "map"}
		for _, e := range v.entries {
			jk, err := e.Key.toJSON()
			if err != nil {
				return jsonValue{}, err
			}
			jv, err := e.Value.toJSON()
			if err != nil {
				return jsonValue{}, err
			}
			out.MapKeys = append(out.MapKeys, jk)
			out.MapVals = append(out.MapVals, jv)
		}
		return out, nil
	case qitype.Tuple:
		out := jsonValue{Kind: "tuple", Name: v.tupleName, Fields: v.tupleFields}
		for _, e := range v.tupleElements {
			j, err := e.toJSON()
			if err != nil {
				return jsonValue{}, err
			}
			out.Tuple = append(out.Tuple, j)
		}
		return out, nil
	case qitype.Dynamic:
		inner, t := v.DynamicValue()
		j, err := inner.toJSON()
		if err != nil {
			return jsonValue{}, err
		}
		return jsonValue{Kind: "dynamic", Sig: qitype.ToSignature(t), Inner: &j}, nil
	default:
		return jsonValue{}, fmt.Errorf("qivalue: cannot marshal JSON for kind %s", v.Kind)
	}
}

// UnmarshalJSON implements the self-describing decode side.
func (v *Value) UnmarshalJSON(data []byte) error {
	var jv jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return err
	}
	out, err := fromJSON(jv)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

func fromJSON(jv jsonValue) (Value, error) {
	switch jv.Kind {
	case "unit":
		return NewUnit(), nil
	case "bool":
		return NewBool(*jv.Bool), nil
	case "Int8":
		return NewInt8(int8(*jv.Int)), nil
	case "Int16":
		return NewInt16(int16(*jv.Int)), nil
	case "Int32":
		return NewInt32(int32(*jv.Int)), nil
	case "Int64":
		return NewInt64(*jv.Int), nil
	case "UInt8":
		return NewUInt8(uint8(*jv.Uint)), nil
	case "UInt16":
		return NewUInt16(uint16(*jv.Uint)), nil
	case "UInt32":
		return NewUInt32(uint32(*jv.Uint)), nil
	case "UInt64":
		return NewUInt64(*jv.Uint), nil
	case "Float32":
		return NewFloat32(float32(*jv.Float)), nil
	case "Float64":
		return NewFloat64(*jv.Float), nil
	case "string":
		return NewString(*jv.Text), nil
	case "raw":
		b, err := base64.StdEncoding.DecodeString(*jv.RawB64)
		if err != nil {
			return Value{}, err
		}
		return NewRaw(b), nil
	case "object":
		return NewObject(*jv.ObjectID), nil
	case "option":
		elemType, err := qitype.Parse(jv.Sig)
		if err != nil {
			return Value{}, err
		}
		if jv.Option == nil {
			return NewOptionNone(elemType), nil
		}
		inner, err := fromJSON(*jv.Option)
		if err != nil {
			return Value{}, err
		}
		return NewOptionSome(elemType, inner)
	case "list":
		elemType, err := qitype.Parse(jv.Sig)
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, len(jv.List))
		for i, e := range jv.List {
			items[i], err = fromJSON(e)
			if err != nil {
				return Value{}, err
			}
		}
		return NewList(elemType, items)
	case "map":
		entries := make([]MapEntry, len(jv.MapKeys))
		var keyType, valueType qitype.Type
		for i := range jv.MapKeys {
			k, err := fromJSON(jv.MapKeys[i])
			if err != nil {
				return Value{}, err
			}
			val, err := fromJSON(jv.MapVals[i])
			if err != nil {
				return Value{}, err
			}
			if i == 0 {
				keyType, valueType = k.RuntimeType(), val.RuntimeType()
			}
			entries[i] = MapEntry{Key: k, Value: val}
		}
		if len(entries) == 0 {
			keyType, valueType = qitype.NewDynamic(), qitype.NewDynamic()
		}
		return NewMap(keyType, valueType, entries)
	case "tuple":
		elements := make([]Value, len(jv.Tuple))
		for i, e := range jv.Tuple {
			var err error
			elements[i], err = fromJSON(e)
			if err != nil {
				return Value{}, err
			}
		}
		if len(jv.Fields) > 0 {
			return NewStruct(jv.Name, jv.Fields, elements...), nil
		}
		if jv.Name != "" {
			return NewStruct(jv.Name, nil, elements...), nil
		}
		return NewTuple(elements...), nil
	case "dynamic":
		t, err := qitype.Parse(jv.Sig)
		if err != nil {
			return Value{}, err
		}
		inner, err := fromJSON(*jv.Inner)
		if err != nil {
			return Value{}, err
		}
		return NewDynamic(inner, t)
	default:
		return Value{}, fmt.Errorf("qivalue: unknown JSON value kind %q", jv.Kind)
	}
}

func (v Value) asInt64() int64 {
	switch v.Kind {
	case qitype.Int8:
		return int64(v.i8)
	case qitype.Int16:
		return int64(v.i16)
	case qitype.Int32:
		return int64(v.i32)
	default:
		return v.i64
	}
}

func (v Value) asUint64() uint64 {
	switch v.Kind {
	case qitype.UInt8:
		return uint64(v.u8)
	case qitype.UInt16:
		return uint64(v.u16)
	case qitype.UInt32:
		return uint64(v.u32)
	default:
		return v.u64
	}
}

func (v Value) asFloat64() float64 {
	if v.Kind == qitype.Float32 {
		return float64(v.f32)
	}
	return v.f64
}
