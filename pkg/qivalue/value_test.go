package qivalue

import (
	"bytes"
	"math"
	"testing"

	"github.com/aldebaran/qimessaging/internal/qiformat"
	"github.com/aldebaran/qimessaging/internal/qiformat/wire"
	"github.com/aldebaran/qimessaging/pkg/qitype"
)

func encodeValue(t *testing.T, v Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := v.MarshalQi(qiformat.NewEncoder(&buf)); err != nil {
		t.Fatalf("MarshalQi: %v", err)
	}
	return buf.Bytes()
}

func decoderReaderOf(data []byte) wire.Reader { return wire.NewSliceReader(data) }

func TestScalarRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		t    qitype.Type
	}{
		{"bool", NewBool(true), qitype.NewBool()},
		{"int32", NewInt32(-42), qitype.NewInt32()},
		{"uint64", NewUInt64(1 << 40), qitype.NewUInt64()},
		{"float64", NewFloat64(3.25), qitype.NewFloat64()},
		{"float32 nan", NewFloat32(float32(math.NaN())), qitype.NewFloat32()},
		{"float64 nan", NewFloat64(math.NaN()), qitype.NewFloat64()},
		{"string", NewString("héllo"), qitype.NewString()},
		{"raw", NewRaw([]byte{0, 1, 2, 0xff}), qitype.NewRaw()},
		{"object", NewObject(7), qitype.NewObject()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			data := encodeValue(t, c.v)
			dec := qiformat.NewDecoder(decoderReaderOf(data))
			got, err := DecodeValue(dec, c.t)
			if err != nil {
				t.Fatalf("DecodeValue: %v", err)
			}
			if !got.Equal(c.v) {
				t.Fatalf("round-trip mismatch: got %#v want %#v", got, c.v)
			}
		})
	}
}

func TestOptionRoundTrip(t *testing.T) {
	none := NewOptionNone(qitype.NewInt32())
	data := encodeValue(t, none)
	dec := qiformat.NewDecoder(decoderReaderOf(data))
	got, err := DecodeValue(dec, qitype.NewOption(qitype.NewInt32()))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.OptionValue(); ok {
		t.Fatal("expected absent option")
	}

	some, err := NewOptionSome(qitype.NewInt32(), NewInt32(9))
	if err != nil {
		t.Fatal(err)
	}
	data = encodeValue(t, some)
	dec = qiformat.NewDecoder(decoderReaderOf(data))
	got, err = DecodeValue(dec, qitype.NewOption(qitype.NewInt32()))
	if err != nil {
		t.Fatal(err)
	}
	inner, ok := got.OptionValue()
	if !ok || inner.Int32() != 9 {
		t.Fatalf("got %#v", got)
	}
}

func TestListRoundTrip(t *testing.T) {
	list, err := NewList(qitype.NewInt32(), []Value{NewInt32(1), NewInt32(2), NewInt32(3)})
	if err != nil {
		t.Fatal(err)
	}
	data := encodeValue(t, list)
	dec := qiformat.NewDecoder(decoderReaderOf(data))
	got, err := DecodeValue(dec, qitype.NewList(qitype.NewInt32()))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(list) {
		t.Fatalf("got %#v want %#v", got, list)
	}
}

func TestMapPreservesOrderAndDuplicates(t *testing.T) {
	entries := []MapEntry{
		{Key: NewString("a"), Value: NewInt32(1)},
		{Key: NewString("a"), Value: NewInt32(2)}, // duplicate key, preserved
	}
	m, err := NewMap(qitype.NewString(), qitype.NewInt32(), entries)
	if err != nil {
		t.Fatal(err)
	}
	data := encodeValue(t, m)
	dec := qiformat.NewDecoder(decoderReaderOf(data))
	got, err := DecodeValue(dec, qitype.NewMap(qitype.NewString(), qitype.NewInt32()))
	if err != nil {
		t.Fatal(err)
	}
	if len(got.MapEntries()) != 2 {
		t.Fatalf("expected duplicate key preserved, got %d entries", len(got.MapEntries()))
	}

	if _, err := DecodeUniqueMap(qiformat.NewDecoder(decoderReaderOf(data)),
		qitype.NewString(), qitype.NewInt32()); err == nil {
		t.Fatal("DecodeUniqueMap should reject duplicate keys")
	}
}

func TestStructRoundTrip(t *testing.T) {
	point := NewStruct("Point", []string{"x", "y"}, NewFloat64(1.5), NewFloat64(-2.5))
	data := encodeValue(t, point)
	pointType := qitype.NewStruct("Point", []string{"x", "y"}, qitype.NewFloat64(), qitype.NewFloat64())
	dec := qiformat.NewDecoder(decoderReaderOf(data))
	got, err := DecodeValue(dec, pointType)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(point) {
		t.Fatalf("got %#v want %#v", got, point)
	}
	if got.TupleName() != "Point" || got.TupleFields()[0] != "x" || got.TupleFields()[1] != "y" {
		t.Fatalf("annotation lost across round-trip: %#v", got)
	}
}

func TestDynamicRoundTrip(t *testing.T) {
	inner := NewString("hello")
	dyn, err := NewDynamic(inner, qitype.NewString())
	if err != nil {
		t.Fatal(err)
	}
	data := encodeValue(t, dyn)
	dec := qiformat.NewDecoder(decoderReaderOf(data))
	got, err := DecodeDynamic(dec)
	if err != nil {
		t.Fatal(err)
	}
	gotInner, gotType := got.DynamicValue()
	if gotType.Kind != qitype.String || gotInner.Text() != "hello" {
		t.Fatalf("got %#v", got)
	}
	desc, err := got.AsErrorDescription()
	if err != nil || desc != "hello" {
		t.Fatalf("AsErrorDescription = %q, %v", desc, err)
	}
}

func TestDynamicOfNonStringRejectsAsErrorDescription(t *testing.T) {
	dyn, err := NewDynamic(NewInt32(1), qitype.NewInt32())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dyn.AsErrorDescription(); err == nil {
		t.Fatal("expected DynamicValueIsNotAStringError")
	} else if _, ok := err.(*DynamicValueIsNotAStringError); !ok {
		t.Fatalf("got %T", err)
	}
}

func TestNewDynamicRejectsIncompatibleType(t *testing.T) {
	_, err := NewDynamic(NewInt32(1), qitype.NewString())
	if err == nil {
		t.Fatal("expected TypeMismatchError")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	point := NewStruct("Point", []string{"x", "y"}, NewFloat64(1.5), NewFloat64(-2.5))
	data, err := point.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var got Value
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}
	if !got.Equal(point) {
		t.Fatalf("got %#v want %#v", got, point)
	}
}

func TestDisplayEscapesInvalidUTF8(t *testing.T) {
	v := NewStringBytes([]byte{0xff, 0xfe})
	if got := v.Display(); got != "\\xFF\\xFE" {
		t.Fatalf("got %q", got)
	}
}
