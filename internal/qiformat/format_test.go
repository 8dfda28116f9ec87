package qiformat

import (
	"bytes"
	"testing"

	"github.com/aldebaran/qimessaging/internal/qiformat/wire"
)

// point is a tuple-struct stand-in: (x int32, y int32), exercising the
// newtype/tuple-struct -> tuple equivalence.
type point struct{ x, y int32 }

func (p *point) MarshalQi(enc *Encoder) error {
	t := enc.BeginTuple(2)
	if err := t.Element(func(e *Encoder) error { return e.EncodeInt32(p.x) }); err != nil {
		return err
	}
	return t.Element(func(e *Encoder) error { return e.EncodeInt32(p.y) })
}

func (p *point) UnmarshalQi(dec *Decoder) error {
	x, err := dec.DecodeInt32()
	if err != nil {
		return err
	}
	y, err := dec.DecodeInt32()
	if err != nil {
		return err
	}
	p.x, p.y = x, y
	return nil
}

func TestTupleStructRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	p := &point{x: 1, y: -2}
	if err := Encode(&buf, p); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x00, 0x00, 0x00, 0xFE, 0xFF, 0xFF, 0xFF}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %x want %x", buf.Bytes(), want)
	}

	var got point
	if err := Decode(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got != *p {
		t.Fatalf("got %+v want %+v", got, *p)
	}
}

func TestTupleOverrunFails(t *testing.T) {
	enc := NewEncoder(&bytes.Buffer{})
	tup := enc.BeginTuple(1)
	if err := tup.Element(func(e *Encoder) error { return e.EncodeBool(true) }); err != nil {
		t.Fatal(err)
	}
	err := tup.Element(func(e *Encoder) error { return e.EncodeBool(false) })
	if _, ok := err.(*UnexpectedElementError); !ok {
		t.Fatalf("expected UnexpectedElementError, got %T: %v", err, err)
	}
}

func TestOptionEncoding(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.EncodeOption(false); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x00}) {
		t.Fatalf("absent option should be single 0x00, got %x", buf.Bytes())
	}

	buf.Reset()
	if err := enc.EncodeOption(true); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeInt8(7); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x07}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %x want %x", buf.Bytes(), want)
	}

	dec := NewDecoder(wire.NewSliceReader(buf.Bytes()))
	present, err := dec.DecodeOption()
	if err != nil || !present {
		t.Fatalf("DecodeOption = %v, %v", present, err)
	}
	v, err := dec.DecodeInt8()
	if err != nil || v != 7 {
		t.Fatalf("inner decode = %v, %v", v, err)
	}
}

func TestSeqLenRejectsUnspecified(t *testing.T) {
	enc := NewEncoder(&bytes.Buffer{})
	err := enc.EncodeSeqLen(-1)
	if _, ok := err.(*UnspecifiedListMapSizeError); !ok {
		t.Fatalf("expected UnspecifiedListMapSizeError, got %T: %v", err, err)
	}
}

func TestSeqRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	elems := []int32{10, 20, 30}
	if err := enc.EncodeSeqLen(len(elems)); err != nil {
		t.Fatal(err)
	}
	for _, e := range elems {
		if err := enc.EncodeInt32(e); err != nil {
			t.Fatal(err)
		}
	}

	dec := NewDecoder(wire.NewSliceReader(buf.Bytes()))
	n, err := dec.DecodeSeqLen()
	if err != nil || n != 3 {
		t.Fatalf("DecodeSeqLen = %v, %v", n, err)
	}
	got := make([]int32, n)
	for i := range got {
		got[i], err = dec.DecodeInt32()
		if err != nil {
			t.Fatal(err)
		}
	}
	for i, e := range elems {
		if got[i] != e {
			t.Fatalf("element %d: got %d want %d", i, got[i], e)
		}
	}
}

func TestEnumVariantEquivalence(t *testing.T) {
	// enum variant(idx, payload) -> tuple(u32 idx, payload); here a
	// 2-variant enum where variant 1 carries an int32 payload.
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.EncodeVariantIndex(1); err != nil {
		t.Fatal(err)
	}
	if err := enc.EncodeInt32(99); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x00, 0x00, 0x00, 0x63, 0x00, 0x00, 0x00}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %x want %x", buf.Bytes(), want)
	}

	dec := NewDecoder(wire.NewSliceReader(buf.Bytes()))
	idx, err := dec.DecodeVariantIndex()
	if err != nil || idx != 1 {
		t.Fatalf("DecodeVariantIndex = %v, %v", idx, err)
	}
	payload, err := dec.DecodeInt32()
	if err != nil || payload != 99 {
		t.Fatalf("payload = %v, %v", payload, err)
	}
}

func TestCharEncodesAsString(t *testing.T) {
	var buf bytes.Buffer
	if err := NewEncoder(&buf).EncodeString("好"); err != nil {
		t.Fatal(err)
	}
	dec := NewDecoder(wire.NewSliceReader(buf.Bytes()))
	s, err := dec.DecodeString()
	if err != nil || s != "好" {
		t.Fatalf("got %q, %v", s, err)
	}
}

func TestUnitEncodesToZeroBytes(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	if err := enc.EncodeUnit(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected zero bytes for unit, got %x", buf.Bytes())
	}
}
