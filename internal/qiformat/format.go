// Package qiformat implements the qi binary wire codec (spec.md
// component C2): a generic encode/decode driver over the fixed type
// algebra of spec.md §3, built on the little-endian primitives of
// internal/qiformat/wire.
//
// The format is deliberately not self-describing (spec.md §9): the
// equivalences below collapse several source-level shapes onto the same
// wire representation, and a decoder must already know the expected
// shape (there is no deserialize_any).
//
//	char                                  -> str (UTF-8)
//	unit, unit-struct, identifier         -> zero bytes
//	newtype-struct / tuple-struct / struct -> tuple (concatenated fields)
//	enum variant(idx, payload)            -> tuple(u32 idx, payload)
//	option                                -> 0x00 | 0x01 ++ inner
//	seq / map (dynamic length)            -> u32 length ++ elements
//	tuple (known length)                  -> elements, no prefix
//	bytes / raw, str                      -> u32 length ++ bytes
package qiformat

import (
	"fmt"
	"io"

	"github.com/aldebaran/qimessaging/internal/qiformat/wire"
)

// Marshaler is implemented by types that know how to write themselves
// onto the wire through an Encoder, the qi analogue of encoding/gob's
// GobEncoder and the teacher's own *json.Encoder-driven qmp.Conn.write.
type Marshaler interface {
	MarshalQi(enc *Encoder) error
}

// Unmarshaler is the decode-side counterpart of Marshaler.
type Unmarshaler interface {
	UnmarshalQi(dec *Decoder) error
}

// UnspecifiedListMapSizeError is returned by EncodeSeqLen when asked to
// emit a sequence or map without a known length.
type UnspecifiedListMapSizeError struct{}

func (*UnspecifiedListMapSizeError) Error() string {
	return "cannot serialize a list or map without a known length"
}

// UnexpectedElementError is returned when a tuple/struct encoder is
// asked to write more elements than its declared arity.
type UnexpectedElementError struct{ Expected int }

func (e *UnexpectedElementError) Error() string {
	return fmt.Sprintf("unexpected element: tuple declared %d element(s)", e.Expected)
}

// ErrCannotDeserializeAny is returned by any entry point that would
// require a self-describing decode (deserialize_any / ignored_any in
// spec.md §4.2 terms); the qi format does not support it.
var ErrCannotDeserializeAny = fmt.Errorf("qiformat: cannot deserialize a value without knowing its type")

// CustomError wraps a driver-specific failure message (the spec's
// Custom(string) error kind), used by higher layers (qivalue, qimessage)
// that need to report a domain error through this package's error type.
type CustomError struct{ Msg string }

func (e *CustomError) Error() string { return e.Msg }

// Encoder writes qi-encoded values to an io.Writer.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder { return &Encoder{w: w} }

func (e *Encoder) Writer() io.Writer { return e.w }

func (e *Encoder) EncodeBool(v bool) error       { return wire.WriteBool(e.w, v) }
func (e *Encoder) EncodeInt8(v int8) error       { return wire.WriteInt8(e.w, v) }
func (e *Encoder) EncodeUint8(v uint8) error     { return wire.WriteUint8(e.w, v) }
func (e *Encoder) EncodeInt16(v int16) error     { return wire.WriteInt16(e.w, v) }
func (e *Encoder) EncodeUint16(v uint16) error   { return wire.WriteUint16(e.w, v) }
func (e *Encoder) EncodeInt32(v int32) error     { return wire.WriteInt32(e.w, v) }
func (e *Encoder) EncodeUint32(v uint32) error   { return wire.WriteUint32(e.w, v) }
func (e *Encoder) EncodeInt64(v int64) error     { return wire.WriteInt64(e.w, v) }
func (e *Encoder) EncodeUint64(v uint64) error   { return wire.WriteUint64(e.w, v) }
func (e *Encoder) EncodeFloat32(v float32) error { return wire.WriteFloat32(e.w, v) }
func (e *Encoder) EncodeFloat64(v float64) error { return wire.WriteFloat64(e.w, v) }

// EncodeString encodes a char or str (the equivalence table above).
func (e *Encoder) EncodeString(v string) error { return wire.WriteString(e.w, v) }

// EncodeBytes encodes a raw/bytes value: u32 length then the bytes.
func (e *Encoder) EncodeBytes(v []byte) error { return wire.WriteRaw(e.w, v) }

// EncodeUnit encodes unit, unit-struct or an enum identifier: zero bytes.
func (e *Encoder) EncodeUnit() error { return nil }

// EncodeOption encodes an Option: if present is false, a single 0x00
// byte; if true, 0x01 followed by whatever write calls the caller makes
// next to encode the inner value.
func (e *Encoder) EncodeOption(present bool) error {
	if !present {
		return wire.WriteUint8(e.w, 0)
	}
	return wire.WriteUint8(e.w, 1)
}

// EncodeSeqLen writes the u32 length prefix for a seq/map of dynamic
// length. n must be known; pass a negative n to provoke
// UnspecifiedListMapSizeError, matching a driver that was asked to
// serialize a sequence without first knowing its length.
func (e *Encoder) EncodeSeqLen(n int) error {
	if n < 0 {
		return &UnspecifiedListMapSizeError{}
	}
	return wire.WriteSize(e.w, n)
}

// EncodeVariantIndex encodes an enum discriminant as a u32 (the
// enum-variant(idx, payload) -> tuple(u32, payload) equivalence); the
// payload follows as ordinary subsequent Encode* calls.
func (e *Encoder) EncodeVariantIndex(idx uint32) error { return wire.WriteUint32(e.w, idx) }

// TupleEncoder enforces a tuple/struct's declared arity: encoding more
// elements than declared fails with UnexpectedElementError, exactly as
// spec.md §4.2 requires. A tuple's elements have no length prefix or
// separator; TupleEncoder only exists to catch the overrun bug, not to
// write any framing of its own.
type TupleEncoder struct {
	enc      *Encoder
	expected int
	count    int
}

// BeginTuple starts a tuple/struct of known arity n (no framing is
// written: tuple elements are simply concatenated).
func (e *Encoder) BeginTuple(n int) *TupleEncoder {
	return &TupleEncoder{enc: e, expected: n}
}

// Element runs f to encode the next element, failing if the tuple's
// declared arity has already been reached.
func (t *TupleEncoder) Element(f func(*Encoder) error) error {
	if t.count >= t.expected {
		return &UnexpectedElementError{Expected: t.expected}
	}
	t.count++
	return f(t.enc)
}

// Decoder reads qi-encoded values from a wire.Reader. Pass a
// *wire.SliceReader for zero-copy borrowing decode, or a
// *wire.StreamReader for an owning decode from an io.Reader.
type Decoder struct {
	r wire.Reader
}

func NewDecoder(r wire.Reader) *Decoder { return &Decoder{r: r} }

func (d *Decoder) Reader() wire.Reader { return d.r }

func (d *Decoder) DecodeBool() (bool, error)       { return wire.ReadBool(d.r) }
func (d *Decoder) DecodeInt8() (int8, error)       { return wire.ReadInt8(d.r) }
func (d *Decoder) DecodeUint8() (uint8, error)     { return wire.ReadUint8(d.r) }
func (d *Decoder) DecodeInt16() (int16, error)     { return wire.ReadInt16(d.r) }
func (d *Decoder) DecodeUint16() (uint16, error)   { return wire.ReadUint16(d.r) }
func (d *Decoder) DecodeInt32() (int32, error)     { return wire.ReadInt32(d.r) }
func (d *Decoder) DecodeUint32() (uint32, error)   { return wire.ReadUint32(d.r) }
func (d *Decoder) DecodeInt64() (int64, error)     { return wire.ReadInt64(d.r) }
func (d *Decoder) DecodeUint64() (uint64, error)   { return wire.ReadUint64(d.r) }
func (d *Decoder) DecodeFloat32() (float32, error) { return wire.ReadFloat32(d.r) }
func (d *Decoder) DecodeFloat64() (float64, error) { return wire.ReadFloat64(d.r) }

func (d *Decoder) DecodeString() (string, error) { return wire.ReadString(d.r) }
func (d *Decoder) DecodeBytes() ([]byte, error)  { return wire.ReadRaw(d.r) }

func (d *Decoder) DecodeUnit() error { return nil }

// DecodeOption reads the option discriminant byte. The caller must
// follow up with the inner decode itself when present is true.
func (d *Decoder) DecodeOption() (present bool, err error) {
	return wire.ReadBool(d.r)
}

// DecodeSeqLen reads a seq/map's u32 length prefix.
func (d *Decoder) DecodeSeqLen() (int, error) { return wire.ReadSize(d.r) }

func (d *Decoder) DecodeVariantIndex() (uint32, error) { return wire.ReadUint32(d.r) }

// Encode is a convenience entry point for any Marshaler.
func Encode(w io.Writer, v Marshaler) error {
	return v.MarshalQi(NewEncoder(w))
}

// Decode is a convenience entry point for any Unmarshaler, decoding
// from a borrowing SliceReader.
func Decode(data []byte, v Unmarshaler) error {
	return v.UnmarshalQi(NewDecoder(wire.NewSliceReader(data)))
}

// DecodeStream decodes from an owning StreamReader.
func DecodeStream(r io.Reader, v Unmarshaler) error {
	return v.UnmarshalQi(NewDecoder(wire.NewStreamReader(r)))
}
