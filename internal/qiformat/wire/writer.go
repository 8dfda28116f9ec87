package wire

import (
	"io"
)

// Writer primitives mirror the Reader side: every integer and float is
// little-endian, write_size writes a plain u32, write_raw/write_str are
// length-prefixed. There is no borrowing distinction on the write side;
// every writer is just an io.Writer.

func WriteBool(w io.Writer, v bool) error {
	var b byte
	if v {
		b = 1
	}
	return writeBytes(w, []byte{b})
}

func WriteUint8(w io.Writer, v uint8) error { return writeBytes(w, []byte{v}) }
func WriteInt8(w io.Writer, v int8) error   { return WriteUint8(w, uint8(v)) }

func WriteUint16(w io.Writer, v uint16) error {
	return writeBytes(w, []byte{byte(v), byte(v >> 8)})
}
func WriteInt16(w io.Writer, v int16) error { return WriteUint16(w, uint16(v)) }

func WriteUint32(w io.Writer, v uint32) error {
	return writeBytes(w, []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}
func WriteInt32(w io.Writer, v int32) error { return WriteUint32(w, uint32(v)) }

func WriteUint64(w io.Writer, v uint64) error {
	buf := make([]byte, 8)
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	return writeBytes(w, buf)
}
func WriteInt64(w io.Writer, v int64) error { return WriteUint64(w, uint64(v)) }

func WriteFloat32(w io.Writer, v float32) error { return WriteUint32(w, float32ToUint32(v)) }
func WriteFloat64(w io.Writer, v float64) error { return WriteUint64(w, float64ToUint64(v)) }

// WriteSize writes n as a wire u32. The caller is responsible for
// ensuring n fits (mirrors read_size's SizeConversionError on the
// decode side; on encode, overflow of a Go int into u32 on 64-bit hosts
// is the caller's contract to avoid, per spec.md §6.1).
func WriteSize(w io.Writer, n int) error { return WriteUint32(w, uint32(n)) }

// WriteRaw writes a u32 length prefix followed by b verbatim.
func WriteRaw(w io.Writer, b []byte) error {
	if err := WriteSize(w, len(b)); err != nil {
		return err
	}
	return writeBytes(w, b)
}

// WriteString writes the UTF-8 bytes of s, length-prefixed.
func WriteString(w io.Writer, s string) error {
	return WriteRaw(w, []byte(s))
}

func writeBytes(w io.Writer, b []byte) error {
	_, err := w.Write(b)
	return err
}
