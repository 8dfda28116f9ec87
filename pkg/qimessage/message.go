// Package qimessage implements qi message framing (spec component C5):
// a fixed 28-byte header plus an opaque body, the wire unit the
// dispatcher (pkg/qinet) correlates, cancels and replies to.
package qimessage

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"text/tabwriter"
)

// MagicCookie is written big-endian at offset 0 of every header.
const MagicCookie uint32 = 0x42DEAD42

// CurrentVersion is the only protocol version this package accepts on
// read and writes on send.
const CurrentVersion uint16 = 0

// HeaderSize is the fixed size, in bytes, of a message header.
const HeaderSize = 28

// Type enumerates a message's role, encoded as a single byte (1..8; 0
// is reserved).
type Type uint8

const (
	Call Type = iota + 1
	Reply
	Error
	Post
	Event
	Capabilities
	Cancel
	Canceled
)

func (t Type) String() string {
	switch t {
	case Call:
		return "Call"
	case Reply:
		return "Reply"
	case Error:
		return "Error"
	case Post:
		return "Post"
	case Event:
		return "Event"
	case Capabilities:
		return "Capabilities"
	case Cancel:
		return "Cancel"
	case Canceled:
		return "Canceled"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// Flags is a bitfield carried in the header.
type Flags uint8

const (
	// DynamicPayload marks a body as a Dynamic (signature-prefixed) value.
	DynamicPayload Flags = 1 << 0
	// ReturnType marks that a Call's expected return type is attached
	// out of band (used by callers that need it before the Reply).
	ReturnType Flags = 1 << 1
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Address is the routing triple identifying a bound object action.
// service=0,object=0 is the peer's server control plane;
// service=1,object=1 is the service-directory main object.
type Address struct {
	Service uint32
	Object  uint32
	Action  uint32
}

func (a Address) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Service, a.Object, a.Action)
}

// Message is a single qi frame: fixed header fields plus an opaque
// body, interpreted by the codec against a type expected by the
// recipient (pkg/qivalue doesn't appear here by design — framing is
// deliberately agnostic to payload shape; see the Error, Cancel and
// Capabilities body helpers in payload.go for the payload kinds
// framing itself understands).
type Message struct {
	ID      uint32
	Type    Type
	Version uint16
	Flags   Flags
	Address Address
	Body    []byte
}

func (m *Message) String() string {
	var o bytes.Buffer
	w := new(tabwriter.Writer)
	w.Init(&o, 5, 0, 1, ' ', 0)
	fmt.Fprintf(&o, "\n")
	fmt.Fprintf(w, "\tID:\t%v\n", m.ID)
	fmt.Fprintf(w, "\tType:\t%v\n", m.Type)
	fmt.Fprintf(w, "\tVersion:\t%v\n", m.Version)
	fmt.Fprintf(w, "\tFlags:\t%#02x\n", uint8(m.Flags))
	fmt.Fprintf(w, "\tAddress:\t%v\n", m.Address)
	fmt.Fprintf(w, "\tBody size:\t%v\n", len(m.Body))
	w.Flush()
	return o.String()
}

// BadMagicCookieError is returned by Read when the leading 4 bytes do
// not match MagicCookie.
type BadMagicCookieError struct{ Got uint32 }

func (e *BadMagicCookieError) Error() string {
	return fmt.Sprintf("bad magic cookie: got 0x%08X, want 0x%08X", e.Got, MagicCookie)
}

// UnsupportedVersionError is returned by Read when the header's
// version field does not equal CurrentVersion.
type UnsupportedVersionError struct{ Got uint16 }

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported protocol version %d, only %d is supported", e.Got, CurrentVersion)
}

// PayloadSizeTooLargeError is returned by Read when the declared body
// size does not fit the host int.
type PayloadSizeTooLargeError struct{ Declared uint32 }

func (e *PayloadSizeTooLargeError) Error() string {
	return fmt.Sprintf("declared payload size %d does not fit the host size type", e.Declared)
}

// Read decodes one Message from r. The magic cookie is read
// big-endian; every other header field little-endian. Exactly
// body-size bytes are consumed for the body; any bytes after it remain
// unread on r.
func Read(r io.Reader) (*Message, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	cookie := binary.BigEndian.Uint32(hdr[0:4])
	if cookie != MagicCookie {
		return nil, &BadMagicCookieError{Got: cookie}
	}

	id := binary.LittleEndian.Uint32(hdr[4:8])
	bodySize := binary.LittleEndian.Uint32(hdr[8:12])
	version := binary.LittleEndian.Uint16(hdr[12:14])
	if version != CurrentVersion {
		return nil, &UnsupportedVersionError{Got: version}
	}
	ty := Type(hdr[14])
	flags := Flags(hdr[15])
	service := binary.LittleEndian.Uint32(hdr[16:20])
	object := binary.LittleEndian.Uint32(hdr[20:24])
	action := binary.LittleEndian.Uint32(hdr[24:28])

	n := int(bodySize)
	if uint32(n) != bodySize || n < 0 {
		return nil, &PayloadSizeTooLargeError{Declared: bodySize}
	}

	body := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, err
		}
	}

	return &Message{
		ID:      id,
		Type:    ty,
		Version: version,
		Flags:   flags,
		Address: Address{Service: service, Object: object, Action: action},
		Body:    body,
	}, nil
}

// Write encodes m to w: the cookie big-endian, every other header
// field little-endian, then the body verbatim.
func Write(w io.Writer, m *Message) error {
	var hdr [HeaderSize]byte
	binary.BigEndian.PutUint32(hdr[0:4], MagicCookie)
	binary.LittleEndian.PutUint32(hdr[4:8], m.ID)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(m.Body)))
	binary.LittleEndian.PutUint16(hdr[12:14], CurrentVersion)
	hdr[14] = byte(m.Type)
	hdr[15] = byte(m.Flags)
	binary.LittleEndian.PutUint32(hdr[16:20], m.Address.Service)
	binary.LittleEndian.PutUint32(hdr[20:24], m.Address.Object)
	binary.LittleEndian.PutUint32(hdr[24:28], m.Address.Action)

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(m.Body) == 0 {
		return nil
	}
	_, err := w.Write(m.Body)
	return err
}
