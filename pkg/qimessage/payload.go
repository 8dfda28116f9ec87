package qimessage

import (
	"bytes"
	"fmt"

	"github.com/aldebaran/qimessaging/internal/qiformat"
	"github.com/aldebaran/qimessaging/internal/qiformat/wire"
	"github.com/aldebaran/qimessaging/pkg/qitype"
	"github.com/aldebaran/qimessaging/pkg/qivalue"
)

// DynamicValueIsNotAStringError mirrors qivalue's error of the same
// shape, surfaced specifically for Error message bodies (spec.md
// §4.5): a decoder that finds a non-string Dynamic in an Error body
// reports this instead of a bare type mismatch.
type DynamicValueIsNotAStringError struct{ Actual qitype.Type }

func (e *DynamicValueIsNotAStringError) Error() string {
	return fmt.Sprintf("error message body is not a string dynamic: got %s", e.Actual)
}

// NewErrorBody encodes an Error message body: a Dynamic wrapping the
// description string.
func NewErrorBody(description string) ([]byte, error) {
	dyn, err := qivalue.NewDynamic(qivalue.NewString(description), qitype.NewString())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dyn.MarshalQi(qiformat.NewEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeErrorBody decodes an Error message body back to its
// description string.
func DecodeErrorBody(body []byte) (string, error) {
	dec := qiformat.NewDecoder(wire.NewSliceReader(body))
	v, err := qivalue.DecodeDynamic(dec)
	if err != nil {
		return "", err
	}
	desc, err := v.AsErrorDescription()
	if err != nil {
		if mismatch, ok := err.(*qivalue.DynamicValueIsNotAStringError); ok {
			return "", &DynamicValueIsNotAStringError{Actual: mismatch.Actual}
		}
		return "", err
	}
	return desc, nil
}

// NewCancelBody encodes a Cancel message body: the target call id as
// a plain u32 (not a Dynamic).
func NewCancelBody(targetCallID uint32) []byte {
	var buf bytes.Buffer
	_ = wire.WriteUint32(&buf, targetCallID)
	return buf.Bytes()
}

// DecodeCancelBody decodes a Cancel message body back to a call id.
func DecodeCancelBody(body []byte) (uint32, error) {
	return wire.ReadUint32(wire.NewSliceReader(body))
}

// NewCapabilitiesBody encodes a Capabilities message body: a map of
// string to Dynamic, preserving caps' iteration order as given.
func NewCapabilitiesBody(caps []CapabilityEntry) ([]byte, error) {
	entries := make([]qivalue.MapEntry, len(caps))
	for i, c := range caps {
		dyn, err := qivalue.NewDynamic(c.Value, c.Value.RuntimeType())
		if err != nil {
			return nil, err
		}
		entries[i] = qivalue.MapEntry{Key: qivalue.NewString(c.Name), Value: dyn}
	}
	m, err := qivalue.NewMap(qitype.NewString(), qitype.NewDynamic(), entries)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := m.MarshalQi(qiformat.NewEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CapabilityEntry is one name/value pair of a Capabilities body.
type CapabilityEntry struct {
	Name  string
	Value qivalue.Value
}

// DecodeCapabilitiesBody decodes a Capabilities message body.
func DecodeCapabilitiesBody(body []byte) ([]CapabilityEntry, error) {
	dec := qiformat.NewDecoder(wire.NewSliceReader(body))
	v, err := qivalue.DecodeValue(dec, qitype.NewMap(qitype.NewString(), qitype.NewDynamic()))
	if err != nil {
		return nil, err
	}
	entries := v.MapEntries()
	out := make([]CapabilityEntry, len(entries))
	for i, e := range entries {
		inner, _ := e.Value.DynamicValue()
		out[i] = CapabilityEntry{Name: e.Key.Text(), Value: inner}
	}
	return out, nil
}
