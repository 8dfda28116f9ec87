package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aldebaran/qimessaging/internal/qiformat"
	"github.com/aldebaran/qimessaging/internal/qiformat/wire"
	"github.com/aldebaran/qimessaging/pkg/minilog"
	"github.com/aldebaran/qimessaging/pkg/qimessage"
	"github.com/aldebaran/qimessaging/pkg/qinet"
)

// greeterHandler answers every Call with a greeting built from the
// request body decoded as a string, the demo service used by "qictl
// serve" and the spec's own S7 scenario ("My name is Alice" -> "Hello
// Alice").
type greeterHandler struct{}

func (greeterHandler) Call(ctx context.Context, addr qimessage.Address, body []byte) ([]byte, error) {
	name, err := qiformat.NewDecoder(wire.NewSliceReader(body)).DecodeString()
	if err != nil {
		return nil, fmt.Errorf("request body is not a string: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := qiformat.NewEncoder(&buf).EncodeString("Hello " + name); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (greeterHandler) FireAndForget(addr qimessage.Address, kind qinet.OnewayKind, body []byte) {
	minilog.Info("qictl: received %v at %v (%d bytes)", kind, addr, len(body))
}
