package main

import (
	"context"

	"github.com/aldebaran/qimessaging/pkg/qimessage"
	"github.com/aldebaran/qimessaging/pkg/qinet"
)

type client = qinet.Client

// runOneway dials dialAddr, sends one fire-and-forget request via
// send, then tears the connection down. Shared by post and event,
// which differ only in which Client method they call.
func runOneway(dialAddr, address, body string, send func(c client, ctx context.Context, addr qimessage.Address, b []byte) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	addr, err := parseAddress(address)
	if err != nil {
		return err
	}
	reqBody, err := encodeStringArg(body)
	if err != nil {
		return err
	}

	ctx := context.Background()
	ep, stop, err := dialEndpoint(ctx, dialAddr, cfg.ClientRequestCapacity)
	if err != nil {
		return err
	}
	defer stop()

	return send(ep.Client(), ctx, addr, reqBody)
}
