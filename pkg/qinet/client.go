package qinet

import (
	"context"

	"github.com/aldebaran/qimessaging/pkg/qimessage"
)

// Client is the caller-facing handle onto an Endpoint's dispatch loop.
// It is a thin wrapper around a channel and is safe to copy and share
// across goroutines, the way teacher code passes a Node around by
// pointer and lets callers hit its channels directly.
type Client struct {
	reqCh chan clientRequest
}

func newClient(cap int) (Client, chan clientRequest) {
	ch := make(chan clientRequest, cap)
	return Client{reqCh: ch}, ch
}

func (c Client) send(ctx context.Context, r clientRequest) (err error) {
	// A send on the request channel after CloseClientRequests panics;
	// report it as ErrSendClosed instead.
	defer func() {
		if recover() != nil {
			err = ErrSendClosed
		}
	}()
	select {
	case c.reqCh <- r:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call sends a Call message and blocks until the matching Reply,
// Error, or Canceled arrives, or ctx is canceled first. A ctx
// cancellation also causes the dispatcher to emit a Cancel message to
// the peer on the caller's behalf (spec.md §4.6.4).
func (c Client) Call(ctx context.Context, addr qimessage.Address, body []byte) ([]byte, error) {
	resultC := make(chan CallResult, 1)
	if err := c.send(ctx, callRequest{ctx: ctx, addr: addr, body: body, resultC: resultC}); err != nil {
		return nil, err
	}
	select {
	case res := <-resultC:
		return res.Body, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Post sends a fire-and-forget message: no reply, no correlation id
// tracked beyond the wire.
func (c Client) Post(ctx context.Context, addr qimessage.Address, body []byte) error {
	done := make(chan error, 1)
	if err := c.send(ctx, postRequest{addr: addr, body: body, done: done}); err != nil {
		return err
	}
	return waitDone(ctx, done)
}

// Event sends an Event message, identical on the wire to Post but
// distinguished by Type so a peer can route subscriptions.
func (c Client) Event(ctx context.Context, addr qimessage.Address, body []byte) error {
	done := make(chan error, 1)
	if err := c.send(ctx, eventRequest{addr: addr, body: body, done: done}); err != nil {
		return err
	}
	return waitDone(ctx, done)
}

// Capabilities sends a Capabilities message (the handshake payload
// advertising supported features), pre-encoded by the caller.
func (c Client) Capabilities(ctx context.Context, addr qimessage.Address, body []byte) error {
	done := make(chan error, 1)
	if err := c.send(ctx, capabilitiesRequest{addr: addr, body: body, done: done}); err != nil {
		return err
	}
	return waitDone(ctx, done)
}

// Cancel asks the dispatcher to send a Cancel message targeting an
// outstanding call this endpoint made. Most callers don't need this
// directly: canceling the ctx passed to Call does it automatically.
func (c Client) Cancel(ctx context.Context, targetID uint32, addr qimessage.Address) error {
	done := make(chan error, 1)
	if err := c.send(ctx, cancelRequest{targetID: targetID, addr: addr, done: done}); err != nil {
		return err
	}
	return waitDone(ctx, done)
}

func waitDone(ctx context.Context, done chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
