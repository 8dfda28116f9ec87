package qinet

import (
	"context"

	"github.com/aldebaran/qimessaging/pkg/qimessage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// IncomingItem is one element of the fallible incoming message stream:
// exactly one of Msg or Err is set. The stream ends when the channel
// producing these is closed.
type IncomingItem struct {
	Msg *qimessage.Message
	Err error
}

type pendingCall struct {
	resultC     chan CallResult
	watcherStop chan struct{}
	targetAddr  qimessage.Address
}

type inflightCall struct {
	addr     qimessage.Address
	cancel   context.CancelFunc
	canceled bool
}

type serverCallDone struct {
	id   uint32
	addr qimessage.Address
	body []byte
	err  error
}

// Endpoint is one side of a full-duplex qi connection: it owns the
// correlation state for outstanding calls in both directions and runs
// a single-goroutine dispatch loop (Run) that is the only thing
// allowed to touch that state, the same way meshage's messageHandler
// is the sole owner of its Node's routing tables.
type Endpoint struct {
	id      uuid.UUID
	handler Handler
	group   *errgroup.Group

	incoming <-chan IncomingItem
	outgoing chan *qimessage.Message

	clientReqCh chan clientRequest
	client      Client

	clientPending  map[uint32]*pendingCall
	serverInflight map[uint32]*inflightCall

	// idCounter is touched only by the dispatch loop goroutine (Run),
	// the same single-owner discipline as client_pending/server_inflight
	// above; no synchronization needed.
	idCounter uint32

	serverDoneCh     chan serverCallDone
	clientCancelCh   chan uint32
	snapshotCh       chan chan Snapshot
	backgroundCtx    context.Context
	cancelBackground context.CancelFunc
}

// NewEndpoint creates an Endpoint. incoming is closed by the caller's
// transport read loop when the connection ends (or yields a final
// IncomingItem with Err set). clientReqCapacity bounds how many
// pending client requests Run will buffer before Client methods block;
// 0 selects DefaultClientRequestCapacity.
func NewEndpoint(handler Handler, incoming <-chan IncomingItem, clientReqCapacity int) *Endpoint {
	if clientReqCapacity <= 0 {
		clientReqCapacity = DefaultClientRequestCapacity
	}
	client, reqCh := newClient(clientReqCapacity)
	bgCtx, cancel := context.WithCancel(context.Background())
	return &Endpoint{
		id:               uuid.New(),
		handler:          handler,
		group:            new(errgroup.Group),
		incoming:         incoming,
		outgoing:         make(chan *qimessage.Message),
		clientReqCh:      reqCh,
		client:           client,
		clientPending:    make(map[uint32]*pendingCall),
		serverInflight:   make(map[uint32]*inflightCall),
		serverDoneCh:     make(chan serverCallDone),
		clientCancelCh:   make(chan uint32),
		snapshotCh:       make(chan chan Snapshot),
		backgroundCtx:    bgCtx,
		cancelBackground: cancel,
	}
}

// Client returns the handle used to issue outgoing Call/Post/Event/
// Capabilities/Cancel requests on this endpoint.
func (e *Endpoint) Client() Client { return e.client }

// InstanceID identifies this Endpoint incarnation, so a peer that
// keeps per-connection state across reconnects doesn't confuse a
// restarted endpoint's low message ids with a previous incarnation's.
func (e *Endpoint) InstanceID() uuid.UUID { return e.id }

// CloseClientRequests closes the client request channel, the
// "all client handles dropped" half of the termination conjunction in
// §4.6.3. Calling it twice panics, matching close()'s own semantics;
// callers own exactly one shutdown sequence.
func (e *Endpoint) CloseClientRequests() { close(e.clientReqCh) }

// Outgoing is the channel Run publishes frames to send on; a
// transport write loop must drain it. It is closed once Run has
// finished emitting every frame it will ever emit.
func (e *Endpoint) Outgoing() <-chan *qimessage.Message { return e.outgoing }

func (e *Endpoint) nextID() uint32 {
	e.idCounter++
	if e.idCounter == 0 {
		e.idCounter = 1
	}
	return e.idCounter
}

// Run drives the dispatch loop until the incoming stream and the
// client request channel have both closed and every pending call (in
// either direction) has resolved, then closes Outgoing and returns.
// It also stops early, returning ctx.Err(), if ctx is canceled, and
// returns the *HandlerError itself once the Error reply for a fatal
// handler error has been emitted.
func (e *Endpoint) Run(ctx context.Context) error {
	defer close(e.outgoing)
	defer e.group.Wait()
	defer e.cancelBackground()

	incoming := e.incoming
	clientReq := e.clientReqCh
	incomingClosed := false
	clientReqClosed := false

	for {
		if incomingClosed && clientReqClosed &&
			len(e.clientPending) == 0 && len(e.serverInflight) == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case item, ok := <-incoming:
			if !ok {
				incoming = nil
				incomingClosed = true
				continue
			}
			if item.Err != nil {
				// A stream read failure terminates the connection; finish
				// flushing whatever is already in flight isn't possible
				// once the peer is unreachable, so resolve everything
				// outstanding with the error and shut down.
				e.failAllPending(&StreamError{Err: item.Err})
				return item.Err
			}
			e.handleIncoming(item.Msg)

		case req, ok := <-clientReq:
			if !ok {
				clientReq = nil
				clientReqClosed = true
				continue
			}
			e.handleClientRequest(req)

		case done := <-e.serverDoneCh:
			inf, known := e.serverInflight[done.id]
			e.handleServerDone(done)
			if he, ok := done.err.(*HandlerError); ok && he.Fatal && known && !inf.canceled {
				// The Error reply has already been handed to Outgoing;
				// a fatal handler error ends the dispatcher here.
				e.failAllPending(he)
				return he
			}

		case id := <-e.clientCancelCh:
			e.handleClientCancel(id)

		case respC := <-e.snapshotCh:
			respC <- e.buildSnapshot()
		}
	}
}

func (e *Endpoint) failAllPending(err error) {
	for id, p := range e.clientPending {
		p.resultC <- CallResult{Err: err}
		close(p.watcherStop)
		delete(e.clientPending, id)
	}
	for id, inf := range e.serverInflight {
		inf.cancel()
		delete(e.serverInflight, id)
	}
}

func (e *Endpoint) handleIncoming(m *qimessage.Message) {
	switch m.Type {
	case qimessage.Call:
		e.startServerCall(m)
	case qimessage.Reply:
		e.resolveClientCall(m.ID, CallResult{Body: m.Body})
	case qimessage.Error:
		desc, err := qimessage.DecodeErrorBody(m.Body)
		if err != nil {
			e.resolveClientCall(m.ID, CallResult{Err: err})
			return
		}
		e.resolveClientCall(m.ID, CallResult{Err: &CallError{Description: desc}})
	case qimessage.Canceled:
		e.resolveClientCall(m.ID, CallResult{Err: ErrCallCanceled})
	case qimessage.Post:
		e.handler.FireAndForget(m.Address, OnewayPost, m.Body)
	case qimessage.Event:
		e.handler.FireAndForget(m.Address, OnewayEvent, m.Body)
	case qimessage.Capabilities:
		e.handler.FireAndForget(m.Address, OnewayCapabilities, m.Body)
	case qimessage.Cancel:
		targetID, err := qimessage.DecodeCancelBody(m.Body)
		if err != nil {
			return
		}
		if inf, ok := e.serverInflight[targetID]; ok {
			inf.canceled = true
			inf.cancel()
		}
	}
}

func (e *Endpoint) startServerCall(m *qimessage.Message) {
	ctx, cancel := context.WithCancel(e.backgroundCtx)
	e.serverInflight[m.ID] = &inflightCall{addr: m.Address, cancel: cancel}

	id, addr, body := m.ID, m.Address, m.Body
	e.group.Go(func() error {
		result, err := e.handler.Call(ctx, addr, body)
		select {
		case e.serverDoneCh <- serverCallDone{id: id, addr: addr, body: result, err: err}:
		case <-e.backgroundCtx.Done():
		}
		return nil
	})
}

func (e *Endpoint) handleServerDone(done serverCallDone) {
	inf, ok := e.serverInflight[done.id]
	if !ok {
		return
	}
	delete(e.serverInflight, done.id)

	if inf.canceled {
		e.outgoing <- &qimessage.Message{ID: done.id, Type: qimessage.Canceled, Address: inf.addr}
		return
	}

	if done.err != nil {
		fatal := false
		if he, ok := done.err.(*HandlerError); ok {
			fatal = he.Fatal
		}
		body, encErr := qimessage.NewErrorBody(done.err.Error())
		if encErr != nil {
			body, _ = qimessage.NewErrorBody("internal error encoding failure description")
		}
		e.outgoing <- &qimessage.Message{ID: done.id, Type: qimessage.Error, Address: inf.addr, Body: body}
		if fatal {
			e.cancelBackground()
		}
		return
	}

	e.outgoing <- &qimessage.Message{ID: done.id, Type: qimessage.Reply, Address: inf.addr, Body: done.body}
}

func (e *Endpoint) resolveClientCall(id uint32, res CallResult) {
	p, ok := e.clientPending[id]
	if !ok {
		return
	}
	delete(e.clientPending, id)
	close(p.watcherStop)
	p.resultC <- res
}

func (e *Endpoint) handleClientCancel(id uint32) {
	// Only reachable while the call is still pending (see
	// watchCancellation); tell the peer to abandon it.
	p, ok := e.clientPending[id]
	if !ok {
		return
	}
	// The caller's own Call() already returned ctx.Err() locally
	// (client.go) without waiting for the peer; termination (§4.6.3)
	// must not keep blocking on a peer confirmation that may never
	// arrive, so this entry is abandoned here rather than left for
	// resolveClientCall. A late Reply/Error/Canceled for this id is a
	// no-op: resolveClientCall's lookup will simply miss.
	delete(e.clientPending, id)
	e.outgoing <- &qimessage.Message{ID: e.nextID(), Type: qimessage.Cancel, Address: p.targetAddr, Body: qimessage.NewCancelBody(id)}
}

func (e *Endpoint) handleClientRequest(req clientRequest) {
	switch r := req.(type) {
	case callRequest:
		id := e.nextID()
		watcherStop := make(chan struct{})
		e.clientPending[id] = &pendingCall{resultC: r.resultC, watcherStop: watcherStop, targetAddr: r.addr}
		e.watchCancellation(r.ctx, id, watcherStop)
		e.outgoing <- &qimessage.Message{ID: id, Type: qimessage.Call, Address: r.addr, Body: r.body}

	case postRequest:
		e.outgoing <- &qimessage.Message{ID: e.nextID(), Type: qimessage.Post, Address: r.addr, Body: r.body}
		r.done <- nil

	case eventRequest:
		e.outgoing <- &qimessage.Message{ID: e.nextID(), Type: qimessage.Event, Address: r.addr, Body: r.body}
		r.done <- nil

	case capabilitiesRequest:
		e.outgoing <- &qimessage.Message{ID: e.nextID(), Type: qimessage.Capabilities, Address: r.addr, Body: r.body}
		r.done <- nil

	case cancelRequest:
		e.outgoing <- &qimessage.Message{ID: e.nextID(), Type: qimessage.Cancel, Address: r.addr, Body: qimessage.NewCancelBody(r.targetID)}
		r.done <- nil
	}
}

// watchCancellation spawns the goroutine that turns "the caller
// dropped interest in this call" (ctx canceled) into a clientCancelCh
// event the dispatch loop can act on; it exits without sending once
// watcherStop is closed by the loop itself resolving the call first.
func (e *Endpoint) watchCancellation(ctx context.Context, id uint32, watcherStop chan struct{}) {
	go func() {
		select {
		case <-ctx.Done():
			select {
			case e.clientCancelCh <- id:
			case <-watcherStop:
			case <-e.backgroundCtx.Done():
			}
		case <-watcherStop:
		}
	}()
}
