package qinet

import (
	"context"

	"github.com/aldebaran/qimessaging/pkg/qimessage"
)

// CallSnapshot is one entry of Snapshot.ClientPending.
type CallSnapshot struct {
	ID      uint32
	Address qimessage.Address
}

// InflightSnapshot is one entry of Snapshot.ServerInflight.
type InflightSnapshot struct {
	ID       uint32
	Address  qimessage.Address
	Canceled bool
}

// Snapshot is a point-in-time view of an Endpoint's correlation
// tables, for introspection (internal/qidebug) only.
type Snapshot struct {
	ClientPending  []CallSnapshot
	ServerInflight []InflightSnapshot
}

// Snapshot asks the dispatch loop for a copy of its correlation
// tables. Like everything else that touches client_pending/
// server_inflight, the read happens inside Run's own goroutine; this
// just queues the request and waits for the answer, so it's safe to
// call from any goroutine while Run is active.
func (e *Endpoint) Snapshot(ctx context.Context) (Snapshot, error) {
	respC := make(chan Snapshot, 1)
	select {
	case e.snapshotCh <- respC:
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
	select {
	case s := <-respC:
		return s, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

func (e *Endpoint) buildSnapshot() Snapshot {
	s := Snapshot{
		ClientPending:  make([]CallSnapshot, 0, len(e.clientPending)),
		ServerInflight: make([]InflightSnapshot, 0, len(e.serverInflight)),
	}
	for id, p := range e.clientPending {
		s.ClientPending = append(s.ClientPending, CallSnapshot{ID: id, Address: p.targetAddr})
	}
	for id, inf := range e.serverInflight {
		s.ServerInflight = append(s.ServerInflight, InflightSnapshot{ID: id, Address: inf.addr, Canceled: inf.canceled})
	}
	return s
}
