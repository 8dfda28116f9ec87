// Package qidebug exposes a small HTTP surface for inspecting a live
// qinet.Endpoint: pending call correlation state and a tail of recent
// log lines. It is read-only by design; nothing here lets a caller
// mutate endpoint state, and the snapshot itself is produced by the
// dispatch loop (see qinet.Endpoint.Snapshot), never read directly off
// its unexported maps.
package qidebug

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aldebaran/qimessaging/pkg/minilog"
	"github.com/aldebaran/qimessaging/pkg/qinet"
)

// snapshotTimeout bounds how long a /debug/pending request waits on a
// busy dispatch loop before giving up.
const snapshotTimeout = 2 * time.Second

// Server is the debug HTTP surface. Router returns its chi router;
// callers own listening (see cmd/qictl's "serve" command).
type Server struct {
	endpoint *qinet.Endpoint
	ring     *minilog.Ring
}

// NewServer builds a debug Server over a live Endpoint. ring backs
// /debug/log's tail (pass the same *Ring given to
// minilog.AddRingLogger so the two observe the same buffer).
func NewServer(endpoint *qinet.Endpoint, ring *minilog.Ring) *Server {
	return &Server{endpoint: endpoint, ring: ring}
}

// Router returns the chi router serving this Server's endpoints.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/debug/pending", s.handlePending)
	r.Get("/debug/log", s.handleLog)
	return r
}

// pendingSnapshotJSON is qinet.Snapshot reshaped for stable field
// naming on the wire, independent of qinet's Go identifiers.
type pendingSnapshotJSON struct {
	ClientPending  []callJSON     `json:"client_pending"`
	ServerInflight []inflightJSON `json:"server_inflight"`
}

type callJSON struct {
	ID      uint32 `json:"id"`
	Address string `json:"address"`
}

type inflightJSON struct {
	ID       uint32 `json:"id"`
	Address  string `json:"address"`
	Canceled bool   `json:"canceled"`
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), snapshotTimeout)
	defer cancel()

	snap, err := s.endpoint.Snapshot(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	out := pendingSnapshotJSON{
		ClientPending:  make([]callJSON, len(snap.ClientPending)),
		ServerInflight: make([]inflightJSON, len(snap.ServerInflight)),
	}
	for i, c := range snap.ClientPending {
		out.ClientPending[i] = callJSON{ID: c.ID, Address: c.Address.String()}
	}
	for i, inf := range snap.ServerInflight {
		out.ServerInflight[i] = inflightJSON{ID: inf.ID, Address: inf.Address.String(), Canceled: inf.Canceled}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.ring == nil {
		return
	}
	for _, line := range s.ring.Dump() {
		w.Write([]byte(line))
	}
}
