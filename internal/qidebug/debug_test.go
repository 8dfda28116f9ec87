package qidebug

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aldebaran/qimessaging/pkg/minilog"
	"github.com/aldebaran/qimessaging/pkg/qimessage"
	"github.com/aldebaran/qimessaging/pkg/qinet"
)

type noopHandler struct{}

func (noopHandler) Call(ctx context.Context, addr qimessage.Address, body []byte) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (noopHandler) FireAndForget(addr qimessage.Address, kind qinet.OnewayKind, body []byte) {}

func TestDebugPendingReflectsInflightCall(t *testing.T) {
	incoming := make(chan qinet.IncomingItem)
	ep := qinet.NewEndpoint(noopHandler{}, incoming, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ep.Run(ctx)
	go func() {
		for range ep.Outgoing() {
		}
	}()

	addr := qimessage.Address{Service: 7, Object: 8, Action: 9}
	incoming <- qinet.IncomingItem{Msg: &qimessage.Message{ID: 1, Type: qimessage.Call, Address: addr}}

	ring := minilog.NewRing(16)
	srv := NewServer(ep, ring)

	req := httptest.NewRequest(http.MethodGet, "/debug/pending", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var got pendingSnapshotJSON
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.ServerInflight) != 1 || got.ServerInflight[0].ID != 1 {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestDebugLogServesRingContents(t *testing.T) {
	ring := minilog.NewRing(4)
	ring.Println("hello from the ring")

	srv := NewServer(nil, ring)
	req := httptest.NewRequest(http.MethodGet, "/debug/log", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !contains(w.Body.String(), "hello from the ring") {
		t.Fatalf("log output missing expected line: %q", w.Body.String())
	}
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
