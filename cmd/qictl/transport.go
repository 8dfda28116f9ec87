package main

import (
	"errors"
	"io"
	"net"

	"github.com/aldebaran/qimessaging/pkg/minilog"
	"github.com/aldebaran/qimessaging/pkg/qimessage"
	"github.com/aldebaran/qimessaging/pkg/qinet"
)

// pumpIncoming reads frames off conn until it errors or is closed,
// publishing each as an IncomingItem; it closes items on EOF so the
// dispatch loop sees §4.6.3's "incoming stream exhausted" condition,
// or sends a final error item on any other failure.
func pumpIncoming(conn net.Conn, items chan<- qinet.IncomingItem) {
	defer close(items)
	for {
		m, err := qimessage.Read(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				items <- qinet.IncomingItem{Err: err}
			}
			return
		}
		items <- qinet.IncomingItem{Msg: m}
	}
}

// pumpOutgoing drains an Endpoint's outgoing channel onto conn until
// it's closed, logging (not panicking on) write failures since the
// peer may have already hung up.
func pumpOutgoing(conn net.Conn, out <-chan *qimessage.Message) {
	for m := range out {
		if err := qimessage.Write(conn, m); err != nil {
			minilog.Error("qictl: write to %s: %v", conn.RemoteAddr(), err)
			return
		}
	}
}
