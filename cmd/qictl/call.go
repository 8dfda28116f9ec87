package main

import (
	"bytes"
	"context"
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/aldebaran/qimessaging/internal/qiformat"
	"github.com/aldebaran/qimessaging/internal/qiformat/wire"
	"github.com/aldebaran/qimessaging/pkg/qimessage"
	"github.com/aldebaran/qimessaging/pkg/qinet"
)

// dialEndpoint connects to addr and returns a running Endpoint whose
// client requests flow over that connection. The caller is
// responsible for canceling ctx (or closing the connection) once
// done; the returned stop func does both.
func dialEndpoint(ctx context.Context, dialAddr string, clientReqCapacity int) (*qinet.Endpoint, func(), error) {
	conn, err := net.Dial("tcp", dialAddr)
	if err != nil {
		return nil, nil, err
	}

	incoming := make(chan qinet.IncomingItem)
	ep := qinet.NewEndpoint(noopHandler{}, incoming, clientReqCapacity)

	runCtx, cancel := context.WithCancel(ctx)
	go pumpIncoming(conn, incoming)
	go pumpOutgoing(conn, ep.Outgoing())
	go ep.Run(runCtx)

	stop := func() {
		cancel()
		ep.CloseClientRequests()
		conn.Close()
	}
	return ep, stop, nil
}

// noopHandler is used by qictl's client-only subcommands, which never
// serve incoming Calls or fire-and-forget requests of their own.
type noopHandler struct{}

func (noopHandler) Call(ctx context.Context, addr qimessage.Address, body []byte) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (noopHandler) FireAndForget(addr qimessage.Address, kind qinet.OnewayKind, body []byte) {}

func parseAddress(s string) (qimessage.Address, error) {
	var svc, obj, act uint32
	if _, err := fmt.Sscanf(s, "%d.%d.%d", &svc, &obj, &act); err != nil {
		return qimessage.Address{}, fmt.Errorf("address must be service.object.action, got %q", s)
	}
	return qimessage.Address{Service: svc, Object: obj, Action: act}, nil
}

func encodeStringArg(s string) ([]byte, error) {
	var buf bytes.Buffer
	if err := qiformat.NewEncoder(&buf).EncodeString(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeStringBody(b []byte) (string, error) {
	return qiformat.NewDecoder(wire.NewSliceReader(b)).DecodeString()
}

func newCallCommand() *cobra.Command {
	var dialAddr, address, body string

	cmd := &cobra.Command{
		Use:   "call",
		Short: "issue a single Call and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			replyBody, err := ep.Client().Call(ctx, addr, reqBody)
			if err != nil {
				return err
			}
			reply, err := decodeStringBody(replyBody)
			if err != nil {
				return err
			}
			fmt.Println(reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&dialAddr, "dial", "127.0.0.1:9900", "peer address to connect to")
	cmd.Flags().StringVar(&address, "address", "1.1.1", "service.object.action to call")
	cmd.Flags().StringVar(&body, "body", "", "request body string")
	return cmd
}
