package main

import (
	"context"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/aldebaran/qimessaging/internal/qidebug"
	"github.com/aldebaran/qimessaging/pkg/minilog"
	"github.com/aldebaran/qimessaging/pkg/qinet"
)

func newServeCommand() *cobra.Command {
	var listen string
	var debugListen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "accept connections and answer Calls with a demo greeter handler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("debug-listen") {
				cfg.DebugListen = debugListen
			}

			ring := minilog.NewRing(cfg.DebugRingSize)
			minilog.AddRingLogger("ring", ring, minilog.DEBUG)

			ln, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return err
			}
			defer ln.Close()
			minilog.Info("qictl: listening on %s", ln.Addr())

			for {
				conn, err := ln.Accept()
				if err != nil {
					return err
				}
				go serveConn(conn, cfg.ClientRequestCapacity, cfg.DebugListen, ring)
			}
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on")
	cmd.Flags().StringVar(&debugListen, "debug-listen", "", "address for the HTTP debug surface, empty disables it")
	return cmd
}

func serveConn(conn net.Conn, clientReqCapacity int, debugListen string, ring *minilog.Ring) {
	defer conn.Close()
	minilog.Info("qictl: connection from %s", conn.RemoteAddr())

	incoming := make(chan qinet.IncomingItem)
	ep := qinet.NewEndpoint(greeterHandler{}, incoming, clientReqCapacity)

	go pumpIncoming(conn, incoming)
	go pumpOutgoing(conn, ep.Outgoing())

	if debugListen != "" {
		go serveDebugSurface(debugListen, ep, ring)
	}

	if err := ep.Run(context.Background()); err != nil {
		minilog.Warn("qictl: endpoint for %s ended: %v", conn.RemoteAddr(), err)
	}
}

func serveDebugSurface(addr string, ep *qinet.Endpoint, ring *minilog.Ring) {
	srv := qidebug.NewServer(ep, ring)
	minilog.Info("qictl: debug surface on %s", addr)
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		minilog.Error("qictl: debug surface: %v", err)
	}
}
