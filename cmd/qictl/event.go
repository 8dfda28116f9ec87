package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aldebaran/qimessaging/pkg/qimessage"
)

func newEventCommand() *cobra.Command {
	var dialAddr, address, body string

	cmd := &cobra.Command{
		Use:   "event",
		Short: "send a fire-and-forget Event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOneway(dialAddr, address, body, func(c client, ctx context.Context, addr qimessage.Address, b []byte) error {
				return c.Event(ctx, addr, b)
			})
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&dialAddr, "dial", "127.0.0.1:9900", "peer address to connect to")
	cmd.Flags().StringVar(&address, "address", "1.1.1", "service.object.action to send the event to")
	cmd.Flags().StringVar(&body, "body", "", "event body string")
	return cmd
}
