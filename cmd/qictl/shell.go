package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/aldebaran/qimessaging/pkg/qinet"
)

// newShellCommand opens an interactive prompt against a single dialed
// peer, issuing one call/post/event per line typed. Lines look like:
//
//	call 1.1.1 hello world
//	post 1.1.1 ping
//	event 1.1.1 tick
func newShellCommand() *cobra.Command {
	var dialAddr string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "interactive prompt driving call/post/event against a peer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			ep, stop, err := dialEndpoint(ctx, dialAddr, cfg.ClientRequestCapacity)
			if err != nil {
				return err
			}
			defer stop()

			fmt.Println("use 'quit' or ^d to exit")
			fmt.Println()

			input := liner.NewLiner()
			defer input.Close()
			input.SetCtrlCAborts(true)

			prompt := fmt.Sprintf("qictl:%v$ ", dialAddr)

			for {
				line, err := input.Prompt(prompt)
				if err == liner.ErrPromptAborted {
					continue
				} else if err == io.EOF {
					break
				} else if err != nil {
					return err
				}

				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				input.AppendHistory(line)

				if line == "quit" {
					break
				}

				if err := runShellLine(ctx, ep, line); err != nil {
					fmt.Println("error:", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dialAddr, "dial", "127.0.0.1:9900", "peer address to connect to")
	return cmd
}

func runShellLine(ctx context.Context, ep *qinet.Endpoint, line string) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("usage: <call|post|event> <address> [body words...]")
	}
	verb, address := fields[0], fields[1]
	body := strings.Join(fields[2:], " ")

	addr, err := parseAddress(address)
	if err != nil {
		return err
	}
	reqBody, err := encodeStringArg(body)
	if err != nil {
		return err
	}

	c := ep.Client()
	switch verb {
	case "call":
		replyBody, err := c.Call(ctx, addr, reqBody)
		if err != nil {
			return err
		}
		reply, err := decodeStringBody(replyBody)
		if err != nil {
			return err
		}
		fmt.Println(reply)
		return nil
	case "post":
		return c.Post(ctx, addr, reqBody)
	case "event":
		return c.Event(ctx, addr, reqBody)
	default:
		return fmt.Errorf("unknown verb %q, want call/post/event", verb)
	}
}
