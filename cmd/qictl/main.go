// Command qictl is a CLI client and demo server for the qi messaging
// protocol: serve stands up a listener, call/post/event drive a single
// request against a peer, and shell gives an interactive prompt for
// repeated calls.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/aldebaran/qimessaging/internal/qiconfig"
	"github.com/aldebaran/qimessaging/pkg/minilog"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "qictl",
		Short:         "qi messaging protocol client and demo server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(newServeCommand())
	root.AddCommand(newCallCommand())
	root.AddCommand(newPostCommand())
	root.AddCommand(newEventCommand())
	root.AddCommand(newShellCommand())

	if err := root.Execute(); err != nil {
		minilog.Error("qictl: %v", err)
		os.Exit(1)
	}
}

// loadConfig applies qiconfig's default/YAML/env layers only; the
// per-subcommand cobra flags defined below are the flag layer here,
// so qictl's own CLI args never go through qiconfig.Load's flag.FlagSet.
func loadConfig() (qiconfig.Config, error) {
	cfg, err := qiconfig.Load(configPath, nil)
	if err != nil {
		return qiconfig.Config{}, err
	}
	if err := qiconfig.SetupLogging(cfg); err != nil {
		return qiconfig.Config{}, err
	}
	return cfg, nil
}
