package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/labwin/internal/dbus"
	"github.com/jmylchreest/labwin/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive window browser",
	Long: `Launch the interactive terminal browser for labwind windows.

The list refreshes when windows open or close, and every refresh_interval.

Key bindings:
  j/k, ↑/↓    Navigate list
  enter       View window details
  f           Focus a singleton window
  c           Copy instance label to clipboard
  d           Close window
  D           Close all windows
  /           Search windows
  r           Refresh
  ?           Show help
  q           Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var changes <-chan struct{}
	events, err := client.Subscribe(ctx)
	if err != nil {
		logger.Warn("failed to subscribe to window signals, polling only", "error", err)
	} else {
		changes = coalesce(events)
	}

	return tui.Run(tui.RunOptions{
		Config:  getConfig(),
		Source:  client,
		Changes: changes,
	})
}

// coalesce turns window events into change notifications, dropping
// notifications while one is still pending.
func coalesce(events <-chan dbus.Event) <-chan struct{} {
	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		for range events {
			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}()
	return changes
}
