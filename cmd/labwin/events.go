package main

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/labwin/internal/dbus"
)

var eventsOpts struct {
	json bool
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print window open and close events",
	Long: `Print WindowOpened and WindowClosed signals from labwind until interrupted.

Each line is "opened LABEL INSTANCE" or "closed INSTANCE", or one JSON object
per line with --json.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().BoolVar(&eventsOpts.json, "json", false,
		"Print one JSON object per event")
}

// eventRecord is the --json form of an event.
type eventRecord struct {
	Event    string `json:"event"`
	Label    string `json:"label,omitempty"`
	Instance string `json:"instance"`
	Time     string `json:"time"`
}

func formatEvent(ev dbus.Event, asJSON bool, now time.Time) (string, error) {
	name := "opened"
	if ev.Name == dbus.SignalWindowClosed {
		name = "closed"
	}

	if asJSON {
		data, err := json.Marshal(eventRecord{
			Event:    name,
			Label:    ev.Label,
			Instance: ev.Instance,
			Time:     now.Format(time.RFC3339),
		})
		return string(data), err
	}

	if name == "closed" {
		return fmt.Sprintf("closed %s", ev.Instance), nil
	}
	return fmt.Sprintf("opened %s %s", ev.Label, ev.Instance), nil
}

func runEvents(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, err := client.Subscribe(ctx)
	if err != nil {
		return err
	}

	for ev := range events {
		line, err := formatEvent(ev, eventsOpts.json, time.Now())
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return err
		}
	}
	return nil
}
