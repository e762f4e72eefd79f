package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var openOpts struct {
	title   string
	content string
	multi   bool
	payload payloadOpts
}

var openCmd = &cobra.Command{
	Use:   "open LABEL",
	Short: "Open a window",
	Long: `Open a window under LABEL and print its instance label.

By default the window is a singleton: if LABEL is already open it is focused
and handed the payload. With --multi every call opens a new window labelled
LABEL-1, LABEL-2, ...

Examples:
  # Open a settings window, or focus it if open
  labwin open settings --title Settings

  # Open a new chat window with a payload
  labwin open chat --multi --payload '{"room": "qa"}'

  # Open with a YAML payload read from stdin
  cat sample.yaml | labwin open sample-intake --payload-file -`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

var launchOpts struct {
	payload payloadOpts
}

var launchCmd = &cobra.Command{
	Use:   "launch PRESET",
	Short: "Open a window from a preset",
	Long: `Open the window described by a named preset and print its instance label.

Preset names match exactly, ignoring case, or by fuzzy match when exactly one
preset matches best. Run 'labwin presets' to list them.

Examples:
  labwin launch chain-of-custody --payload-file custody.json
  labwin launch intake`,
	Args: cobra.ExactArgs(1),
	RunE: runLaunch,
}

func init() {
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(launchCmd)

	openCmd.Flags().StringVar(&openOpts.title, "title", "",
		"Window title")
	openCmd.Flags().StringVar(&openOpts.content, "content", "",
		"Window content (payload-view, placeholder)")
	openCmd.Flags().BoolVarP(&openOpts.multi, "multi", "m", false,
		"Open a new numbered instance instead of focusing an open one")
	addPayloadFlags(openCmd, &openOpts.payload)

	addPayloadFlags(launchCmd, &launchOpts.payload)
}

func addPayloadFlags(cmd *cobra.Command, o *payloadOpts) {
	cmd.Flags().StringVarP(&o.inline, "payload", "p", "",
		"Payload as inline YAML or JSON")
	cmd.Flags().StringVarP(&o.file, "payload-file", "f", "",
		"Read the payload from a YAML or JSON file (- for stdin)")
}

func runOpen(cmd *cobra.Command, args []string) error {
	payload, err := openOpts.payload.read(cmd.InOrStdin())
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := callContext(cmd)
	defer cancel()

	instance, err := client.Open(ctx, args[0], openOpts.title, openOpts.content, openOpts.multi, payload)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), instance)
	return err
}

func runLaunch(cmd *cobra.Command, args []string) error {
	payload, err := launchOpts.payload.read(cmd.InOrStdin())
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := callContext(cmd)
	defer cancel()

	instance, err := client.Launch(ctx, args[0], payload)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), instance)
	return err
}
