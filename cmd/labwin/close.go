package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var closeCmd = &cobra.Command{
	Use:   "close LABEL...",
	Short: "Close windows",
	Long: `Close the windows tracked under each LABEL.

A LABEL is either a singleton label (settings) or an instance label (chat-2).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClose,
}

var closeAllCmd = &cobra.Command{
	Use:   "close-all",
	Short: "Close every window",
	Long: `Close every window and reset instance numbering, so the next
multi-instance window of each label is numbered from 1 again.`,
	Args: cobra.NoArgs,
	RunE: runCloseAll,
}

var isOpenOpts struct {
	quiet bool
}

var isOpenCmd = &cobra.Command{
	Use:   "is-open LABEL",
	Short: "Report whether a window is open",
	Long: `Print true or false. Exits with status 1 when the window is not open,
so it can be used in shell conditions:

  labwin is-open -q settings || labwin open settings`,
	Args: cobra.ExactArgs(1),
	RunE: runIsOpen,
}

func init() {
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(closeAllCmd)
	rootCmd.AddCommand(isOpenCmd)

	isOpenCmd.Flags().BoolVarP(&isOpenOpts.quiet, "quiet", "q", false,
		"Print nothing, only set the exit status")
}

func runClose(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := callContext(cmd)
	defer cancel()

	var errs []error
	for _, label := range args {
		if err := client.Close(ctx, label); err != nil {
			errs = append(errs, err)
			continue
		}
		logger.Debug("closed window", "label", label)
	}
	return errors.Join(errs...)
}

func runCloseAll(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := callContext(cmd)
	defer cancel()

	return client.CloseAll(ctx)
}

func runIsOpen(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := callContext(cmd)
	defer cancel()

	open, err := client.IsOpen(ctx, args[0])
	if err != nil {
		return err
	}

	if !isOpenOpts.quiet {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), open); err != nil {
			return err
		}
	}
	if !open {
		return &exitError{code: 1}
	}
	return nil
}
