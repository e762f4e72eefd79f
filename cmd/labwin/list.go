package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/labwin/internal/config"
	"github.com/jmylchreest/labwin/internal/model"
	"github.com/jmylchreest/labwin/internal/output"
)

var listOpts struct {
	format    string
	template  string
	noHeaders bool
	search    string
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List open windows",
	Long: `List open windows, oldest first.

Examples:
  labwin list
  labwin list --format json
  labwin list --search chat --template '{{.Instance}} opened {{age .}}'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var presetsOpts struct {
	format     string
	noHeaders  bool
	daemonPath string
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List launch presets",
	Long: `List the built-in presets merged with the [[launcher]] entries of
labwind.toml, as labwind resolves them.`,
	Args: cobra.NoArgs,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(presetsCmd)

	listCmd.Flags().StringVar(&listOpts.format, "format", "",
		"Output format (table, json, yaml; default from config)")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Go template applied to each window (table format)")
	listCmd.Flags().BoolVar(&listOpts.noHeaders, "no-headers", false,
		"Omit the table header")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Only list windows whose label contains this text")

	presetsCmd.Flags().StringVar(&presetsOpts.format, "format", "",
		"Output format (table, json, yaml; default from config)")
	presetsCmd.Flags().BoolVar(&presetsOpts.noHeaders, "no-headers", false,
		"Omit the table header")
	presetsCmd.Flags().StringVar(&presetsOpts.daemonPath, "daemon-config", "",
		"Path to labwind.toml (default: ~/.config/labwin/labwind.toml)")
}

// formatter builds the formatter for a --format flag, falling back to the
// configured list format.
func formatter(format string, opts output.FormatterOptions) (output.Formatter, error) {
	if format == "" {
		format = getConfig().List.Format
	}
	ft, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(ft, opts)
}

func runList(cmd *cobra.Command, args []string) error {
	f, err := formatter(listOpts.format, output.FormatterOptions{
		Template:  listOpts.template,
		NoHeaders: listOpts.noHeaders,
	})
	if err != nil {
		return err
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := callContext(cmd)
	defer cancel()

	windows, err := client.List(ctx)
	if err != nil {
		return err
	}

	return f.Windows(cmd.OutOrStdout(), filterWindows(windows, listOpts.search))
}

// filterWindows keeps the windows matching search, oldest first.
func filterWindows(windows []model.WindowInfo, search string) []model.WindowInfo {
	out := make([]model.WindowInfo, 0, len(windows))
	for _, w := range windows {
		if w.Matches(search) {
			out = append(out, w)
		}
	}
	model.SortByOpened(out)
	return out
}

func runPresets(cmd *cobra.Command, args []string) error {
	f, err := formatter(presetsOpts.format, output.FormatterOptions{NoHeaders: presetsOpts.noHeaders})
	if err != nil {
		return err
	}

	daemonCfg, err := config.LoadDaemonConfig(presetsOpts.daemonPath)
	if err != nil {
		return err
	}
	registry, err := daemonCfg.Presets()
	if err != nil {
		return err
	}

	return f.Presets(cmd.OutOrStdout(), registry.Presets())
}
