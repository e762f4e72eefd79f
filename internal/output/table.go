package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/labwin/internal/launcher"
	"github.com/jmylchreest/labwin/internal/model"
)

// TableFormatter formats listings as aligned columns.
type TableFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewTableFormatter creates a new table formatter. A custom template
// replaces the table for window listings.
func NewTableFormatter(opts FormatterOptions) (*TableFormatter, error) {
	f := &TableFormatter{opts: opts}
	if opts.Template != "" {
		tmpl, err := template.New("window").Funcs(templateFuncs()).Parse(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		f.template = tmpl
	}
	return f, nil
}

// Windows writes one row per window.
func (f *TableFormatter) Windows(w io.Writer, windows []model.WindowInfo) error {
	if f.template != nil {
		for _, info := range windows {
			if err := f.template.Execute(w, info); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		return nil
	}

	rows := make([][]string, 0, len(windows))
	for _, info := range windows {
		rows = append(rows, []string{info.Instance, info.Label, info.Mode(), info.Age(), info.ID})
	}
	return f.render(w, []string{"INSTANCE", "LABEL", "MODE", "OPENED", "ID"}, rows)
}

// Presets writes one row per preset.
func (f *TableFormatter) Presets(w io.Writer, presets []launcher.Preset) error {
	rows := make([][]string, 0, len(presets))
	for _, p := range presets {
		mode := "multi"
		if p.Singleton {
			mode = "singleton"
		}
		rows = append(rows, []string{p.Name, p.Label, p.Title, mode, presetSize(p), string(p.Edge)})
	}
	return f.render(w, []string{"NAME", "LABEL", "TITLE", "MODE", "SIZE", "EDGE"}, rows)
}

func presetSize(p launcher.Preset) string {
	if p.Maximized {
		return "maximized"
	}
	dim := func(v int) string {
		if v == 0 {
			return "-"
		}
		return strconv.Itoa(v)
	}
	return dim(p.Width) + "x" + dim(p.Height)
}

func (f *TableFormatter) render(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().PaddingRight(2)
		}).
		Rows(rows...)
	if !f.opts.NoHeaders {
		t = t.Headers(headers...)
	}

	out := t.String()
	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// templateFuncs returns the functions available to custom templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"age": func(info model.WindowInfo) string {
			return humanize.Time(info.Time())
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
}
