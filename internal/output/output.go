// Package output formats window listings and presets for the CLI.
package output

import (
	"fmt"
	"io"
	"slices"

	"github.com/jmylchreest/labwin/internal/launcher"
	"github.com/jmylchreest/labwin/internal/model"
)

// Formatter writes listings.
type Formatter interface {
	// Windows writes a window listing.
	Windows(w io.Writer, windows []model.WindowInfo) error
	// Presets writes a preset listing.
	Presets(w io.Writer, presets []launcher.Preset) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// FormatTypes returns every supported format.
func FormatTypes() []FormatType {
	return []FormatType{FormatTable, FormatJSON, FormatYAML}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (FormatType, error) {
	f := FormatType(s)
	if !slices.Contains(FormatTypes(), f) {
		return "", fmt.Errorf("invalid format %q, must be one of: %v", s, FormatTypes())
	}
	return f, nil
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template  string // Go template applied per window, table format only
	NoHeaders bool   // omit the table header row
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatTable, "":
		return NewTableFormatter(opts)
	default:
		return nil, fmt.Errorf("invalid format %q", format)
	}
}
