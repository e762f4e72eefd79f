package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/labwin/internal/launcher"
	"github.com/jmylchreest/labwin/internal/model"
)

// JSONFormatter formats listings as indented JSON arrays.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Windows writes windows as a JSON array.
func (f *JSONFormatter) Windows(w io.Writer, windows []model.WindowInfo) error {
	return f.encode(w, nonNil(windows))
}

// Presets writes presets as a JSON array.
func (f *JSONFormatter) Presets(w io.Writer, presets []launcher.Preset) error {
	return f.encode(w, nonNil(presets))
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// YAMLFormatter formats listings as YAML sequences.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Windows writes windows as a YAML sequence.
func (f *YAMLFormatter) Windows(w io.Writer, windows []model.WindowInfo) error {
	return f.encode(w, nonNil(windows))
}

// Presets writes presets as a YAML sequence.
func (f *YAMLFormatter) Presets(w io.Writer, presets []launcher.Preset) error {
	return f.encode(w, nonNil(presets))
}

func (f *YAMLFormatter) encode(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

// nonNil turns a nil slice into an empty one so it encodes as [].
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
