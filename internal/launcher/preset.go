// Package launcher binds named presets to window configurations.
package launcher

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/jmylchreest/labwin/internal/geometry"
)

var (
	// ErrUnknownPreset is returned when no preset matches a name.
	ErrUnknownPreset = errors.New("unknown preset")
	// ErrAmbiguousPreset is returned when a fuzzy name matches several presets equally well.
	ErrAmbiguousPreset = errors.New("ambiguous preset")
)

// Preset is a named window configuration.
type Preset struct {
	Name      string        `toml:"name" json:"name" yaml:"name"`
	Label     string        `toml:"label" json:"label" yaml:"label"`
	Title     string        `toml:"title,omitempty" json:"title,omitempty" yaml:"title,omitempty"`
	Content   string        `toml:"content,omitempty" json:"content,omitempty" yaml:"content,omitempty"`
	Width     int           `toml:"width,omitempty" json:"width,omitempty" yaml:"width,omitempty"`
	Height    int           `toml:"height,omitempty" json:"height,omitempty" yaml:"height,omitempty"`
	Edge      geometry.Edge `toml:"edge,omitempty" json:"edge,omitempty" yaml:"edge,omitempty"`
	Singleton bool          `toml:"singleton" json:"singleton" yaml:"singleton"`
	Maximized bool          `toml:"maximized,omitempty" json:"maximized,omitempty" yaml:"maximized,omitempty"`
}

// Validate checks a preset is usable.
func (p Preset) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset name cannot be empty")
	}
	if p.Width < 0 || p.Height < 0 {
		return fmt.Errorf("preset %s: size cannot be negative", p.Name)
	}
	if _, err := geometry.ParseEdge(string(p.Edge)); err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return nil
}

// label returns the window label, defaulting to the preset name.
func (p Preset) label() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Name
}

// Builtins returns the presets shipped with labwin.
func Builtins() []Preset {
	return []Preset{
		{Name: "sample-intake", Label: "sample-intake", Title: "Sample Intake", Content: "payload-view", Width: 900, Height: 700},
		{Name: "chain-of-custody", Label: "chain-of-custody", Title: "Chain of Custody", Content: "payload-view", Width: 520, Edge: geometry.EdgeRight, Singleton: true},
		{Name: "instrument-calibration", Label: "calibration", Title: "Instrument Calibration", Content: "payload-view", Singleton: true},
		{Name: "vehicle-log", Label: "vehicle-log", Title: "Vehicle Log", Content: "payload-view", Width: 1000, Height: 720},
		{Name: "inspection-checklist", Label: "inspection", Title: "Inspection Checklist", Content: "payload-view", Width: 480, Edge: geometry.EdgeLeft},
		{Name: "nonconformance", Label: "nonconformance", Title: "Nonconformance Report", Content: "payload-view", Singleton: true, Maximized: true},
		{Name: "chat", Label: "chat", Title: "Chat", Content: "placeholder", Width: 420, Height: 640},
	}
}

// Merge returns base with every preset in overrides replacing the base preset
// of the same name, and new names appended in order.
func Merge(base, overrides []Preset) []Preset {
	out := slices.Clone(base)
	for _, o := range overrides {
		idx := slices.IndexFunc(out, func(p Preset) bool { return p.Name == o.Name })
		if idx >= 0 {
			out[idx] = o
			continue
		}
		out = append(out, o)
	}
	return out
}

// Registry resolves preset names.
type Registry struct {
	presets []Preset
	names   []string
	byName  map[string]int
}

// NewRegistry builds a registry, rejecting invalid or duplicate presets.
func NewRegistry(presets []Preset) (*Registry, error) {
	r := &Registry{
		presets: make([]Preset, 0, len(presets)),
		byName:  make(map[string]int, len(presets)),
	}
	for _, p := range presets {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		key := strings.ToLower(p.Name)
		if _, dup := r.byName[key]; dup {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}
		r.byName[key] = len(r.presets)
		r.presets = append(r.presets, p)
		r.names = append(r.names, p.Name)
	}
	return r, nil
}

// Presets returns every preset in registration order.
func (r *Registry) Presets() []Preset {
	return slices.Clone(r.presets)
}

// Resolve finds a preset by exact (case-insensitive) name, falling back to
// the single best fuzzy match.
func (r *Registry) Resolve(name string) (Preset, error) {
	if strings.TrimSpace(name) == "" {
		return Preset{}, fmt.Errorf("%w: empty name", ErrUnknownPreset)
	}
	if idx, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return r.presets[idx], nil
	}

	matches := fuzzy.Find(name, r.names)
	switch {
	case len(matches) == 0:
		return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	case len(matches) > 1 && matches[0].Score == matches[1].Score:
		return Preset{}, fmt.Errorf("%w: %s matches %s and %s",
			ErrAmbiguousPreset, name, matches[0].Str, matches[1].Str)
	default:
		return r.presets[matches[0].Index], nil
	}
}
