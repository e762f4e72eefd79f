package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jmylchreest/labwin/internal/geometry"
	"github.com/jmylchreest/labwin/internal/window"
)

// Default size of an edge-pinned window when the display cannot be queried.
const (
	DefaultFallbackWidth  = 480
	DefaultFallbackHeight = 900
)

// Opener opens windows. *window.Manager satisfies it.
type Opener interface {
	Open(ctx context.Context, cfg window.Config) (*window.Handle, error)
}

// Launcher opens windows from presets.
type Launcher struct {
	opener  Opener
	querier geometry.Querier
	logger  *slog.Logger

	mu       sync.RWMutex
	presets  *Registry
	fallback geometry.Size
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithQuerier sets the display query used for edge-pinned presets.
func WithQuerier(q geometry.Querier) Option {
	return func(l *Launcher) {
		l.querier = q
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithFallback sets the size used when the display query fails.
func WithFallback(size geometry.Size) Option {
	return func(l *Launcher) {
		l.setFallback(size)
	}
}

// New creates a Launcher over presets.
func New(opener Opener, presets *Registry, opts ...Option) *Launcher {
	l := &Launcher{
		opener:   opener,
		logger:   slog.Default(),
		presets:  presets,
		fallback: geometry.Size{Width: DefaultFallbackWidth, Height: DefaultFallbackHeight},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetPresets swaps the preset registry, for configuration reloads.
func (l *Launcher) SetPresets(presets *Registry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.presets = presets
}

// SetFallback changes the size used when the display query fails.
func (l *Launcher) SetFallback(size geometry.Size) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.setFallback(size)
}

func (l *Launcher) setFallback(size geometry.Size) {
	if size.Width > 0 {
		l.fallback.Width = size.Width
	}
	if size.Height > 0 {
		l.fallback.Height = size.Height
	}
}

// Presets returns the registered presets.
func (l *Launcher) Presets() []Preset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.presets == nil {
		return nil
	}
	return l.presets.Presets()
}

// Resolve finds a preset by name.
func (l *Launcher) Resolve(name string) (Preset, error) {
	l.mu.RLock()
	presets := l.presets
	l.mu.RUnlock()

	if presets == nil {
		return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return presets.Resolve(name)
}

// Launch opens the window described by the named preset, handing it payload.
func (l *Launcher) Launch(ctx context.Context, name string, payload any) (*window.Handle, error) {
	preset, err := l.Resolve(name)
	if err != nil {
		return nil, err
	}

	cfg := l.Config(ctx, preset, payload)
	l.logger.Debug("launching preset", "preset", preset.Name, "label", cfg.Label)

	h, err := l.opener.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("launch %s: %w", preset.Name, err)
	}
	return h, nil
}

// Config binds a preset and payload into a window configuration. Edge-pinned
// presets query the display; a failed query falls back to a constant placement.
func (l *Launcher) Config(ctx context.Context, p Preset, payload any) window.Config {
	cfg := window.Config{
		Label:     p.label(),
		Title:     p.Title,
		Content:   p.Content,
		Payload:   payload,
		Singleton: p.Singleton,
		Geometry: window.Geometry{
			Width:     p.Width,
			Height:    p.Height,
			Maximized: p.Maximized,
		},
	}
	if p.Edge == geometry.EdgeNone {
		return cfg
	}

	l.mu.RLock()
	fb := l.fallback
	l.mu.RUnlock()

	fallback := geometry.Rect{Width: fb.Width, Height: fb.Height}
	if p.Width > 0 {
		fallback.Width = p.Width
	}
	if p.Height > 0 {
		fallback.Height = p.Height
	}

	placed := geometry.Pin(ctx, l.querier, p.Edge, geometry.Size{Width: p.Width, Height: p.Height}, fallback, l.logger)

	cfg.Geometry.Width = placed.Width
	cfg.Geometry.Height = placed.Height
	cfg.Geometry.Position = &window.Point{X: placed.X, Y: placed.Y}
	cfg.Geometry.Anchor = window.Anchor(p.Edge)
	return cfg
}
