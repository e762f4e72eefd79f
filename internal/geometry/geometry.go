// Package geometry queries the connected displays and computes edge-pinned
// window placements. Queries are best effort: callers always get a usable
// rectangle back, falling back to a constant when no backend answers.
package geometry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoMonitors is returned by a backend that answered with an empty list.
var ErrNoMonitors = errors.New("no monitors found")

// Rect is a screen rectangle in logical pixels.
type Rect struct {
	X      int `toml:"x" json:"x"`
	Y      int `toml:"y" json:"y"`
	Width  int `toml:"width" json:"width"`
	Height int `toml:"height" json:"height"`
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Monitor is a connected display.
type Monitor struct {
	Name    string
	Rect    Rect
	Focused bool
}

// Querier lists the connected monitors.
type Querier interface {
	Monitors(ctx context.Context) ([]Monitor, error)
}

// QuerierFunc adapts a function to Querier.
type QuerierFunc func(ctx context.Context) ([]Monitor, error)

// Monitors implements Querier.
func (f QuerierFunc) Monitors(ctx context.Context) ([]Monitor, error) {
	return f(ctx)
}

// Chain asks each backend in turn and returns the first non-empty answer.
type Chain []Querier

// Monitors implements Querier.
func (c Chain) Monitors(ctx context.Context) ([]Monitor, error) {
	if len(c) == 0 {
		return nil, ErrNoMonitors
	}

	var errs []error
	for _, q := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		monitors, err := q.Monitors(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(monitors) == 0 {
			errs = append(errs, ErrNoMonitors)
			continue
		}
		return monitors, nil
	}
	return nil, errors.Join(errs...)
}

// Focused returns the focused monitor, or the first one when none reports focus.
func Focused(monitors []Monitor) (Monitor, bool) {
	if len(monitors) == 0 {
		return Monitor{}, false
	}
	for _, m := range monitors {
		if m.Focused {
			return m, true
		}
	}
	return monitors[0], true
}

// Edge is the screen edge a window is pinned to.
type Edge string

// Supported edges.
const (
	EdgeNone   Edge = ""
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
)

// ParseEdge parses an edge name. The empty string is EdgeNone.
func ParseEdge(s string) (Edge, error) {
	switch e := Edge(strings.ToLower(strings.TrimSpace(s))); e {
	case EdgeNone, EdgeLeft, EdgeRight, EdgeTop, EdgeBottom:
		return e, nil
	default:
		return EdgeNone, fmt.Errorf("invalid edge %q (valid: left, right, top, bottom)", s)
	}
}

// Size is the requested extent of a pinned window. Width applies to left and
// right edges, Height to top and bottom; the other dimension spans the monitor.
type Size struct {
	Width  int
	Height int
}

// Place pins a window of the given size to edge within area.
func Place(area Rect, edge Edge, size Size) Rect {
	width := clamp(size.Width, area.Width)
	height := clamp(size.Height, area.Height)

	switch edge {
	case EdgeLeft:
		return Rect{X: area.X, Y: area.Y, Width: width, Height: area.Height}
	case EdgeRight:
		return Rect{X: area.X + area.Width - width, Y: area.Y, Width: width, Height: area.Height}
	case EdgeTop:
		return Rect{X: area.X, Y: area.Y, Width: area.Width, Height: height}
	case EdgeBottom:
		return Rect{X: area.X, Y: area.Y + area.Height - height, Width: area.Width, Height: height}
	default:
		return Rect{
			X:      area.X + (area.Width-width)/2,
			Y:      area.Y + (area.Height-height)/2,
			Width:  width,
			Height: height,
		}
	}
}

func clamp(v, limit int) int {
	if v <= 0 || v > limit {
		return limit
	}
	return v
}

// Pin computes the placement of a window pinned to edge on the focused
// monitor. A failed or empty query never errors: fallback is returned and the
// failure logged.
func Pin(ctx context.Context, q Querier, edge Edge, size Size, fallback Rect, logger *slog.Logger) Rect {
	if logger == nil {
		logger = slog.Default()
	}
	if q == nil {
		return fallback
	}

	monitors, err := q.Monitors(ctx)
	if err != nil {
		logger.Warn("geometry query failed, using fallback", "edge", edge, "error", err)
		return fallback
	}

	mon, ok := Focused(monitors)
	if !ok || mon.Rect.Empty() {
		logger.Warn("geometry query returned no usable monitor, using fallback", "edge", edge)
		return fallback
	}

	placed := Place(mon.Rect, edge, size)
	logger.Debug("pinned window geometry",
		"monitor", mon.Name,
		"edge", edge,
		"x", placed.X,
		"y", placed.Y,
		"width", placed.Width,
		"height", placed.Height,
	)
	return placed
}

// Backend names understood by Build.
const (
	BackendSway = "sway"
	BackendX11  = "x11"
)

// Build assembles a Chain from backend names in order. Names that are not
// built in, such as a toolkit-provided querier, are looked up in extra.
func Build(names []string, extra map[string]Querier) (Chain, error) {
	chain := make(Chain, 0, len(names))
	for _, name := range names {
		switch name = strings.ToLower(strings.TrimSpace(name)); name {
		case BackendSway:
			chain = append(chain, SwayQuerier{})
		case BackendX11:
			chain = append(chain, X11Querier{})
		default:
			q, ok := extra[name]
			if !ok || q == nil {
				return nil, fmt.Errorf("unknown geometry backend %q", name)
			}
			chain = append(chain, q)
		}
	}
	return chain, nil
}
