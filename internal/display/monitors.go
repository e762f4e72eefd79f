package display

import (
	"context"
	"log/slog"
	"unsafe"

	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/labwin/internal/geometry"
)

// MonitorQuerier lists monitors from GDK. It implements geometry.Querier.
// GDK does not report the focused monitor, so none is marked focused.
type MonitorQuerier struct {
	logger *slog.Logger
}

// NewMonitorQuerier creates a MonitorQuerier.
func NewMonitorQuerier(logger *slog.Logger) *MonitorQuerier {
	if logger == nil {
		logger = slog.Default()
	}
	return &MonitorQuerier{logger: logger}
}

type monitorResult struct {
	monitors []geometry.Monitor
	err      error
}

// Monitors implements geometry.Querier. The query runs on the GTK main loop.
func (q *MonitorQuerier) Monitors(ctx context.Context) ([]geometry.Monitor, error) {
	result := make(chan monitorResult, 1)
	coreglib.IdleAdd(func() {
		monitors, err := listMonitors()
		result <- monitorResult{monitors: monitors, err: err}
	})

	select {
	case r := <-result:
		if r.err == nil {
			q.logger.Debug("queried GDK monitors", "count", len(r.monitors))
		}
		return r.monitors, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// listMonitors runs on the main loop.
func listMonitors() ([]geometry.Monitor, error) {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil, ErrNoDisplay
	}

	list := display.Monitors()
	if list == nil || list.NItems() == 0 {
		return nil, geometry.ErrNoMonitors
	}

	monitors := make([]geometry.Monitor, 0, list.NItems())
	for i := range list.NItems() {
		m := wrapMonitor(list.Item(i))
		if m == nil {
			continue
		}
		rect := m.Geometry()
		monitors = append(monitors, geometry.Monitor{
			Name: m.Connector(),
			Rect: geometry.Rect{
				X:      rect.X(),
				Y:      rect.Y(),
				Width:  rect.Width(),
				Height: rect.Height(),
			},
		})
	}
	if len(monitors) == 0 {
		return nil, geometry.ErrNoMonitors
	}
	return monitors, nil
}

// wrapMonitor wraps a coreglib.Object as a gdk.Monitor.
// gotk4 doesn't export its own wrapMonitor.
func wrapMonitor(obj *coreglib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	// gdk.Monitor embeds a *coreglib.Object and nothing else.
	type monitor struct {
		_ [0]func()
		*coreglib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
