package display

import (
	"log/slog"
	"sync"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/labwin/internal/content"
	"github.com/jmylchreest/labwin/internal/window"
)

// Primitive builds GTK windows for the window manager. Construct may be
// called from any goroutine; GTK work is posted to the main loop.
type Primitive struct {
	app      *gtk.Application
	contents *Contents
	logger   *slog.Logger
}

// NewPrimitive creates a Primitive that attaches windows to app.
func NewPrimitive(app *gtk.Application, contents *Contents, logger *slog.Logger) *Primitive {
	if logger == nil {
		logger = slog.Default()
	}
	if contents == nil {
		contents = NewContents()
	}
	return &Primitive{
		app:      app,
		contents: contents,
		logger:   logger,
	}
}

// Construct implements window.Primitive. The created or error signal fires
// from the main loop once the window has been built.
func (p *Primitive) Construct(label string, opts window.Options) (window.Window, error) {
	factory, err := p.contents.Lookup(opts.Content)
	if err != nil {
		return nil, err
	}

	signals := window.NewSignals(label)
	w := &Window{
		label:   label,
		signals: signals,
		port:    content.NewPort(signals),
		logger:  p.logger.With("instance_label", label),
	}

	coreglib.IdleAdd(func() {
		if err := p.build(w, factory, opts); err != nil {
			signals.Fire(window.Event{Name: window.EventError, Err: err})
			return
		}
		signals.Fire(window.Event{Name: window.EventCreated})
	})
	return w, nil
}

// build runs on the main loop.
func (p *Primitive) build(w *Window, factory ContentFactory, opts window.Options) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return &DisplayError{Message: "construct " + w.label, Cause: ErrWindowClosed}
	}

	if gdk.DisplayGetDefault() == nil {
		return &DisplayError{Message: "construct " + w.label, Cause: ErrNoDisplay}
	}

	win := gtk.NewWindow()
	win.SetApplication(p.app)
	win.SetTitle(opts.Title)
	win.SetDefaultSize(opts.Width, opts.Height)
	win.SetResizable(opts.Resizable)
	win.AddCSSClass("labwin-window")

	if opts.Anchor != window.AnchorNone {
		p.anchor(win, w.label, opts.Anchor)
	} else if opts.Positioned {
		w.logger.Debug("ignoring window position, not supported by GTK4", "x", opts.X, "y", opts.Y)
	}

	win.SetChild(factory(w.port, opts))

	win.ConnectDestroy(func() {
		w.mu.Lock()
		w.closed = true
		w.win = nil
		w.mu.Unlock()

		w.logger.Debug("window destroyed")
		w.signals.Fire(window.Event{Name: window.EventDestroyed})
	})

	w.mu.Lock()
	w.win = win
	w.mu.Unlock()

	if opts.Maximized {
		win.Maximize()
	}
	win.Present()
	return nil
}

// anchor pins win to edge with layer-shell when the compositor supports it.
func (p *Primitive) anchor(win *gtk.Window, label string, edge window.Anchor) {
	if !layershell.IsSupported() {
		p.logger.Debug("layer-shell not supported, window not pinned", "instance_label", label, "anchor", edge)
		return
	}

	layershell.InitForWindow(win)
	layershell.SetLayer(win, layershell.LayerShellLayerTop)
	layershell.SetKeyboardMode(win, layershell.LayerShellKeyboardModeOnDemand)
	layershell.SetNamespace(win, "labwin-"+label)

	for _, e := range layerEdges(edge) {
		layershell.SetAnchor(win, e, true)
	}
}

// layerEdges returns the layer-shell edges a window pinned to edge is
// anchored to: the edge itself plus the two perpendicular ones, so the
// window spans the monitor along that edge.
func layerEdges(edge window.Anchor) []layershell.LayerShellEdge {
	switch edge {
	case window.AnchorLeft:
		return []layershell.LayerShellEdge{layershell.LayerShellEdgeLeft, layershell.LayerShellEdgeTop, layershell.LayerShellEdgeBottom}
	case window.AnchorRight:
		return []layershell.LayerShellEdge{layershell.LayerShellEdgeRight, layershell.LayerShellEdgeTop, layershell.LayerShellEdgeBottom}
	case window.AnchorTop:
		return []layershell.LayerShellEdge{layershell.LayerShellEdgeTop, layershell.LayerShellEdgeLeft, layershell.LayerShellEdgeRight}
	case window.AnchorBottom:
		return []layershell.LayerShellEdge{layershell.LayerShellEdgeBottom, layershell.LayerShellEdgeLeft, layershell.LayerShellEdgeRight}
	}
	return nil
}

// Window is a GTK window owned by a Primitive.
type Window struct {
	label   string
	signals *window.Signals
	port    *content.Port
	logger  *slog.Logger

	mu     sync.Mutex
	win    *gtk.Window
	closed bool
}

// Label implements window.Window.
func (w *Window) Label() string {
	return w.label
}

// onMain runs fn with the GTK window on the main loop.
func (w *Window) onMain(fn func(win *gtk.Window)) error {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return ErrWindowClosed
	}

	coreglib.IdleAdd(func() {
		w.mu.Lock()
		win := w.win
		w.mu.Unlock()
		if win != nil {
			fn(win)
		}
	})
	return nil
}

// Focus implements window.Window.
func (w *Window) Focus() error {
	return w.onMain(func(win *gtk.Window) {
		win.Present()
	})
}

// Close implements window.Window. A window that never finished building is
// marked destroyed directly.
func (w *Window) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	built := w.win != nil
	if !built {
		w.closed = true
	}
	w.mu.Unlock()

	if !built {
		w.signals.Fire(window.Event{Name: window.EventDestroyed})
		return nil
	}
	return w.onMain(func(win *gtk.Window) {
		win.Close()
	})
}

// Emit implements window.Window by handing the event to the content port.
func (w *Window) Emit(event string, payload any) error {
	return w.onMain(func(*gtk.Window) {
		if err := w.port.Deliver(event, payload); err != nil {
			w.logger.Warn("content did not accept event", "event", event, "error", err)
		}
	})
}

// Once implements window.Window.
func (w *Window) Once(event string, fn window.Listener) func() {
	return w.signals.Once(event, fn)
}

