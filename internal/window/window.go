package window

import (
	"crypto/rand"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
)

// Default geometry applied when a Config leaves a dimension unset.
const (
	DefaultWidth  = 1200
	DefaultHeight = 800
)

// Primitive constructs native windows.
//
// Construct returns as soon as the window has been requested. The outcome
// follows asynchronously as an EventCreated or EventError signal on the
// returned Window. A non-nil error means construction was refused outright.
type Primitive interface {
	Construct(instanceLabel string, opts Options) (Window, error)
}

// Window is a native window created by a Primitive.
type Window interface {
	// Label returns the instance label the window was constructed with.
	Label() string
	// Focus raises the window.
	Focus() error
	// Close requests the window to close. EventDestroyed follows.
	Close() error
	// Emit sends an event to the window content.
	Emit(event string, payload any) error
	// Once subscribes fn to the next firing of event.
	Once(event string, fn Listener) (unsubscribe func())
}

// Anchor pins a window to a screen edge.
type Anchor string

// Supported anchors.
const (
	AnchorNone   Anchor = ""
	AnchorLeft   Anchor = "left"
	AnchorRight  Anchor = "right"
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
)

// Point is a screen position in pixels.
type Point struct {
	X int
	Y int
}

// Geometry holds the optional placement of a window.
type Geometry struct {
	Width     int    // 0 = DefaultWidth
	Height    int    // 0 = DefaultHeight
	Position  *Point // nil = let the window system place it
	Center    *bool  // nil = centered unless Position is set
	Resizable *bool  // nil = resizable
	Maximized bool
	Anchor    Anchor
}

// Config describes a window to open.
type Config struct {
	// Label is the logical identity of the window.
	Label string
	// Title and Content are passed to the Primitive untouched.
	Title   string
	Content string

	Geometry Geometry

	// Payload is delivered once the window content is ready. It is never inspected.
	Payload any

	// Singleton keeps at most one live window per Label. When false every
	// Open creates a new window labelled Label-N.
	Singleton bool
}

// Options is a Config with defaults resolved, as handed to the Primitive.
type Options struct {
	Title      string
	Content    string
	Width      int
	Height     int
	X          int
	Y          int
	Positioned bool
	Center     bool
	Resizable  bool
	Maximized  bool
	Anchor     Anchor
}

// Defaults are the fallback dimensions used when resolving Options.
type Defaults struct {
	Width  int
	Height int
}

func (d Defaults) normalized() Defaults {
	if d.Width <= 0 {
		d.Width = DefaultWidth
	}
	if d.Height <= 0 {
		d.Height = DefaultHeight
	}
	return d
}

// Resolve fills unset geometry from defaults.
func (c Config) Resolve(defaults Defaults) Options {
	defaults = defaults.normalized()
	g := c.Geometry

	opts := Options{
		Title:     c.Title,
		Content:   c.Content,
		Width:     g.Width,
		Height:    g.Height,
		Resizable: true,
		Maximized: g.Maximized,
		Anchor:    g.Anchor,
	}
	if opts.Width <= 0 {
		opts.Width = defaults.Width
	}
	if opts.Height <= 0 {
		opts.Height = defaults.Height
	}
	if g.Resizable != nil {
		opts.Resizable = *g.Resizable
	}
	if g.Position != nil {
		opts.X = g.Position.X
		opts.Y = g.Position.Y
		opts.Positioned = true
	}

	switch {
	case g.Center != nil:
		opts.Center = *g.Center
	default:
		opts.Center = !opts.Positioned
	}

	return opts
}

// Handle is a tracked window returned by Manager.Open.
type Handle struct {
	ID            string
	Label         string
	InstanceLabel string
	Singleton     bool
	OpenedAt      time.Time

	window    Window
	handshake *handshake
	destroyed atomic.Bool
}

func newHandle(cfg Config, instance string, w Window) *Handle {
	return &Handle{
		ID:            ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Label:         cfg.Label,
		InstanceLabel: instance,
		Singleton:     cfg.Singleton,
		OpenedAt:      time.Now(),
		window:        w,
	}
}

// Window returns the underlying native window.
func (h *Handle) Window() Window {
	return h.window
}

// Focus raises the window.
func (h *Handle) Focus() error {
	return h.window.Focus()
}

// Close requests the window to close.
func (h *Handle) Close() error {
	return h.window.Close()
}

// Emit sends an event to the window content.
func (h *Handle) Emit(event string, payload any) error {
	return h.window.Emit(event, payload)
}

// HandshakeState reports the payload delivery state.
// It is HandshakeNone when the window was opened without a payload.
func (h *Handle) HandshakeState() HandshakeState {
	if h.handshake == nil {
		return HandshakeNone
	}
	return h.handshake.State()
}

// Destroyed reports whether the window's destroy signal has been observed.
func (h *Handle) Destroyed() bool {
	return h.destroyed.Load()
}
