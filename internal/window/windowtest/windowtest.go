// Package windowtest provides a scriptable window.Primitive for tests.
package windowtest

import (
	"errors"
	"sync"

	"github.com/jmylchreest/labwin/internal/window"
)

// ErrClosed is returned by Emit on a closed window.
var ErrClosed = errors.New("window closed")

// Mode selects how the fake answers Construct.
type Mode int

const (
	// AutoCreate fires created shortly after Construct returns.
	AutoCreate Mode = iota
	// FailCreate fires error shortly after Construct returns.
	FailCreate
	// RejectConstruct makes Construct itself return an error.
	RejectConstruct
	// NeverRespond fires nothing.
	NeverRespond
)

// Primitive is a fake window.Primitive.
type Primitive struct {
	mu         sync.Mutex
	mode       Mode
	err        error
	constructs int
	windows    []*Window
}

// NewPrimitive returns a fake that creates windows successfully.
func NewPrimitive() *Primitive {
	return &Primitive{mode: AutoCreate, err: errors.New("construction refused")}
}

// SetMode changes how subsequent Construct calls behave.
func (p *Primitive) SetMode(mode Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
}

// SetError sets the error reported by FailCreate and RejectConstruct.
func (p *Primitive) SetError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Construct implements window.Primitive.
func (p *Primitive) Construct(label string, opts window.Options) (window.Window, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.constructs++
	if p.mode == RejectConstruct {
		return nil, p.err
	}

	w := &Window{
		label:   label,
		opts:    opts,
		signals: window.NewSignals(label),
	}
	p.windows = append(p.windows, w)

	switch p.mode {
	case AutoCreate:
		go w.signals.Fire(window.Event{Name: window.EventCreated})
	case FailCreate:
		err := p.err
		go w.signals.Fire(window.Event{Name: window.EventError, Err: err})
	}
	return w, nil
}

// Constructs returns how many times Construct was called.
func (p *Primitive) Constructs() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.constructs
}

// Windows returns every window constructed so far.
func (p *Primitive) Windows() []*Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Window, len(p.windows))
	copy(out, p.windows)
	return out
}

// Window returns the most recent window constructed under label.
func (p *Primitive) Window(label string) *Window {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.windows) - 1; i >= 0; i-- {
		if p.windows[i].label == label {
			return p.windows[i]
		}
	}
	return nil
}

// Window is a fake window.Window.
type Window struct {
	label   string
	opts    window.Options
	signals *window.Signals

	mu      sync.Mutex
	focused int
	closed  bool
	emitted []window.Event
}

// Label implements window.Window.
func (w *Window) Label() string {
	return w.label
}

// Options returns the options the window was constructed with.
func (w *Window) Options() window.Options {
	return w.opts
}

// Focus implements window.Window.
func (w *Window) Focus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.focused++
	return nil
}

// Close implements window.Window. The destroyed signal fires before Close returns.
func (w *Window) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.signals.Fire(window.Event{Name: window.EventDestroyed})
	return nil
}

// Emit implements window.Window by recording the event.
func (w *Window) Emit(event string, payload any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.emitted = append(w.emitted, window.Event{Name: event, Label: w.label, Payload: payload})
	return nil
}

// Once implements window.Window.
func (w *Window) Once(event string, fn window.Listener) func() {
	return w.signals.Once(event, fn)
}

// Create fires the created signal by hand, for NeverRespond windows.
func (w *Window) Create() {
	w.signals.Fire(window.Event{Name: window.EventCreated})
}

// SignalReady fires content-ready as the window content would.
func (w *Window) SignalReady() {
	w.signals.Fire(window.Event{Name: window.EventContentReady})
}

// Destroy closes the window as if the user did.
func (w *Window) Destroy() {
	_ = w.Close()
}

// Focused returns how many times Focus was called.
func (w *Window) Focused() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focused
}

// Closed reports whether the window was closed.
func (w *Window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Emitted returns the events sent to the window content.
func (w *Window) Emitted() []window.Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]window.Event, len(w.emitted))
	copy(out, w.emitted)
	return out
}

// Pending returns how many listeners wait on event.
func (w *Window) Pending(event string) int {
	return w.signals.Pending(event)
}
