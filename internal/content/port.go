// Package content is the side of a window that runs inside it: the Port
// through which window content reports readiness and receives its payload,
// and the rendering used by the built-in contents.
package content

import (
	"errors"
	"sync"

	"github.com/jmylchreest/labwin/internal/window"
)

// Built-in content references.
const (
	PayloadView = "payload-view"
	Placeholder = "placeholder"
)

// ErrNoHandler is returned by Deliver for an event nobody listens to.
var ErrNoHandler = errors.New("no handler for event")

// Port connects window content to its window. Content subscribes with
// OnPayload, then calls Ready.
type Port struct {
	signals *window.Signals

	mu       sync.Mutex
	handlers map[string]func(any)
}

// NewPort creates a port that fires content-ready on signals.
func NewPort(signals *window.Signals) *Port {
	return &Port{
		signals:  signals,
		handlers: make(map[string]func(any)),
	}
}

// OnPayload registers fn to receive the window payload.
func (p *Port) OnPayload(fn func(payload any)) {
	p.On(window.EventPayload, fn)
}

// On registers fn for event, replacing any earlier handler.
func (p *Port) On(event string, fn func(payload any)) {
	p.mu.Lock()
	p.handlers[event] = fn
	p.mu.Unlock()
}

// Ready reports that the content is listening. Firing it twice is harmless.
func (p *Port) Ready() {
	p.signals.Fire(window.Event{Name: window.EventContentReady})
}

// Deliver hands payload to the handler for event.
func (p *Port) Deliver(event string, payload any) error {
	p.mu.Lock()
	fn, ok := p.handlers[event]
	p.mu.Unlock()

	if !ok {
		return ErrNoHandler
	}
	fn(payload)
	return nil
}
