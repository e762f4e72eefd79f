package window

import "sync"

// Event names exchanged between the manager, a window and its content.
const (
	// EventCreated is fired by the Primitive once the window exists.
	EventCreated = "created"
	// EventError is fired by the Primitive when construction failed.
	EventError = "error"
	// EventDestroyed is fired by the Primitive when the window is gone.
	EventDestroyed = "destroyed"
	// EventContentReady is fired by window content once it listens for data.
	EventContentReady = "content-ready"
	// EventPayload carries the initial payload from the manager to the content.
	EventPayload = "window-payload"
)

// LatchedEvents are remembered after they fire. A listener registered late
// for one of them is invoked immediately with the remembered event.
var LatchedEvents = []string{EventCreated, EventError, EventDestroyed, EventContentReady}

// Event is a signal fired by a window.
type Event struct {
	Name    string
	Label   string
	Payload any
	Err     error
}

// Listener receives a single event.
type Listener func(Event)

// Signals is a hub of one-shot subscriptions for a single window.
// Primitive implementations hold one per window and fire lifecycle events
// through it; the manager subscribes with Once.
type Signals struct {
	label string

	mu       sync.Mutex
	nextID   uint64
	subs     map[string]map[uint64]Listener
	latched  map[string]Event
	latching map[string]bool
}

// NewSignals creates a hub for the window with the given instance label.
func NewSignals(label string) *Signals {
	latching := make(map[string]bool, len(LatchedEvents))
	for _, name := range LatchedEvents {
		latching[name] = true
	}
	return &Signals{
		label:    label,
		subs:     make(map[string]map[uint64]Listener),
		latched:  make(map[string]Event),
		latching: latching,
	}
}

// Once registers fn for the next firing of name and returns a function that
// cancels the subscription. fn runs at most once. If name is latched and has
// already fired, fn runs before Once returns.
func (s *Signals) Once(name string, fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	if ev, ok := s.latched[name]; ok {
		s.mu.Unlock()
		fn(ev)
		return func() {}
	}

	id := s.nextID
	s.nextID++
	if s.subs[name] == nil {
		s.subs[name] = make(map[uint64]Listener)
	}
	s.subs[name][id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs[name], id)
		s.mu.Unlock()
	}
}

// Fire delivers ev to every pending listener for ev.Name and drops them.
// Listeners run on the calling goroutine, outside the hub's lock.
func (s *Signals) Fire(ev Event) {
	ev.Label = s.label

	s.mu.Lock()
	if s.latching[ev.Name] {
		if _, fired := s.latched[ev.Name]; !fired {
			s.latched[ev.Name] = ev
		}
	}
	subs := s.subs[ev.Name]
	delete(s.subs, ev.Name)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Fired reports whether a latched event has fired.
func (s *Signals) Fired(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.latched[name]
	return ok
}

// Pending returns the number of listeners waiting on name.
func (s *Signals) Pending(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[name])
}
