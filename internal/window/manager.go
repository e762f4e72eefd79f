package window

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultCreationTimeout bounds how long Open waits for a created or error signal.
const DefaultCreationTimeout = 10 * time.Second

// Manager creates, deduplicates, tracks and destroys windows.
type Manager struct {
	primitive Primitive
	logger    *slog.Logger
	observer  Observer

	timeout atomic.Int64 // time.Duration
	flights singleflight.Group

	mu       sync.Mutex
	reg      *registry
	defaults Defaults
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver adds lifecycle observers.
func WithObserver(observers ...Observer) Option {
	return func(m *Manager) {
		if len(observers) == 0 {
			return
		}
		all := Observers{}
		if existing, ok := m.observer.(Observers); ok {
			all = append(all, existing...)
		}
		m.observer = append(all, observers...)
	}
}

// WithCreationTimeout overrides DefaultCreationTimeout.
func WithCreationTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.timeout.Store(int64(d))
		}
	}
}

// WithDefaults overrides the default window size.
func WithDefaults(d Defaults) Option {
	return func(m *Manager) {
		m.defaults = d.normalized()
	}
}

// NewManager creates a Manager that builds windows with p.
func NewManager(p Primitive, opts ...Option) *Manager {
	m := &Manager{
		primitive: p,
		logger:    slog.Default(),
		observer:  Observers{},
		defaults:  Defaults{}.normalized(),
		reg:       newRegistry(),
	}
	m.timeout.Store(int64(DefaultCreationTimeout))

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreationTimeout returns the current construction deadline.
func (m *Manager) CreationTimeout() time.Duration {
	return time.Duration(m.timeout.Load())
}

// SetCreationTimeout changes the construction deadline for future opens.
func (m *Manager) SetCreationTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	m.timeout.Store(int64(d))
}

// Defaults returns the size applied to windows that leave it unset.
func (m *Manager) Defaults() Defaults {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaults
}

// SetDefaults changes the size applied to future windows that leave it unset.
func (m *Manager) SetDefaults(d Defaults) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaults = d.normalized()
}

type flightResult struct {
	handle      *Handle
	constructed bool
}

// Open opens the window described by cfg.
//
// Singleton windows that are already open are focused and handed cfg.Payload
// directly; no new window is built. Otherwise a window is constructed and Open
// waits for it to report created, failed, or the creation timeout. A payload
// is delivered after Open returns, once the window content reports ready.
//
// Concurrent opens of one singleton label share a single construction. It
// runs detached from any one caller's ctx and is bounded by the creation
// timeout; each caller stops waiting when its own ctx is done.
func (m *Manager) Open(ctx context.Context, cfg Config) (*Handle, error) {
	if cfg.Label == "" {
		return nil, ErrEmptyLabel
	}

	if !cfg.Singleton {
		m.mu.Lock()
		instance := m.reg.nextInstance(cfg.Label)
		m.mu.Unlock()

		return m.construct(ctx, cfg, instance)
	}

	if h, ok := m.singleton(cfg.Label); ok {
		return m.reuse(h, cfg), nil
	}

	// ran is only set when this caller's function led the flight.
	var ran bool
	flight := m.flights.DoChan(cfg.Label, func() (any, error) {
		ran = true
		if h, ok := m.singleton(cfg.Label); ok {
			return flightResult{handle: h}, nil
		}
		h, err := m.construct(context.WithoutCancel(ctx), cfg, cfg.Label)
		if err != nil {
			return nil, err
		}
		return flightResult{handle: h, constructed: true}, nil
	})

	var res singleflight.Result
	select {
	case res = <-flight:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}

	fr := res.Val.(flightResult)
	if !ran || !fr.constructed {
		// Another caller built it; behave as if it was already open.
		return m.reuse(fr.handle, cfg), nil
	}
	return fr.handle, nil
}

func (m *Manager) singleton(label string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.singleton(label)
}

// reuse focuses an open window and hands it the payload without a
// handshake; an open window is assumed ready.
func (m *Manager) reuse(h *Handle, cfg Config) *Handle {
	if err := h.window.Focus(); err != nil {
		m.logger.Warn("failed to focus window", "instance_label", h.InstanceLabel, "error", err)
	}
	if cfg.Payload != nil {
		if err := h.window.Emit(EventPayload, cfg.Payload); err != nil {
			m.logger.Warn("failed to deliver window payload", "instance_label", h.InstanceLabel, "error", err)
		}
	}

	m.logger.Debug("focused existing window", "label", cfg.Label)
	return h
}

// construct builds a new window under instance and starts tracking it.
func (m *Manager) construct(ctx context.Context, cfg Config, instance string) (*Handle, error) {
	opts := cfg.Resolve(m.Defaults())
	started := time.Now()

	w, err := m.primitive.Construct(instance, opts)
	if err != nil {
		return nil, m.failed(instance, &CreationError{Label: instance, Cause: err})
	}

	if err := m.awaitCreated(ctx, w); err != nil {
		m.discard(w)
		return nil, m.failed(instance, err)
	}

	h := newHandle(cfg, instance, w)
	if cfg.Payload != nil {
		h.handshake = newHandshake(h, cfg.Payload, m.logger, m.observer)
	}

	m.mu.Lock()
	m.reg.insert(h)
	m.mu.Unlock()

	took := time.Since(started)
	m.observer.WindowOpened(h, took)

	w.Once(EventDestroyed, func(Event) {
		m.destroyed(h)
	})

	if h.handshake != nil {
		h.handshake.start()
	}

	m.logger.Debug("opened window",
		"label", cfg.Label,
		"instance_label", instance,
		"singleton", cfg.Singleton,
		"payload", cfg.Payload != nil,
		"took", took,
	)
	return h, nil
}

// awaitCreated races the created signal, the error signal, the creation
// timeout and ctx. The losing subscriptions are cancelled.
func (m *Manager) awaitCreated(ctx context.Context, w Window) error {
	label := w.Label()
	outcome := make(chan error, 2)

	offCreated := w.Once(EventCreated, func(Event) {
		outcome <- nil
	})
	defer offCreated()

	offFailed := w.Once(EventError, func(ev Event) {
		cause := ev.Err
		if cause == nil {
			cause = ErrCreationFailed
		}
		outcome <- &CreationError{Label: label, Cause: cause}
	})
	defer offFailed()

	timeout := m.CreationTimeout()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-outcome:
		return err
	case <-timer.C:
		return &CreationError{Label: label, Cause: fmt.Errorf("%w after %s", ErrCreationTimeout, timeout)}
	case <-ctx.Done():
		return &CreationError{Label: label, Cause: ctx.Err()}
	}
}

// discard closes a window that lost the creation race.
func (m *Manager) discard(w Window) {
	if err := w.Close(); err != nil {
		m.logger.Debug("failed to close abandoned window", "instance_label", w.Label(), "error", err)
	}
}

func (m *Manager) failed(instance string, err error) error {
	m.logger.Warn("window creation failed", "instance_label", instance, "error", err)
	m.observer.CreationFailed(instance, err)
	return err
}

// destroyed is the lifecycle observer for h.
func (m *Manager) destroyed(h *Handle) {
	if !h.destroyed.CompareAndSwap(false, true) {
		return
	}

	m.mu.Lock()
	removed := m.reg.remove(h)
	m.mu.Unlock()

	if h.handshake != nil {
		h.handshake.abandon()
	}

	m.logger.Debug("window destroyed",
		"instance_label", h.InstanceLabel,
		"pruned", removed,
	)
	m.observer.WindowClosed(h)
}

// Close requests the window tracked under label to close. label may be a
// singleton label or a full instance label. The registry entry is dropped
// when the window reports destroyed.
func (m *Manager) Close(label string) error {
	m.mu.Lock()
	h, ok := m.reg.lookup(label)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotOpen, label)
	}
	if err := h.window.Close(); err != nil {
		return fmt.Errorf("close window %s: %w", h.InstanceLabel, err)
	}
	return nil
}

// IsOpen reports whether label is tracked.
func (m *Manager) IsOpen(label string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.reg.lookup(label)
	return ok
}

// GetWindow returns the handle tracked under label.
func (m *Manager) GetWindow(label string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.lookup(label)
}

// List returns every tracked window, oldest first.
func (m *Manager) List() []*Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.handles()
}

// Counter returns the last instance number handed out for a multi-instance label.
func (m *Manager) Counter(base string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.counter(base)
}

// Empty reports whether nothing is tracked and no counters are held.
func (m *Manager) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.empty()
}

// CloseAll requests every tracked window to close, waits for the requests,
// then clears the registry and all instance counters.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	handles := m.reg.handles()
	m.mu.Unlock()

	errs := make([]error, len(handles))
	var g errgroup.Group
	for i, h := range handles {
		g.Go(func() error {
			if err := h.window.Close(); err != nil {
				errs[i] = fmt.Errorf("close window %s: %w", h.InstanceLabel, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	m.mu.Lock()
	m.reg.reset()
	m.mu.Unlock()

	m.logger.Debug("closed all windows", "count", len(handles))
	return errors.Join(errs...)
}
