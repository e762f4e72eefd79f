package window

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// HandshakeState is the payload delivery state of a window.
type HandshakeState int32

// Handshake states. Delivered and Abandoned are terminal.
const (
	HandshakeNone HandshakeState = iota
	HandshakeCreated
	HandshakeAwaitingReady
	HandshakeDelivered
	HandshakeAbandoned
)

// String returns a human-readable state name.
func (s HandshakeState) String() string {
	switch s {
	case HandshakeNone:
		return "none"
	case HandshakeCreated:
		return "created"
	case HandshakeAwaitingReady:
		return "awaiting-ready"
	case HandshakeDelivered:
		return "delivered"
	case HandshakeAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// handshake holds a payload back until the window content fires
// EventContentReady, then emits it exactly once.
type handshake struct {
	handle   *Handle
	payload  any
	logger   *slog.Logger
	observer Observer

	state atomic.Int32

	mu          sync.Mutex
	unsubscribe func()
}

func newHandshake(h *Handle, payload any, logger *slog.Logger, observer Observer) *handshake {
	hs := &handshake{
		handle:   h,
		payload:  payload,
		logger:   logger,
		observer: observer,
	}
	hs.state.Store(int32(HandshakeCreated))
	return hs
}

// State returns the current state.
func (hs *handshake) State() HandshakeState {
	return HandshakeState(hs.state.Load())
}

// start subscribes to the ready signal. It does nothing if the window was
// destroyed before the handshake got going.
func (hs *handshake) start() {
	if !hs.state.CompareAndSwap(int32(HandshakeCreated), int32(HandshakeAwaitingReady)) {
		return
	}

	off := hs.handle.window.Once(EventContentReady, hs.ready)

	hs.mu.Lock()
	hs.unsubscribe = off
	hs.mu.Unlock()

	// abandon may have run between the swap and storing off.
	if hs.State() == HandshakeAbandoned {
		hs.release()
	}
}

func (hs *handshake) ready(Event) {
	if !hs.state.CompareAndSwap(int32(HandshakeAwaitingReady), int32(HandshakeDelivered)) {
		return
	}
	hs.release()

	if err := hs.handle.window.Emit(EventPayload, hs.payload); err != nil {
		hs.logger.Warn("failed to deliver window payload",
			"instance_label", hs.handle.InstanceLabel,
			"error", err,
		)
		return
	}

	hs.logger.Debug("delivered window payload", "instance_label", hs.handle.InstanceLabel)
	hs.observer.PayloadDelivered(hs.handle)
}

// abandon cancels a pending delivery. The window is gone, so there is no
// one to report a failure to.
func (hs *handshake) abandon() {
	for {
		current := hs.state.Load()
		if current != int32(HandshakeCreated) && current != int32(HandshakeAwaitingReady) {
			return
		}
		if hs.state.CompareAndSwap(current, int32(HandshakeAbandoned)) {
			break
		}
	}
	hs.release()

	hs.logger.Debug("abandoned window payload, window destroyed before ready",
		"instance_label", hs.handle.InstanceLabel,
	)
	hs.observer.PayloadAbandoned(hs.handle)
}

func (hs *handshake) release() {
	hs.mu.Lock()
	off := hs.unsubscribe
	hs.unsubscribe = nil
	hs.mu.Unlock()

	if off != nil {
		off()
	}
}
