package window

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignals_OnceFiresOnce(t *testing.T) {
	s := NewSignals("form-1")

	calls := 0
	s.Once(EventPayload, func(ev Event) {
		calls++
		assert.Equal(t, "form-1", ev.Label)
		assert.Equal(t, "data", ev.Payload)
	})

	s.Fire(Event{Name: EventPayload, Payload: "data"})
	s.Fire(Event{Name: EventPayload, Payload: "data"})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Pending(EventPayload))
}

func TestSignals_Unsubscribe(t *testing.T) {
	s := NewSignals("form")

	called := false
	off := s.Once(EventContentReady, func(Event) { called = true })
	require.Equal(t, 1, s.Pending(EventContentReady))

	off()
	assert.Equal(t, 0, s.Pending(EventContentReady))

	s.Fire(Event{Name: EventContentReady})
	assert.False(t, called)

	// Unsubscribing twice is harmless.
	off()
}

func TestSignals_LatchedEventReplaysToLateListener(t *testing.T) {
	s := NewSignals("form")
	boom := errors.New("boom")
	s.Fire(Event{Name: EventError, Err: boom})

	var got Event
	off := s.Once(EventError, func(ev Event) { got = ev })
	off()

	assert.ErrorIs(t, got.Err, boom)
	assert.True(t, s.Fired(EventError))
}

func TestSignals_LatchKeepsFirstEvent(t *testing.T) {
	s := NewSignals("form")
	s.Fire(Event{Name: EventContentReady, Payload: 1})
	s.Fire(Event{Name: EventContentReady, Payload: 2})

	var got Event
	s.Once(EventContentReady, func(ev Event) { got = ev })
	assert.Equal(t, 1, got.Payload)
}

func TestSignals_PayloadIsNotLatched(t *testing.T) {
	s := NewSignals("form")
	s.Fire(Event{Name: EventPayload, Payload: "early"})

	called := false
	s.Once(EventPayload, func(Event) { called = true })

	assert.False(t, called)
	assert.False(t, s.Fired(EventPayload))
	assert.Equal(t, 1, s.Pending(EventPayload))
}

func TestSignals_ListenerMayResubscribe(t *testing.T) {
	s := NewSignals("form")

	count := 0
	var listen func(Event)
	listen = func(Event) {
		count++
		if count < 3 {
			s.Once(EventPayload, listen)
		}
	}
	s.Once(EventPayload, listen)

	for range 5 {
		s.Fire(Event{Name: EventPayload})
	}
	assert.Equal(t, 3, count)
}
