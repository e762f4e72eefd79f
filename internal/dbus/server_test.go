package dbus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/labwin/internal/launcher"
	"github.com/jmylchreest/labwin/internal/window"
	"github.com/jmylchreest/labwin/internal/window/windowtest"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestServer(t *testing.T) (*Server, *window.Manager, *windowtest.Primitive) {
	t.Helper()
	p := windowtest.NewPrimitive()
	m := window.NewManager(p, window.WithLogger(testLogger))
	return NewServer(m, testLogger), m, p
}

func TestServer_Open(t *testing.T) {
	s, m, p := newTestServer(t)

	instance, derr := s.Open("chat", "Chat", "", true, "")
	require.Nil(t, derr)
	assert.Equal(t, "chat-1", instance)

	instance, derr = s.Open("settings", "Settings", "", false, `{"tab":"units"}`)
	require.Nil(t, derr)
	assert.Equal(t, "settings", instance)
	assert.True(t, m.IsOpen("settings"))

	w := p.Window("settings")
	require.NotNil(t, w)
	assert.Equal(t, "Settings", w.Options().Title)

	h, ok := m.GetWindow("settings")
	require.True(t, ok)
	assert.True(t, h.Singleton)
	assert.Equal(t, window.HandshakeAwaitingReady, h.HandshakeState())
}

func TestServer_OpenErrors(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		payload  string
		mode     windowtest.Mode
		wantName string
	}{
		{name: "invalid payload", label: "chat", payload: "{", mode: windowtest.AutoCreate, wantName: ErrorInvalidPayload},
		{name: "empty label", label: "", mode: windowtest.AutoCreate, wantName: ErrorInvalidArgs},
		{name: "creation failed", label: "chat", mode: windowtest.FailCreate, wantName: ErrorCreationFailed},
		{name: "construct rejected", label: "chat", mode: windowtest.RejectConstruct, wantName: ErrorCreationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, p := newTestServer(t)
			p.SetMode(tt.mode)

			_, derr := s.Open(tt.label, "", "", true, tt.payload)
			require.NotNil(t, derr)
			assert.Equal(t, tt.wantName, derr.Name)
		})
	}
}

func TestServer_CloseAndIsOpen(t *testing.T) {
	s, _, _ := newTestServer(t)

	_, derr := s.Open("chat", "", "", true, "")
	require.Nil(t, derr)

	open, derr := s.IsOpen("chat-1")
	require.Nil(t, derr)
	assert.True(t, open)

	require.Nil(t, s.Close("chat-1"))

	open, derr = s.IsOpen("chat-1")
	require.Nil(t, derr)
	assert.False(t, open)

	derr = s.Close("chat-1")
	require.NotNil(t, derr)
	assert.Equal(t, ErrorNotOpen, derr.Name)
}

func TestServer_ListAndCloseAll(t *testing.T) {
	s, m, _ := newTestServer(t)

	for _, label := range []string{"chat", "chat", "vehicle-log"} {
		_, derr := s.Open(label, "", "", true, "")
		require.Nil(t, derr)
	}

	entries, derr := s.List()
	require.Nil(t, derr)
	require.Len(t, entries, 3)
	assert.Equal(t, "chat-1", entries[0].Instance)
	assert.Equal(t, "chat", entries[0].Label)
	assert.False(t, entries[0].Singleton)
	assert.NotEmpty(t, entries[0].ID)

	require.Nil(t, s.CloseAll())
	assert.True(t, m.Empty())

	entries, derr = s.List()
	require.Nil(t, derr)
	assert.Empty(t, entries)
}

func TestServer_Launch(t *testing.T) {
	s, m, _ := newTestServer(t)

	_, derr := s.Launch("chat", "")
	require.NotNil(t, derr, "no launcher configured")

	presets, err := launcher.NewRegistry(launcher.Builtins())
	require.NoError(t, err)
	s.SetLauncher(launcher.New(m, presets, launcher.WithLogger(testLogger)))

	instance, derr := s.Launch("calibration", `{"instrument":"pH-3"}`)
	require.NoError(t, errOrNil(derr))
	assert.Equal(t, "calibration", instance)

	_, derr = s.Launch("zzz", "")
	require.NotNil(t, derr)
	assert.Equal(t, ErrorUnknownPreset, derr.Name)
}

func errOrNil(derr *dbus.Error) error {
	if derr == nil {
		return nil
	}
	return derr
}

func TestServer_EmitWithoutConnection(t *testing.T) {
	s, _, _ := newTestServer(t)

	assert.Error(t, s.EmitWindowOpened("chat", "chat-1"))
	assert.Error(t, s.EmitWindowClosed("chat-1"))
}

func TestServer_ObserverWithoutConnection(t *testing.T) {
	p := windowtest.NewPrimitive()
	s := NewServer(nil, testLogger)
	m := window.NewManager(p, window.WithLogger(testLogger), window.WithObserver(s.Observer()))

	h, err := m.Open(context.Background(), window.Config{Label: "chat"})
	require.NoError(t, err)
	require.NoError(t, m.Close(h.InstanceLabel))
	assert.False(t, m.IsOpen(h.InstanceLabel))
}

func TestServer_StopWhenNotRunning(t *testing.T) {
	s, _, _ := newTestServer(t)
	assert.NoError(t, s.Stop())
}

func TestPayloadCodec(t *testing.T) {
	payload, err := DecodePayload("")
	require.NoError(t, err)
	assert.Nil(t, payload)

	payload, err = DecodePayload(`{"sample_id":"S-1","count":3}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"sample_id": "S-1", "count": float64(3)}, payload)

	_, err = DecodePayload("not json")
	assert.ErrorIs(t, err, ErrInvalidPayload)

	s, err := EncodePayload(nil)
	require.NoError(t, err)
	assert.Empty(t, s)

	s, err = EncodePayload(map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"b"}`, s)

	_, err = EncodePayload(make(chan int))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantName string
		sentinel error
	}{
		{"not open", fmt.Errorf("%w: chat", window.ErrNotOpen), ErrorNotOpen, window.ErrNotOpen},
		{"timeout", &window.CreationError{Label: "chat", Cause: window.ErrCreationTimeout}, ErrorCreationTimeout, window.ErrCreationTimeout},
		{"failed", &window.CreationError{Label: "chat", Cause: errors.New("boom")}, ErrorCreationFailed, window.ErrCreationFailed},
		{"unknown preset", fmt.Errorf("%w: zzz", launcher.ErrUnknownPreset), ErrorUnknownPreset, launcher.ErrUnknownPreset},
		{"ambiguous preset", fmt.Errorf("%w: log", launcher.ErrAmbiguousPreset), ErrorUnknownPreset, launcher.ErrUnknownPreset},
		{"payload", fmt.Errorf("%w: eof", ErrInvalidPayload), ErrorInvalidPayload, ErrInvalidPayload},
		{"empty label", window.ErrEmptyLabel, ErrorInvalidArgs, window.ErrEmptyLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derr := toDBusError(tt.err)
			require.NotNil(t, derr)
			assert.Equal(t, tt.wantName, derr.Name)

			remote := fromDBusError(derr)
			assert.ErrorIs(t, remote, tt.sentinel)
			assert.Equal(t, tt.err.Error(), remote.Error())
		})
	}
}

func TestErrorMapping_Passthrough(t *testing.T) {
	assert.Nil(t, toDBusError(nil))
	assert.NoError(t, fromDBusError(nil))

	plain := errors.New("connection refused")
	assert.Same(t, plain, fromDBusError(plain))

	derr := toDBusError(errors.New("disk full"))
	assert.Equal(t, "org.freedesktop.DBus.Error.Failed", derr.Name)

	remote := fromDBusError(*derr)
	var re *RemoteError
	require.ErrorAs(t, remote, &re)
	assert.False(t, errors.Is(remote, window.ErrNotOpen))
}

func TestWindowEntryConversion(t *testing.T) {
	e := WindowEntry{ID: "01J", Label: "chat", Instance: "chat-2", OpenedAt: 1700000000}
	info := e.Info()
	assert.Equal(t, "chat-2", info.Instance)
	assert.Equal(t, "multi", info.Mode())
	assert.Equal(t, e, EntryFromInfo(info))
}

func TestParseSignal(t *testing.T) {
	opened := &dbus.Signal{
		Path: Path,
		Name: Interface + "." + SignalWindowOpened,
		Body: []any{"chat", "chat-1"},
	}
	ev, ok := parseSignal(opened)
	require.True(t, ok)
	assert.Equal(t, Event{Name: SignalWindowOpened, Label: "chat", Instance: "chat-1"}, ev)

	closed := &dbus.Signal{
		Path: Path,
		Name: Interface + "." + SignalWindowClosed,
		Body: []any{"chat-1"},
	}
	ev, ok = parseSignal(closed)
	require.True(t, ok)
	assert.Equal(t, Event{Name: SignalWindowClosed, Instance: "chat-1"}, ev)

	for _, sig := range []*dbus.Signal{
		nil,
		{Path: "/other", Name: opened.Name, Body: opened.Body},
		{Path: Path, Name: Interface + ".Other"},
		{Path: Path, Name: opened.Name, Body: []any{"chat"}},
		{Path: Path, Name: closed.Name, Body: []any{42}},
	} {
		_, ok := parseSignal(sig)
		assert.False(t, ok)
	}
}
