package dbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"

	"github.com/jmylchreest/labwin/internal/model"
	"github.com/jmylchreest/labwin/internal/window"
)

// Controller is the window manager the server drives. *window.Manager satisfies it.
type Controller interface {
	Open(ctx context.Context, cfg window.Config) (*window.Handle, error)
	Close(label string) error
	IsOpen(label string) bool
	List() []*window.Handle
	CloseAll() error
}

// Launcher opens preset windows. *launcher.Launcher satisfies it.
type Launcher interface {
	Launch(ctx context.Context, name string, payload any) (*window.Handle, error)
}

// Server implements the io.github.jmylchreest.Labwin D-Bus interface.
type Server struct {
	conn   *dbus.Conn
	logger *slog.Logger

	controller Controller
	launcher   Launcher

	mu      sync.RWMutex
	ctx     context.Context
	running bool
}

// NewServer creates a Server over controller.
func NewServer(controller Controller, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:     logger,
		controller: controller,
		ctx:        context.Background(),
	}
}

// SetController replaces the window manager. It must be called before Start.
func (s *Server) SetController(c Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller = c
}

// SetLauncher sets the preset launcher used by Launch.
func (s *Server) SetLauncher(l Launcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launcher = l
}

// Start connects to the session bus and exports the service. Calls in
// flight are cancelled when ctx is.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}

	if err := conn.Export(s, Path, Interface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: Path,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    Interface,
				Methods: serverMethods(),
				Signals: serverSignals(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), Path,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", BusName)
	}

	s.mu.Lock()
	s.conn = conn
	s.ctx = ctx
	s.running = true
	s.mu.Unlock()

	s.logger.Info("D-Bus server started", "interface", Interface, "path", Path)
	return nil
}

// Stop releases the bus name.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(BusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		// The session bus connection is shared; leave it open.
	}

	s.logger.Info("D-Bus server stopped")
	return nil
}

func (s *Server) callContext() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// Open opens a window.
// D-Bus method: Open(sssbs) -> s
func (s *Server) Open(label, title, content string, allowMultiple bool, payloadJSON string) (string, *dbus.Error) {
	s.logger.Debug("Open called", "label", label, "allow_multiple", allowMultiple)

	payload, err := DecodePayload(payloadJSON)
	if err != nil {
		return "", toDBusError(err)
	}

	h, err := s.controller.Open(s.callContext(), window.Config{
		Label:     label,
		Title:     title,
		Content:   content,
		Payload:   payload,
		Singleton: !allowMultiple,
	})
	if err != nil {
		return "", toDBusError(err)
	}
	return h.InstanceLabel, nil
}

// Launch opens a window from a named preset.
// D-Bus method: Launch(ss) -> s
func (s *Server) Launch(preset, payloadJSON string) (string, *dbus.Error) {
	s.logger.Debug("Launch called", "preset", preset)

	s.mu.RLock()
	l := s.launcher
	s.mu.RUnlock()
	if l == nil {
		return "", dbus.MakeFailedError(fmt.Errorf("no launcher configured"))
	}

	payload, err := DecodePayload(payloadJSON)
	if err != nil {
		return "", toDBusError(err)
	}

	h, err := l.Launch(s.callContext(), preset, payload)
	if err != nil {
		return "", toDBusError(err)
	}
	return h.InstanceLabel, nil
}

// Close closes the window tracked under label, a singleton label or a full
// instance label.
// D-Bus method: Close(s)
func (s *Server) Close(label string) *dbus.Error {
	s.logger.Debug("Close called", "label", label)
	return toDBusError(s.controller.Close(label))
}

// IsOpen reports whether label is tracked.
// D-Bus method: IsOpen(s) -> b
func (s *Server) IsOpen(label string) (bool, *dbus.Error) {
	return s.controller.IsOpen(label), nil
}

// List returns every open window, oldest first.
// D-Bus method: List() -> a(sssbx)
func (s *Server) List() ([]WindowEntry, *dbus.Error) {
	handles := s.controller.List()
	entries := make([]WindowEntry, 0, len(handles))
	for _, h := range handles {
		entries = append(entries, EntryFromInfo(model.FromHandle(h)))
	}
	return entries, nil
}

// CloseAll closes every window and resets the registry.
// D-Bus method: CloseAll()
func (s *Server) CloseAll() *dbus.Error {
	s.logger.Debug("CloseAll called")
	return toDBusError(s.controller.CloseAll())
}

// serverMethods returns the D-Bus method introspection data.
func serverMethods() []introspect.Method {
	return []introspect.Method{
		{
			Name: "Open",
			Args: []introspect.Arg{
				{Name: "label", Type: "s", Direction: "in"},
				{Name: "title", Type: "s", Direction: "in"},
				{Name: "content", Type: "s", Direction: "in"},
				{Name: "allow_multiple", Type: "b", Direction: "in"},
				{Name: "payload_json", Type: "s", Direction: "in"},
				{Name: "instance", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Launch",
			Args: []introspect.Arg{
				{Name: "preset", Type: "s", Direction: "in"},
				{Name: "payload_json", Type: "s", Direction: "in"},
				{Name: "instance", Type: "s", Direction: "out"},
			},
		},
		{
			Name: "Close",
			Args: []introspect.Arg{
				{Name: "label", Type: "s", Direction: "in"},
			},
		},
		{
			Name: "IsOpen",
			Args: []introspect.Arg{
				{Name: "label", Type: "s", Direction: "in"},
				{Name: "open", Type: "b", Direction: "out"},
			},
		},
		{
			Name: "List",
			Args: []introspect.Arg{
				{Name: "windows", Type: "a(sssbx)", Direction: "out"},
			},
		},
		{
			Name: "CloseAll",
		},
	}
}

// serverSignals returns the D-Bus signal introspection data.
func serverSignals() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: SignalWindowOpened,
			Args: []introspect.Arg{
				{Name: "label", Type: "s"},
				{Name: "instance", Type: "s"},
			},
		},
		{
			Name: SignalWindowClosed,
			Args: []introspect.Arg{
				{Name: "instance", Type: "s"},
			},
		},
	}
}
