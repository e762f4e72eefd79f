package dbus

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/labwin/internal/window"
)

// Signal names.
const (
	SignalWindowOpened = "WindowOpened"
	SignalWindowClosed = "WindowClosed"
)

func (s *Server) connection() *dbus.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// EmitWindowOpened emits the WindowOpened signal.
func (s *Server) EmitWindowOpened(label, instance string) error {
	conn := s.connection()
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := conn.Emit(Path, Interface+"."+SignalWindowOpened, label, instance); err != nil {
		return fmt.Errorf("failed to emit WindowOpened signal: %w", err)
	}

	s.logger.Debug("emitted WindowOpened signal", "label", label, "instance", instance)
	return nil
}

// EmitWindowClosed emits the WindowClosed signal.
func (s *Server) EmitWindowClosed(instance string) error {
	conn := s.connection()
	if conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	if err := conn.Emit(Path, Interface+"."+SignalWindowClosed, instance); err != nil {
		return fmt.Errorf("failed to emit WindowClosed signal: %w", err)
	}

	s.logger.Debug("emitted WindowClosed signal", "instance", instance)
	return nil
}

// Observer returns a window.Observer that mirrors lifecycle transitions as
// D-Bus signals.
func (s *Server) Observer() window.Observer {
	return signalObserver{s: s}
}

type signalObserver struct {
	window.NopObserver
	s *Server
}

func (o signalObserver) WindowOpened(h *window.Handle, _ time.Duration) {
	if err := o.s.EmitWindowOpened(h.Label, h.InstanceLabel); err != nil {
		o.s.logger.Debug("skipped WindowOpened signal", "instance_label", h.InstanceLabel, "error", err)
	}
}

func (o signalObserver) WindowClosed(h *window.Handle) {
	if err := o.s.EmitWindowClosed(h.InstanceLabel); err != nil {
		o.s.logger.Debug("skipped WindowClosed signal", "instance_label", h.InstanceLabel, "error", err)
	}
}
