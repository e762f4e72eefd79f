package dbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/labwin/internal/model"
)

// ErrDaemonNotRunning is returned when nothing owns the labwin bus name.
var ErrDaemonNotRunning = errors.New("labwind is not running")

// Client calls the labwind service.
type Client struct {
	conn   *dbus.Conn
	obj    dbus.BusObject
	logger *slog.Logger
}

// NewClient connects to the session bus.
func NewClient(logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &Client{
		conn:   conn,
		obj:    conn.Object(BusName, dbus.ObjectPath(Path)),
		logger: logger,
	}, nil
}

// Running reports whether labwind owns its bus name.
func (c *Client) Running(ctx context.Context) (bool, error) {
	var owned bool
	err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, BusName).Store(&owned)
	if err != nil {
		return false, fmt.Errorf("failed to query bus name owner: %w", err)
	}
	return owned, nil
}

func (c *Client) call(ctx context.Context, method string, args []any, out ...any) error {
	c.logger.Debug("calling labwind", "method", method)

	call := c.obj.CallWithContext(ctx, Interface+"."+method, 0, args...)
	if call.Err != nil {
		return c.callError(ctx, method, call.Err)
	}
	if len(out) == 0 {
		return nil
	}
	if err := call.Store(out...); err != nil {
		return fmt.Errorf("%s: decode reply: %w", method, err)
	}
	return nil
}

func (c *Client) callError(ctx context.Context, method string, err error) error {
	var de dbus.Error
	if errors.As(err, &de) && de.Name == "org.freedesktop.DBus.Error.ServiceUnknown" {
		return ErrDaemonNotRunning
	}
	if running, rerr := c.Running(ctx); rerr == nil && !running {
		return ErrDaemonNotRunning
	}
	return fmt.Errorf("%s: %w", method, fromDBusError(err))
}

// Open opens a window and returns its instance label.
func (c *Client) Open(ctx context.Context, label, title, content string, allowMultiple bool, payload any) (string, error) {
	payloadJSON, err := EncodePayload(payload)
	if err != nil {
		return "", err
	}

	var instance string
	err = c.call(ctx, "Open", []any{label, title, content, allowMultiple, payloadJSON}, &instance)
	return instance, err
}

// Launch opens a preset window and returns its instance label.
func (c *Client) Launch(ctx context.Context, preset string, payload any) (string, error) {
	payloadJSON, err := EncodePayload(payload)
	if err != nil {
		return "", err
	}

	var instance string
	err = c.call(ctx, "Launch", []any{preset, payloadJSON}, &instance)
	return instance, err
}

// Close closes the window tracked under label.
func (c *Client) Close(ctx context.Context, label string) error {
	return c.call(ctx, "Close", []any{label})
}

// IsOpen reports whether label is tracked.
func (c *Client) IsOpen(ctx context.Context, label string) (bool, error) {
	var open bool
	err := c.call(ctx, "IsOpen", []any{label}, &open)
	return open, err
}

// List returns every open window, oldest first.
func (c *Client) List(ctx context.Context) ([]model.WindowInfo, error) {
	var entries []WindowEntry
	if err := c.call(ctx, "List", nil, &entries); err != nil {
		return nil, err
	}

	infos := make([]model.WindowInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, e.Info())
	}
	return infos, nil
}

// CloseAll closes every window.
func (c *Client) CloseAll(ctx context.Context) error {
	return c.call(ctx, "CloseAll", nil)
}

// Event is a lifecycle signal received from labwind.
type Event struct {
	Name     string // SignalWindowOpened or SignalWindowClosed
	Label    string // empty for SignalWindowClosed
	Instance string
}

// Subscribe delivers WindowOpened and WindowClosed signals until ctx is
// cancelled, then closes the returned channel.
func (c *Client) Subscribe(ctx context.Context) (<-chan Event, error) {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(dbus.ObjectPath(Path)),
		dbus.WithMatchInterface(Interface),
	}
	if err := c.conn.AddMatchSignalContext(ctx, opts...); err != nil {
		return nil, fmt.Errorf("failed to add signal match: %w", err)
	}

	raw := make(chan *dbus.Signal, 16)
	c.conn.Signal(raw)

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		defer func() {
			c.conn.RemoveSignal(raw)
			if err := c.conn.RemoveMatchSignal(opts...); err != nil {
				c.logger.Debug("failed to remove signal match", "error", err)
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-raw:
				if !ok {
					return
				}
				ev, ok := parseSignal(sig)
				if !ok {
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// parseSignal converts a raw labwind signal.
func parseSignal(sig *dbus.Signal) (Event, bool) {
	if sig == nil || sig.Path != dbus.ObjectPath(Path) {
		return Event{}, false
	}

	switch sig.Name {
	case Interface + "." + SignalWindowOpened:
		if len(sig.Body) != 2 {
			return Event{}, false
		}
		label, ok1 := sig.Body[0].(string)
		instance, ok2 := sig.Body[1].(string)
		if !ok1 || !ok2 {
			return Event{}, false
		}
		return Event{Name: SignalWindowOpened, Label: label, Instance: instance}, true

	case Interface + "." + SignalWindowClosed:
		if len(sig.Body) != 1 {
			return Event{}, false
		}
		instance, ok := sig.Body[0].(string)
		if !ok {
			return Event{}, false
		}
		return Event{Name: SignalWindowClosed, Instance: instance}, true
	}
	return Event{}, false
}
