package dbus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/labwin/internal/launcher"
	"github.com/jmylchreest/labwin/internal/model"
	"github.com/jmylchreest/labwin/internal/window"
)

const (
	// Interface is the labwin interface name.
	Interface = "io.github.jmylchreest.Labwin"
	// Path is the labwin object path.
	Path = "/io/github/jmylchreest/Labwin"
	// BusName is the bus name to claim.
	BusName = "io.github.jmylchreest.Labwin"
)

// D-Bus error names returned by the service.
const (
	ErrorNotOpen         = Interface + ".Error.NotOpen"
	ErrorCreationFailed  = Interface + ".Error.CreationFailed"
	ErrorCreationTimeout = Interface + ".Error.CreationTimeout"
	ErrorUnknownPreset   = Interface + ".Error.UnknownPreset"
	ErrorInvalidPayload  = Interface + ".Error.InvalidPayload"
	ErrorInvalidArgs     = Interface + ".Error.InvalidArgs"
)

// ErrInvalidPayload is returned when a payload is not valid JSON.
var ErrInvalidPayload = errors.New("invalid payload")

// WindowEntry is one element of the List reply, signature (sssbx).
type WindowEntry struct {
	ID        string
	Label     string
	Instance  string
	Singleton bool
	OpenedAt  int64
}

// EntryFromInfo converts a listing record to its wire form.
func EntryFromInfo(info model.WindowInfo) WindowEntry {
	return WindowEntry{
		ID:        info.ID,
		Label:     info.Label,
		Instance:  info.Instance,
		Singleton: info.Singleton,
		OpenedAt:  info.OpenedAt,
	}
}

// Info converts the wire form to a listing record.
func (e WindowEntry) Info() model.WindowInfo {
	return model.WindowInfo{
		ID:        e.ID,
		Label:     e.Label,
		Instance:  e.Instance,
		Singleton: e.Singleton,
		OpenedAt:  e.OpenedAt,
	}
}

// DecodePayload parses a JSON payload. The empty string means no payload.
func DecodePayload(s string) (any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var payload any
	if err := json.Unmarshal([]byte(s), &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return payload, nil
}

// EncodePayload renders a payload as JSON. A nil payload is the empty string.
func EncodePayload(payload any) (string, error) {
	if payload == nil {
		return "", nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return string(data), nil
}

// toDBusError maps a manager error to a named D-Bus error.
func toDBusError(err error) *dbus.Error {
	if err == nil {
		return nil
	}

	name := ""
	switch {
	case errors.Is(err, window.ErrNotOpen):
		name = ErrorNotOpen
	case errors.Is(err, window.ErrCreationTimeout):
		name = ErrorCreationTimeout
	case errors.Is(err, window.ErrCreationFailed):
		name = ErrorCreationFailed
	case errors.Is(err, launcher.ErrUnknownPreset), errors.Is(err, launcher.ErrAmbiguousPreset):
		name = ErrorUnknownPreset
	case errors.Is(err, ErrInvalidPayload):
		name = ErrorInvalidPayload
	case errors.Is(err, window.ErrEmptyLabel):
		name = ErrorInvalidArgs
	default:
		return dbus.MakeFailedError(err)
	}
	return dbus.NewError(name, []any{err.Error()})
}

// RemoteError is an error reply from labwind. It matches the sentinel error
// its name maps to, so callers can use errors.Is across the bus.
type RemoteError struct {
	Name    string
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return e.Message
}

// Is matches the sentinel error for the D-Bus error name.
func (e *RemoteError) Is(target error) bool {
	switch e.Name {
	case ErrorNotOpen:
		return target == window.ErrNotOpen
	case ErrorCreationTimeout:
		return target == window.ErrCreationTimeout || target == window.ErrCreationFailed
	case ErrorCreationFailed:
		return target == window.ErrCreationFailed
	case ErrorUnknownPreset:
		return target == launcher.ErrUnknownPreset
	case ErrorInvalidPayload:
		return target == ErrInvalidPayload
	case ErrorInvalidArgs:
		return target == window.ErrEmptyLabel
	}
	return false
}

// fromDBusError converts a D-Bus error reply into a RemoteError. Other
// errors are returned unchanged.
func fromDBusError(err error) error {
	if err == nil {
		return nil
	}

	var name string
	var body []any

	var de dbus.Error
	var dp *dbus.Error
	switch {
	case errors.As(err, &dp) && dp != nil:
		name, body = dp.Name, dp.Body
	case errors.As(err, &de):
		name, body = de.Name, de.Body
	default:
		return err
	}

	msg := ""
	if len(body) > 0 {
		if s, ok := body[0].(string); ok {
			msg = s
		}
	}
	return &RemoteError{Name: name, Message: msg}
}
