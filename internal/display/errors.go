package display

import "errors"

var (
	// ErrNoDisplay is reported when GTK has no default display.
	ErrNoDisplay = errors.New("no display available")
	// ErrUnknownContent is reported for a content reference with no factory.
	ErrUnknownContent = errors.New("unknown content")
	// ErrWindowClosed is returned for operations on a closed window.
	ErrWindowClosed = errors.New("window closed")
)

// DisplayError represents a display-related error.
type DisplayError struct {
	Message string
	Cause   error
}

func (e *DisplayError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DisplayError) Unwrap() error {
	return e.Cause
}
