package window

import (
	"errors"
	"fmt"
)

var (
	// ErrCreationFailed matches every window construction failure.
	ErrCreationFailed = errors.New("window creation failed")
	// ErrCreationTimeout is the cause of a CreationError when neither a
	// created nor an error signal arrived in time.
	ErrCreationTimeout = errors.New("window creation timed out")
	// ErrNotOpen is returned when closing a label that is not tracked.
	ErrNotOpen = errors.New("window not open")
	// ErrEmptyLabel is returned by Open for a Config without a label.
	ErrEmptyLabel = errors.New("window label cannot be empty")
)

// CreationError reports a failed window construction.
type CreationError struct {
	Label string
	Cause error
}

func (e *CreationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("create window %q: %v", e.Label, e.Cause)
	}
	return fmt.Sprintf("create window %q: %v", e.Label, ErrCreationFailed)
}

// Unwrap returns the cause.
func (e *CreationError) Unwrap() error {
	return e.Cause
}

// Is makes every CreationError match ErrCreationFailed.
func (e *CreationError) Is(target error) bool {
	return target == ErrCreationFailed
}

// Timeout reports whether the window never answered.
func (e *CreationError) Timeout() bool {
	return errors.Is(e.Cause, ErrCreationTimeout)
}
