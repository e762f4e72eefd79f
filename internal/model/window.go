// Package model defines the window listing records shared by the D-Bus
// wire format, the CLI and the TUI.
package model

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/labwin/internal/window"
)

// Validation errors.
var (
	ErrEmptyID       = errors.New("id cannot be empty")
	ErrEmptyLabel    = errors.New("label cannot be empty")
	ErrEmptyInstance = errors.New("instance cannot be empty")
)

// WindowInfo describes one open window.
type WindowInfo struct {
	ID        string `json:"id" yaml:"id"`
	Label     string `json:"label" yaml:"label"`
	Instance  string `json:"instance" yaml:"instance"`
	Singleton bool   `json:"singleton" yaml:"singleton"`
	OpenedAt  int64  `json:"opened_at" yaml:"opened_at"` // Unix seconds
}

// FromHandle converts a tracked window into a listing record.
func FromHandle(h *window.Handle) WindowInfo {
	return WindowInfo{
		ID:        h.ID,
		Label:     h.Label,
		Instance:  h.InstanceLabel,
		Singleton: h.Singleton,
		OpenedAt:  h.OpenedAt.Unix(),
	}
}

// FromHandles converts a listing of tracked windows.
func FromHandles(handles []*window.Handle) []WindowInfo {
	infos := make([]WindowInfo, 0, len(handles))
	for _, h := range handles {
		infos = append(infos, FromHandle(h))
	}
	return infos
}

// Validate checks that the record has all required fields.
func (w WindowInfo) Validate() error {
	if w.ID == "" {
		return ErrEmptyID
	}
	if w.Label == "" {
		return ErrEmptyLabel
	}
	if w.Instance == "" {
		return ErrEmptyInstance
	}
	return nil
}

// Time returns the open time.
func (w WindowInfo) Time() time.Time {
	return time.Unix(w.OpenedAt, 0)
}

// Age returns how long ago the window opened, e.g. "3 minutes ago".
func (w WindowInfo) Age() string {
	return humanize.Time(w.Time())
}

// Mode returns "singleton" or "multi".
func (w WindowInfo) Mode() string {
	if w.Singleton {
		return "singleton"
	}
	return "multi"
}

// Matches reports whether query is a case-insensitive substring of the label
// or instance label. An empty query matches everything.
func (w WindowInfo) Matches(query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(w.Instance), query) ||
		strings.Contains(strings.ToLower(w.Label), query)
}

// SortByOpened sorts oldest first, breaking ties by instance label.
func SortByOpened(infos []WindowInfo) {
	slices.SortStableFunc(infos, func(a, b WindowInfo) int {
		if a.OpenedAt != b.OpenedAt {
			if a.OpenedAt < b.OpenedAt {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Instance, b.Instance)
	})
}
