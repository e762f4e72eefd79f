package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/labwin/internal/dbus"
)

// NotificationLevel is the severity of a notification labwind sends about itself.
type NotificationLevel int

const (
	NotificationLevelInfo NotificationLevel = iota
	NotificationLevelWarning
	NotificationLevelError
)

// DefaultNotifyInterval is the minimum gap between notifications sharing a key.
const DefaultNotifyInterval = 5 * time.Second

// Notifier tells the user about daemon events, such as a rejected config
// reload, through desktop notifications. Repeats of the same key are
// dropped within the minimum interval.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	send func(dbus.Notification) error

	last        map[string]time.Time
	minInterval time.Duration
	now         func() time.Time

	enabled bool
}

// NewNotifier creates a Notifier delivering through send.
func NewNotifier(send func(dbus.Notification) error, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:      logger,
		send:        send,
		last:        make(map[string]time.Time),
		minInterval: DefaultNotifyInterval,
		now:         time.Now,
		enabled:     true,
	}
}

// SetEnabled enables or disables notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *Notifier) SetMinInterval(d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = d
}

// Notify sends a notification unless one with key went out recently.
// It reports whether the notification was sent.
func (n *Notifier) Notify(key, summary, body string, level NotificationLevel) bool {
	n.mu.Lock()
	if !n.enabled || n.send == nil {
		n.mu.Unlock()
		return false
	}
	now := n.now()
	if last, ok := n.last[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("notification rate-limited", "key", key)
		return false
	}
	n.last[key] = now
	send := n.send
	n.mu.Unlock()

	note := dbus.Notification{
		Summary:       summary,
		Body:          body,
		ExpireTimeout: 5000,
	}
	switch level {
	case NotificationLevelInfo:
		note.Urgency, note.Icon = dbus.UrgencyLow, "dialog-information"
	case NotificationLevelWarning:
		note.Urgency, note.Icon = dbus.UrgencyNormal, "dialog-warning"
	case NotificationLevelError:
		note.Urgency, note.Icon = dbus.UrgencyCritical, "dialog-error"
	}

	if err := send(note); err != nil {
		n.logger.Warn("failed to send notification", "key", key, "error", err)
		return false
	}
	return true
}

// NotifyConfigReloaded reports an applied config reload.
func (n *Notifier) NotifyConfigReloaded() {
	n.Notify("config-reloaded", "labwind", "Configuration reloaded", NotificationLevelInfo)
}

// NotifyConfigError reports a rejected config file.
func (n *Notifier) NotifyConfigError(err error) {
	n.Notify("config-error", "labwind: invalid configuration", err.Error(), NotificationLevelError)
}

// NotifyThemeError reports a theme that could not be loaded.
func (n *Notifier) NotifyThemeError(err error) {
	n.Notify("theme-error", "labwind: theme error", err.Error(), NotificationLevelWarning)
}
