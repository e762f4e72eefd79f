package dbus

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"
)

// Urgency levels from the desktop notifications specification.
const (
	UrgencyLow      byte = 0
	UrgencyNormal   byte = 1
	UrgencyCritical byte = 2
)

// Notification is a desktop notification sent by labwind about itself.
type Notification struct {
	Summary       string
	Body          string
	Icon          string
	Urgency       byte
	ExpireTimeout int32 // milliseconds, -1 for the server default
}

// hints returns the Notify hints for n.
func (n Notification) hints() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(n.Urgency),
		"transient":     dbus.MakeVariant(true),
		"desktop-entry": dbus.MakeVariant("labwind"),
	}
}

// Notify sends n to the session notification daemon and returns its id.
func Notify(ctx context.Context, n Notification) (uint32, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return 0, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	obj := conn.Object(notificationsName, dbus.ObjectPath(notificationsPath))
	call := obj.CallWithContext(ctx, notificationsName+".Notify", 0,
		"labwind", uint32(0), n.Icon, n.Summary, n.Body, []string{}, n.hints(), n.ExpireTimeout)
	if call.Err != nil {
		return 0, fmt.Errorf("notify: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("notify: %w", err)
	}
	return id, nil
}
