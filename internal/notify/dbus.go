//go:build linux

package notify

import (
	"context"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsName = "org.freedesktop.Notifications"
	notificationsPath = dbus.ObjectPath("/org/freedesktop/Notifications")

	methodNotify = notificationsName + ".Notify"
	methodClose  = notificationsName + ".CloseNotification"

	appName = "mpv-sponsorblock"
)

type dbusNotifier struct {
	obj dbus.BusObject
}

// New connects to the session bus. Without a session bus, notices are
// silently dropped.
func New() (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return stubNotifier{}, nil //nolint:nilerr // no session bus is not an error for a daemon
	}
	return &dbusNotifier{obj: conn.Object(notificationsName, notificationsPath)}, nil
}

func (d *dbusNotifier) Notify(ctx context.Context, n Notification) (uint32, error) {
	var id uint32
	err := d.obj.CallWithContext(ctx, methodNotify, 0,
		appName,
		n.ReplacesID,
		n.Icon,
		n.Title,
		n.Body,
		[]string{},
		hints(n),
		n.Timeout,
	).Store(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (d *dbusNotifier) Dismiss(ctx context.Context, id uint32) error {
	return d.obj.CallWithContext(ctx, methodClose, 0, id).Err
}

// hints builds the freedesktop hints for n. Notices are always transient.
func hints(n Notification) map[string]dbus.Variant {
	h := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(n.Urgency)),
		"desktop-entry": dbus.MakeVariant("mpv"),
		"transient":     dbus.MakeVariant(true),
	}
	if n.Category != "" {
		h["category"] = dbus.MakeVariant(n.Category)
	}
	return h
}

type stubNotifier struct{}

func (stubNotifier) Notify(context.Context, Notification) (uint32, error) { return 0, nil }
func (stubNotifier) Dismiss(context.Context, uint32) error                { return nil }
