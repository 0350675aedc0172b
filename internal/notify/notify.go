// Package notify sends a local desktop notification when a scan or
// monitoring cycle ends in BLOCK. The terminal UI renderer is an
// external collaborator per spec §1; a session-bus notification is a
// local-only supplement on top of it, built on
// github.com/godbus/dbus/v5's session-bus client.
package notify

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest = "org.freedesktop.Notifications"
	notificationsPath = "/org/freedesktop/Notifications"
	notifyMethod      = notificationsDest + ".Notify"
)

// Notifier sends desktop notifications over the session bus. A nil
// *Notifier (returned by Connect on platforms with no session bus) is
// safe to call Block, Flag and Close on: each is a no-op, matching spec §7's "local
// recovery" posture for ambient, non-critical components.
type Notifier struct {
	conn *dbus.Conn
}

// Connect opens the session bus. On platforms without one (no
// DBUS_SESSION_BUS_ADDRESS, Windows, headless CI), it returns a nil
// *Notifier and a nil error rather than failing the caller — desktop
// alerting is a supplement, not a blocking dependency for the scan.
func Connect() (*Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, nil
	}
	return &Notifier{conn: conn}, nil
}

// Close releases the session bus connection, if one is held.
func (n *Notifier) Close() error {
	if n == nil || n.conn == nil {
		return nil
	}
	return n.conn.Close()
}

// Block sends a critical-urgency notification for a blocking verdict,
// per spec §4.6 step 4's "render alert" step in the monitoring loop.
func (n *Notifier) Block(ctx context.Context, reason string) error {
	return n.send(ctx, "IntegrityWatch — Exam Blocked", reason, 2)
}

// Flag sends a normal-urgency notification for a flagged verdict.
func (n *Notifier) Flag(ctx context.Context, reason string) error {
	return n.send(ctx, "IntegrityWatch — Manual Review Required", reason, 1)
}

func (n *Notifier) send(ctx context.Context, summary, body string, urgency byte) error {
	if n == nil || n.conn == nil {
		return nil
	}

	hints := map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgency)}
	obj := n.conn.Object(notificationsDest, dbus.ObjectPath(notificationsPath))
	call := obj.CallWithContext(ctx, notifyMethod, 0,
		"IntegrityWatch", uint32(0), "dialog-warning",
		summary, body,
		[]string{}, hints, int32(8000),
	)
	if call.Err != nil {
		return fmt.Errorf("notify: send notification: %w", call.Err)
	}
	return nil
}
