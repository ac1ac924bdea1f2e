package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/hammamikhairi/pomotech/internal/domain"
	"github.com/hammamikhairi/pomotech/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*Desktop)(nil)

// AppName is shown as the sender of desktop notifications.
const AppName = "PomodoroTech"

const (
	notificationsService = "org.freedesktop.Notifications"
	notificationsPath    = "/org/freedesktop/Notifications"
	notifyMethod         = notificationsService + ".Notify"
)

// Urgency hint values understood by org.freedesktop.Notifications.
const (
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

// Caller is the part of a D-Bus object the desktop notifier uses.
// *dbus.Object satisfies it.
type Caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Desktop raises notifications through org.freedesktop.Notifications on
// the user's session bus.
type Desktop struct {
	conn    *dbus.Conn
	obj     Caller
	log     *logger.Logger
	timeout int32 // milliseconds

	mu     sync.Mutex
	lastID uint32 // replaced by the next notification so they don't pile up
}

// NewDesktop connects to the session bus.
func NewDesktop(log *logger.Logger) (*Desktop, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	d := newDesktop(conn.Object(notificationsService, notificationsPath), log)
	d.conn = conn
	log.Debug("desktop notifications ready")
	return d, nil
}

func newDesktop(obj Caller, log *logger.Logger) *Desktop {
	return &Desktop{obj: obj, log: log, timeout: 10000}
}

// Notify raises a normal-urgency notification.
func (d *Desktop) Notify(ctx context.Context, message string) error {
	return d.send(ctx, message, urgencyNormal)
}

// NotifyUrgent raises a critical-urgency notification.
func (d *Desktop) NotifyUrgent(ctx context.Context, message string) error {
	return d.send(ctx, message, urgencyCritical)
}

func (d *Desktop) send(ctx context.Context, message string, urgency byte) error {
	d.mu.Lock()
	replaces := d.lastID
	d.mu.Unlock()

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgency),
	}
	call := d.obj.CallWithContext(ctx, notifyMethod, 0,
		AppName,       // app_name
		replaces,      // replaces_id
		"alarm-clock", // app_icon
		AppName,       // summary
		message,       // body
		[]string{},    // actions
		hints,         // hints
		d.timeout,     // expire_timeout
	)
	if call.Err != nil {
		return fmt.Errorf("sending desktop notification: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		d.log.Debug("desktop notification id: %v", err)
		return nil
	}
	d.mu.Lock()
	d.lastID = id
	d.mu.Unlock()
	return nil
}

// Close releases the bus connection.
func (d *Desktop) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}
