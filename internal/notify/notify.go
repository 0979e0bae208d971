// Package notify surfaces the current brightness offset to the user through a
// desktop notification.
package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/ncruces/zenity"
	"github.com/oceania/autobright/internal/config"
	"github.com/oceania/autobright/internal/errdefs"
)

const (
	AppName = "Autobrightd"

	dbusDest      = "org.freedesktop.Notifications"
	dbusPath      = "/org/freedesktop/Notifications"
	dbusNotify    = dbusDest + ".Notify"
	expireDefault = int32(-1)
)

type Notifier interface {
	Notify(offset int) error
}

// Message is the text shown for an offset.
func Message(offset int) string {
	return fmt.Sprintf("Brightness Offset is: %d", offset)
}

type Nop struct{}

func (Nop) Notify(int) error { return nil }

// DBus posts notifications to org.freedesktop.Notifications. Consecutive
// notifications replace the previous popup instead of stacking.
type DBus struct {
	obj dbus.BusObject

	mu        sync.Mutex
	replaceID uint32
}

func NewDBus(conn *dbus.Conn) *DBus {
	return &DBus{obj: conn.Object(dbusDest, dbusPath)}
}

func (d *DBus) Notify(offset int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var id uint32
	err := d.obj.Call(dbusNotify, 0,
		AppName,
		d.replaceID,
		"display-brightness",
		AppName,
		Message(offset),
		[]string{},
		map[string]dbus.Variant{},
		expireDefault,
	).Store(&id)
	if err != nil {
		return errdefs.Wrap(errdefs.ErrTypeBus, "failed to send notification", err)
	}
	d.replaceID = id
	return nil
}

// Zenity shows the notification through zenity, which picks whatever
// mechanism the desktop offers.
type Zenity struct{}

func (Zenity) Notify(offset int) error {
	if err := zenity.Notify(Message(offset), zenity.Title(AppName), zenity.InfoIcon); err != nil {
		return errdefs.Wrap(errdefs.ErrTypeGeneric, "failed to send notification", err)
	}
	return nil
}

// New picks the backend named by kind. The dbus backend needs a session bus
// connection; without one it falls back to zenity.
func New(kind string, conn *dbus.Conn) Notifier {
	switch kind {
	case config.NotifierNone:
		return Nop{}
	case config.NotifierZenity:
		return Zenity{}
	default:
		if conn == nil {
			return Zenity{}
		}
		return NewDBus(conn)
	}
}
