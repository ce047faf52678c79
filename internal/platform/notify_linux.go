//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
)

const notifyTimeoutMs = 5000

// Notify raises a desktop banner over the session bus, speaking the
// org.freedesktop.Notifications protocol that every mainstream Linux
// desktop implements.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return err
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	// Args: app name, replaces-id, icon, summary, body, actions, hints,
	// expiry. No id means a fresh banner each time.
	call := obj.Call("org.freedesktop.Notifications.Notify", 0,
		"MarkPix", uint32(0), opts.IconPath, title, body,
		[]string{}, map[string]dbus.Variant{}, int32(notifyTimeoutMs))
	return call.Err
}
