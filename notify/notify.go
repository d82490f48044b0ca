// Package notify shows desktop notifications through the freedesktop
// notification service on the session bus.
package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/snx-gui/common"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = "/org/freedesktop/Notifications"
	method     = busName + ".Notify"
)

// Type represents the kind of notification.
type Type int

const (
	Info Type = iota
	Success
	Warning
	Error
)

// Notification is one message to display.
type Notification struct {
	Title   string
	Message string
	Type    Type
	Icon    string
}

// icon returns the explicit icon or one derived from the type.
func (n Notification) icon() string {
	if n.Icon != "" {
		return n.Icon
	}
	switch n.Type {
	case Success:
		return "network-vpn"
	case Warning:
		return "dialog-warning"
	case Error:
		return "dialog-error"
	default:
		return "network-vpn"
	}
}

// urgency maps the type to the freedesktop urgency hint
// (0 low, 1 normal, 2 critical).
func (n Notification) urgency() byte {
	switch n.Type {
	case Error:
		return 2
	case Warning:
		return 1
	default:
		return 0
	}
}

// Caller is the part of a D-Bus object used to send notifications.
type Caller interface {
	Call(method string, flags dbus.Flags, args ...any) *dbus.Call
}

// Desktop sends notifications. The session bus is connected on first use.
type Desktop struct {
	mu      sync.Mutex
	enabled bool
	obj     Caller
	lastID  uint32
}

// New creates a notifier. A disabled notifier drops every message.
func New(enabled bool) *Desktop {
	return &Desktop{enabled: enabled}
}

// NewWithCaller creates an enabled notifier that talks to obj.
func NewWithCaller(obj Caller) *Desktop {
	return &Desktop{enabled: true, obj: obj}
}

// SetEnabled turns notifications on or off.
func (d *Desktop) SetEnabled(enabled bool) {
	d.mu.Lock()
	d.enabled = enabled
	d.mu.Unlock()
}

// Notify shows an informational notification.
func (d *Desktop) Notify(title, message string) error {
	return d.Send(Notification{Title: title, Message: message, Type: typeFor(title)})
}

// Send shows n. Each notification replaces the previous one.
func (d *Desktop) Send(n Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.enabled {
		return nil
	}
	if d.obj == nil {
		conn, err := dbus.SessionBus()
		if err != nil {
			return fmt.Errorf("connect session bus: %w", err)
		}
		d.obj = conn.Object(busName, dbus.ObjectPath(objectPath))
	}

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(n.urgency()),
	}
	call := d.obj.Call(method, 0,
		common.AppName, d.lastID, n.icon(), n.Title, n.Message,
		[]string{}, hints, int32(-1))
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err == nil {
		d.lastID = id
	}
	common.LogDebug("Notification shown: %s", n.Title)
	return nil
}

// typeFor picks a type for the fixed titles the manager uses.
func typeFor(title string) Type {
	switch title {
	case TitleConnected:
		return Success
	case TitleServiceDown:
		return Warning
	case TitleError:
		return Error
	default:
		return Info
	}
}

// Titles used for status change notifications.
const (
	TitleConnected    = "VPN Connected"
	TitleDisconnected = "VPN Disconnected"
	TitleServiceDown  = "Tunnel service stopped"
	TitleError        = "Connection error"
)
