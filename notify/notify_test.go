package notify

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
)

type fakeCaller struct {
	method string
	args   [][]any
	err    error
	nextID uint32
}

func (f *fakeCaller) Call(method string, _ dbus.Flags, args ...any) *dbus.Call {
	f.method = method
	f.args = append(f.args, args)
	f.nextID++
	return &dbus.Call{Err: f.err, Body: []any{f.nextID}}
}

func TestSend(t *testing.T) {
	fake := &fakeCaller{}
	d := NewWithCaller(fake)

	if err := d.Send(Notification{Title: "VPN Connected", Message: "Connected to vpn", Type: Success}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if fake.method != "org.freedesktop.Notifications.Notify" {
		t.Errorf("method = %q", fake.method)
	}

	args := fake.args[0]
	if len(args) != 8 {
		t.Fatalf("got %d args, want 8", len(args))
	}
	if args[1] != uint32(0) {
		t.Errorf("first replaces_id = %v, want 0", args[1])
	}
	if args[2] != "network-vpn" || args[3] != "VPN Connected" || args[4] != "Connected to vpn" {
		t.Errorf("icon/title/body = %v %v %v", args[2], args[3], args[4])
	}
	hints := args[6].(map[string]dbus.Variant)
	if hints["urgency"].Value() != byte(0) {
		t.Errorf("urgency = %v, want 0", hints["urgency"].Value())
	}

	// The second notification replaces the first one.
	d.Send(Notification{Title: "again"})
	if fake.args[1][1] != uint32(1) {
		t.Errorf("replaces_id = %v, want 1", fake.args[1][1])
	}
}

func TestSend_Disabled(t *testing.T) {
	fake := &fakeCaller{}
	d := NewWithCaller(fake)
	d.SetEnabled(false)

	if err := d.Send(Notification{Title: "x"}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(fake.args) != 0 {
		t.Error("disabled notifier should not call D-Bus")
	}
}

func TestSend_Error(t *testing.T) {
	fake := &fakeCaller{err: errors.New("no server")}
	d := NewWithCaller(fake)

	if err := d.Notify("t", "m"); err == nil {
		t.Error("expected error from failed call")
	}
}

func TestNotificationDefaults(t *testing.T) {
	tests := []struct {
		typ     Type
		icon    string
		urgency byte
	}{
		{Info, "network-vpn", 0},
		{Success, "network-vpn", 0},
		{Warning, "dialog-warning", 1},
		{Error, "dialog-error", 2},
	}

	for _, tt := range tests {
		n := Notification{Type: tt.typ}
		if got := n.icon(); got != tt.icon {
			t.Errorf("type %d icon = %q, want %q", tt.typ, got, tt.icon)
		}
		if got := n.urgency(); got != tt.urgency {
			t.Errorf("type %d urgency = %d, want %d", tt.typ, got, tt.urgency)
		}
	}

	if got := (Notification{Icon: "custom"}).icon(); got != "custom" {
		t.Errorf("explicit icon = %q", got)
	}
}

func TestTypeFor(t *testing.T) {
	tests := map[string]Type{
		TitleConnected:    Success,
		TitleDisconnected: Info,
		TitleServiceDown:  Warning,
		TitleError:        Error,
		"other":           Info,
	}
	for title, want := range tests {
		if got := typeFor(title); got != want {
			t.Errorf("typeFor(%q) = %d, want %d", title, got, want)
		}
	}
}
