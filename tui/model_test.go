package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/form"
	"github.com/yllada/snx-gui/tunnel"
	"github.com/yllada/snx-gui/vpn"
)

type fakeController struct {
	status      vpn.Status
	connected   []*form.Form
	disconnects int
	remember    []bool
	saved       []form.Form
	connectErr  error
}

func (c *fakeController) Connect(_ context.Context, f *form.Form) (*tunnel.Response, error) {
	c.connected = append(c.connected, f)
	return &tunnel.Response{Kind: tunnel.ResponseOk}, c.connectErr
}

func (c *fakeController) Disconnect(context.Context) error {
	c.disconnects++
	return nil
}

func (c *fakeController) SetRememberMe(f *form.Form, remember bool) error {
	f.RememberMe = remember
	c.remember = append(c.remember, remember)
	return nil
}

func (c *fakeController) SaveForm(f *form.Form) error {
	c.saved = append(c.saved, *f)
	return nil
}

func (c *fakeController) Status() vpn.Status { return c.status }

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func typeText(m *Model, s string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func newTestModel() (*Model, *fakeController) {
	ctrl := &fakeController{status: vpn.Status{ServiceRunning: true}}
	return NewModel(ctrl, form.New(), nil), ctrl
}

func TestConnect_IncompleteFormSendsNothing(t *testing.T) {
	m, ctrl := newTestModel()

	_, cmd := m.Update(key(tea.KeyEnter))
	if cmd != nil {
		t.Fatal("an empty form should not produce a connect command")
	}
	if len(ctrl.connected) != 0 {
		t.Error("nothing should be sent")
	}

	view := m.View()
	for _, msg := range []string{form.MsgUsernameRequired, form.MsgPasswordRequired, form.MsgServerAddressRequired} {
		if !strings.Contains(view, msg) {
			t.Errorf("view is missing %q", msg)
		}
	}
}

func TestConnect_FlagsOnlyMissingFields(t *testing.T) {
	m, _ := newTestModel()
	typeText(m, "alice")

	m.Update(key(tea.KeyCtrlS))

	view := m.View()
	if strings.Contains(view, form.MsgUsernameRequired) {
		t.Error("username is filled and should not be flagged")
	}
	if !strings.Contains(view, form.MsgPasswordRequired) {
		t.Error("password should be flagged")
	}
}

func TestConnect_SendsAndClearsPassword(t *testing.T) {
	m, ctrl := newTestModel()
	typeText(m, "alice")
	m.Update(key(tea.KeyTab))
	typeText(m, "secret")
	m.Update(key(tea.KeyTab))
	typeText(m, "vpn.example.com")
	m.form.SettingsExpanded = true

	_, cmd := m.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a connect command")
	}
	if m.form.Password != "" || m.inputs[fieldPassword].Value() != "" {
		t.Error("password should be cleared once the request is issued")
	}
	if m.form.SettingsExpanded {
		t.Error("settings should collapse")
	}
	if m.status.State() != vpn.StateConnecting {
		t.Errorf("state = %v, want Connecting", m.status.State())
	}

	msg := cmd()
	if len(ctrl.connected) != 1 {
		t.Fatalf("controller received %d connects", len(ctrl.connected))
	}
	sent := ctrl.connected[0]
	if sent.Password != "secret" || sent.Username != "alice" || sent.ServerAddress != "vpn.example.com" {
		t.Errorf("sent form = %+v", sent)
	}

	m.Update(msg)
	if !strings.Contains(m.View(), "Connect request sent") {
		t.Error("view should confirm the request")
	}
}

func TestConnect_ErrorIsShown(t *testing.T) {
	m, ctrl := newTestModel()
	ctrl.connectErr = common.ErrServiceError

	m.Update(resultMsg{action: "Connect", err: ctrl.connectErr})
	if !strings.Contains(m.View(), "Connect failed") {
		t.Error("view should show the failure")
	}
}

func TestConnect_DisabledWhileConnected(t *testing.T) {
	m, _ := newTestModel()
	m.Update(statusMsg(vpn.Status{ServiceRunning: true, Connected: true}))

	if _, cmd := m.Update(key(tea.KeyEnter)); cmd != nil {
		t.Error("connect should be disabled while connected")
	}
}

func TestDisconnect(t *testing.T) {
	m, ctrl := newTestModel()

	if _, cmd := m.Update(key(tea.KeyCtrlD)); cmd != nil {
		t.Fatal("disconnect should be disabled while disconnected")
	}

	m.Update(statusMsg(vpn.Status{ServiceRunning: true, Connected: true}))
	_, cmd := m.Update(key(tea.KeyCtrlD))
	if cmd == nil {
		t.Fatal("expected a disconnect command")
	}
	if msg, ok := cmd().(resultMsg); !ok || msg.err != nil {
		t.Errorf("result = %+v", msg)
	}
	if ctrl.disconnects != 1 {
		t.Errorf("disconnects = %d, want 1", ctrl.disconnects)
	}
}

func TestRememberToggle(t *testing.T) {
	m, ctrl := newTestModel()

	m.Update(key(tea.KeyCtrlR))
	m.Update(key(tea.KeyCtrlR))

	if len(ctrl.remember) != 2 || !ctrl.remember[0] || ctrl.remember[1] {
		t.Errorf("remember calls = %v, want [true false]", ctrl.remember)
	}
}

func TestEditsSavedWhileRemembered(t *testing.T) {
	m, ctrl := newTestModel()

	typeText(m, "alice")
	if len(ctrl.saved) != 0 {
		t.Fatalf("saved %d times with remember off, want 0", len(ctrl.saved))
	}

	m.Update(key(tea.KeyCtrlR))
	m.Update(key(tea.KeyTab))
	m.Update(key(tea.KeyTab))
	typeText(m, "vpn.example.com")

	if len(ctrl.saved) == 0 {
		t.Fatal("server edit was not saved")
	}
	last := ctrl.saved[len(ctrl.saved)-1]
	if last.ServerAddress != "vpn.example.com" || last.Username != "alice" {
		t.Errorf("saved form = %q/%q, want alice/vpn.example.com", last.Username, last.ServerAddress)
	}

	m.Update(key(tea.KeyCtrlO))
	for m.focus != fieldNoDNS {
		m.Update(key(tea.KeyTab))
	}
	m.Update(key(tea.KeySpace))
	if last := ctrl.saved[len(ctrl.saved)-1]; !last.NoDNS {
		t.Error("settings toggle was not saved")
	}
}

func TestSettingsPanel(t *testing.T) {
	m, _ := newTestModel()

	if strings.Contains(m.View(), "Log level") {
		t.Error("settings should start collapsed")
	}

	m.Update(key(tea.KeyCtrlO))
	if !m.form.SettingsExpanded || !strings.Contains(m.View(), "Log level") {
		t.Fatal("ctrl+o should expand the settings")
	}

	// Walk to the log level selector and step it.
	for m.focus != fieldLogLevel {
		m.Update(key(tea.KeyTab))
	}
	m.Update(key(tea.KeyRight))
	if m.form.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", m.form.LogLevel)
	}
	m.Update(key(tea.KeyLeft))
	m.Update(key(tea.KeyLeft))
	if m.form.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", m.form.LogLevel)
	}

	m.Update(key(tea.KeyTab))
	m.Update(key(tea.KeySpace))
	if m.form.Reauth {
		t.Error("space should toggle reauthentication off")
	}

	m.Update(key(tea.KeyCtrlO))
	if m.focus != fieldUsername {
		t.Errorf("focus = %v, want username after collapsing", m.focus)
	}
}

func TestInvalidSearchDomain(t *testing.T) {
	m, ctrl := newTestModel()
	m.inputs[fieldUsername].SetValue("alice")
	m.inputs[fieldPassword].SetValue("secret")
	m.inputs[fieldServer].SetValue("vpn.example.com")
	m.inputs[fieldSearchDomains].SetValue("bad..domain")

	if _, cmd := m.Update(key(tea.KeyEnter)); cmd != nil {
		t.Fatal("invalid search domain should block the request")
	}
	if len(ctrl.connected) != 0 {
		t.Error("nothing should be sent")
	}
	if !strings.Contains(m.View(), "bad..domain") {
		t.Error("view should name the invalid domain")
	}
}

func TestStep(t *testing.T) {
	if got := step(tunnel.TunnelTypes, tunnel.TunnelTypeIPSec, 1); got != tunnel.TunnelTypeSSL {
		t.Errorf("step wrap = %v", got)
	}
	if got := step(tunnel.LoginTypes, tunnel.LoginPassword, -1); got != tunnel.LoginSsoAzure {
		t.Errorf("step back wrap = %v", got)
	}
	if got := step(tunnel.LogLevels, "bogus", 1); got != "debug" {
		t.Errorf("step unknown = %v", got)
	}
}

func TestStatusView(t *testing.T) {
	m, _ := newTestModel()

	m.Update(statusMsg(vpn.Status{}))
	view := m.View()
	if !strings.Contains(view, "Connection status: ") || !strings.Contains(view, "stopped") {
		t.Errorf("service down view = %q", view)
	}

	m.Update(statusMsg(vpn.Status{ServiceRunning: true, Connected: true, ConnectedSince: "09:00"}))
	view = m.View()
	if !strings.Contains(view, "connected") || !strings.Contains(view, "running") {
		t.Errorf("connected view = %q", view)
	}
}
