// Package tui renders the login and settings form in a terminal using
// Bubble Tea. It shares the form, manager and status monitor with the
// GTK window.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/form"
	"github.com/yllada/snx-gui/tunnel"
	"github.com/yllada/snx-gui/vpn"
)

// Controller performs the requests behind the form.
type Controller interface {
	Connect(ctx context.Context, f *form.Form) (*tunnel.Response, error)
	Disconnect(ctx context.Context) error
	SetRememberMe(f *form.Form, remember bool) error
	SaveForm(f *form.Form) error
	Status() vpn.Status
}

type field int

const (
	fieldUsername field = iota
	fieldPassword
	fieldServer
	fieldRemember
	fieldLogLevel
	fieldReauth
	fieldSearchDomains
	fieldDefaultRoute
	fieldNoRouting
	fieldNoDNS
	fieldNoCertCheck
	fieldTunnelType
	fieldCACert
	fieldLoginType
)

var loginFields = []field{fieldUsername, fieldPassword, fieldServer, fieldRemember}

var settingsFields = []field{
	fieldLogLevel, fieldReauth, fieldSearchDomains, fieldDefaultRoute,
	fieldNoRouting, fieldNoDNS, fieldNoCertCheck, fieldTunnelType,
	fieldCACert, fieldLoginType,
}

var fieldLabels = map[field]string{
	fieldUsername:      "Username",
	fieldPassword:      "Password",
	fieldServer:        "Server address",
	fieldRemember:      "Remember configuration",
	fieldLogLevel:      "Log level",
	fieldReauth:        "Reauthentication",
	fieldSearchDomains: "Search domains",
	fieldDefaultRoute:  "Default route",
	fieldNoRouting:     "No routing",
	fieldNoDNS:         "No DNS",
	fieldNoCertCheck:   "No cert check",
	fieldTunnelType:    "Tunnel type",
	fieldCACert:        "CA certificate",
	fieldLoginType:     "Login type",
}

// statusMsg carries a monitor observation.
type statusMsg vpn.Status

// resultMsg reports the outcome of a Connect or Disconnect request.
type resultMsg struct {
	action string
	err    error
}

// Model is the Bubble Tea model for the terminal client.
type Model struct {
	ctrl    Controller
	form    *form.Form
	updates <-chan vpn.Status

	inputs      map[field]*textinput.Model
	focus       field
	status      vpn.Status
	settingsErr string
	message     string
	width       int
}

// NewModel creates the model. updates may be nil, in which case the
// status shown is only refreshed after requests.
func NewModel(ctrl Controller, f *form.Form, updates <-chan vpn.Status) *Model {
	m := &Model{
		ctrl:    ctrl,
		form:    f,
		updates: updates,
		inputs:  make(map[field]*textinput.Model),
		status:  ctrl.Status(),
	}

	m.inputs[fieldUsername] = newInput("user", f.Username)
	password := newInput("password", "")
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	m.inputs[fieldPassword] = password
	m.inputs[fieldServer] = newInput("vpn.example.com", f.ServerAddress)
	m.inputs[fieldSearchDomains] = newInput("corp.example.com, example.net", f.SearchDomains)
	m.inputs[fieldCACert] = newInput("/path/to/ca.pem", f.CACertPath)

	m.setFocus(fieldUsername)
	return m
}

func newInput(placeholder, value string) *textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.Width = 40
	in.SetValue(value)
	return &in
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForStatus())
}

func (m *Model) waitForStatus() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	ch := m.updates
	return func() tea.Msg {
		status, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg(status)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case statusMsg:
		m.status = vpn.Status(msg)
		return m, m.waitForStatus()

	case resultMsg:
		m.status = m.ctrl.Status()
		if msg.err != nil {
			m.message = errorStyle.Render(fmt.Sprintf("%s failed: %v", msg.action, msg.err))
		} else {
			m.message = msg.action + " request sent"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, m.updateInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter", "ctrl+s":
		return m, m.connect()
	case "ctrl+d":
		return m, m.disconnect()
	case "ctrl+r":
		m.toggleRemember()
		return m, nil
	case "ctrl+o":
		m.form.ToggleSettings()
		if !m.form.SettingsExpanded && !slices.Contains(loginFields, m.focus) {
			m.setFocus(fieldUsername)
		}
		return m, nil
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	case " ", "right":
		if m.cycle(1) {
			m.persist()
			return m, nil
		}
	case "left":
		if m.cycle(-1) {
			m.persist()
			return m, nil
		}
	}
	return m, m.updateInput(msg)
}

func (m *Model) updateInput(msg tea.Msg) tea.Cmd {
	in, ok := m.inputs[m.focus]
	if !ok {
		return nil
	}
	before := in.Value()
	updated, cmd := in.Update(msg)
	*in = updated
	if in.Value() != before {
		m.persist()
	}
	return cmd
}

// persist writes the form to the user config while remember-me is on.
func (m *Model) persist() {
	if !m.form.RememberMe {
		return
	}
	m.syncForm()
	if err := m.ctrl.SaveForm(m.form); err != nil {
		m.message = errorStyle.Render(err.Error())
	}
}

func (m *Model) visibleFields() []field {
	if !m.form.SettingsExpanded {
		return loginFields
	}
	return append(slices.Clone(loginFields), settingsFields...)
}

func (m *Model) moveFocus(delta int) {
	fields := m.visibleFields()
	i := slices.Index(fields, m.focus)
	i = (i + delta + len(fields)) % len(fields)
	m.setFocus(fields[i])
}

func (m *Model) setFocus(f field) {
	for id, in := range m.inputs {
		if id == f {
			in.Focus()
		} else {
			in.Blur()
		}
	}
	m.focus = f
}

// cycle toggles or steps the focused non-text field. It reports whether
// the key was consumed.
func (m *Model) cycle(delta int) bool {
	f := m.form
	switch m.focus {
	case fieldRemember:
		m.toggleRemember()
	case fieldReauth:
		f.Reauth = !f.Reauth
	case fieldDefaultRoute:
		f.DefaultRoute = !f.DefaultRoute
	case fieldNoRouting:
		f.NoRouting = !f.NoRouting
	case fieldNoDNS:
		f.NoDNS = !f.NoDNS
	case fieldNoCertCheck:
		f.NoCertCheck = !f.NoCertCheck
	case fieldLogLevel:
		f.LogLevel = step(tunnel.LogLevels, f.LogLevel, delta)
	case fieldTunnelType:
		f.TunnelType = step(tunnel.TunnelTypes, f.TunnelType, delta)
	case fieldLoginType:
		f.LoginType = step(tunnel.LoginTypes, f.LoginType, delta)
	default:
		return false
	}
	return true
}

func step[T comparable](choices []T, current T, delta int) T {
	i := slices.Index(choices, current)
	if i < 0 {
		return choices[0]
	}
	return choices[(i+delta+len(choices))%len(choices)]
}

// syncForm copies the text inputs into the form.
func (m *Model) syncForm() {
	m.form.Username = m.inputs[fieldUsername].Value()
	m.form.Password = m.inputs[fieldPassword].Value()
	m.form.ServerAddress = m.inputs[fieldServer].Value()
	m.form.SearchDomains = m.inputs[fieldSearchDomains].Value()
	m.form.CACertPath = m.inputs[fieldCACert].Value()
}

func (m *Model) toggleRemember() {
	m.syncForm()
	if err := m.ctrl.SetRememberMe(m.form, !m.form.RememberMe); err != nil {
		m.message = errorStyle.Render(err.Error())
	}
}

// connect validates the form and, if it is complete, returns the command
// that sends the request. The password field is cleared right away.
func (m *Model) connect() tea.Cmd {
	m.message = ""
	if !m.status.ConnectEnabled() {
		return nil
	}

	m.syncForm()
	m.settingsErr = ""
	if !m.form.Validate() {
		return nil
	}
	if err := m.form.ValidateSettings(); err != nil {
		m.settingsErr = "Error: " + err.Error()
		return nil
	}

	submit := *m.form
	m.form.Password = ""
	m.form.SettingsExpanded = false
	m.inputs[fieldPassword].SetValue("")
	if !slices.Contains(loginFields, m.focus) {
		m.setFocus(fieldUsername)
	}
	m.status.Pending = vpn.StateConnecting

	ctrl := m.ctrl
	return func() tea.Msg {
		_, err := ctrl.Connect(context.Background(), &submit)
		return resultMsg{action: "Connect", err: err}
	}
}

func (m *Model) disconnect() tea.Cmd {
	m.message = ""
	if !m.status.DisconnectEnabled() {
		return nil
	}
	m.status.Pending = vpn.StateDisconnecting

	ctrl := m.ctrl
	return func() tea.Msg {
		return resultMsg{action: "Disconnect", err: ctrl.Disconnect(context.Background())}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(common.AppName))
	b.WriteString("\n")

	for _, f := range loginFields {
		b.WriteString(m.renderField(f))
		b.WriteString("\n")
		if msg := m.missingMessage(f); msg != "" {
			b.WriteString(errorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	arrow := "▸"
	if m.form.SettingsExpanded {
		arrow = "▾"
	}
	b.WriteString(sectionStyle.Render(arrow + " Settings (ctrl+o)"))
	b.WriteString("\n")
	if m.form.SettingsExpanded {
		var s strings.Builder
		for i, f := range settingsFields {
			if i > 0 {
				s.WriteString("\n")
			}
			s.WriteString(m.renderField(f))
		}
		b.WriteString(settingsStyle.Render(s.String()))
		b.WriteString("\n")
	}

	if m.settingsErr != "" {
		b.WriteString(errorStyle.Render(m.settingsErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	if m.message != "" {
		b.WriteString("\n")
		b.WriteString(m.message)
	}

	b.WriteString(helpStyle.Render(
		"enter connect • ctrl+d disconnect • ctrl+r remember • ctrl+o settings • tab move • space toggle • esc quit"))
	return b.String()
}

func (m *Model) missingMessage(f field) string {
	switch {
	case f == fieldUsername && m.form.Missing.Username:
		return form.MsgUsernameRequired
	case f == fieldPassword && m.form.Missing.Password:
		return form.MsgPasswordRequired
	case f == fieldServer && m.form.Missing.ServerAddress:
		return form.MsgServerAddressRequired
	}
	return ""
}

func (m *Model) renderField(f field) string {
	style := labelStyle
	if f == m.focus {
		style = focusedLabelStyle
	}
	label := style.Render(fieldLabels[f])

	if in, ok := m.inputs[f]; ok {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, in.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, label, m.fieldValue(f))
}

func (m *Model) fieldValue(f field) string {
	fm := m.form
	switch f {
	case fieldRemember:
		return checkbox(fm.RememberMe)
	case fieldReauth:
		return checkbox(fm.Reauth)
	case fieldDefaultRoute:
		return checkbox(fm.DefaultRoute)
	case fieldNoRouting:
		return checkbox(fm.NoRouting)
	case fieldNoDNS:
		return checkbox(fm.NoDNS)
	case fieldNoCertCheck:
		return checkbox(fm.NoCertCheck)
	case fieldLogLevel:
		return "< " + fm.LogLevel + " >"
	case fieldTunnelType:
		return "< " + fm.TunnelType.String() + " >"
	case fieldLoginType:
		return "< " + fm.LoginType.String() + " >"
	}
	return ""
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m *Model) renderStatus() string {
	s := m.status

	var conn string
	switch s.State() {
	case vpn.StateConnecting, vpn.StateDisconnecting:
		conn = pendingStyle.Render(strings.ToLower(strings.TrimSuffix(s.State().String(), "...")) + "...")
	case vpn.StateConnected:
		conn = connectedStyle.Render(s.ConnectionText())
	default:
		conn = disconnectedStyle.Render(s.ConnectionText())
	}

	svc := connectedStyle.Render(s.ServiceText())
	if !s.ServiceRunning {
		svc = stoppedStyle.Render(s.ServiceText())
	}

	line := "Connection status: " + conn + "\nService status: " + svc
	if s.ConnectedSince != "" && s.Connected {
		line += "\nConnected since: " + s.ConnectedSince
	}
	if s.ServiceError != "" {
		line += "\n" + errorStyle.Render("Service error: "+s.ServiceError)
	}
	return line
}
