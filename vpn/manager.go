// Package vpn provides tunnel service management for the SNX client.
// This file contains the Manager type which ties the service client, the
// status monitor, the remembered configuration and the event history
// together for the front-ends.
package vpn

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/config"
	"github.com/yllada/snx-gui/form"
	"github.com/yllada/snx-gui/history"
	"github.com/yllada/snx-gui/notify"
	"github.com/yllada/snx-gui/tunnel"
)

// Service is the subset of the tunnel client the manager uses.
type Service interface {
	StatusChecker
	Connect(ctx context.Context, params tunnel.TunnelParams) (*tunnel.Response, error)
	Disconnect(ctx context.Context) error
}

// EventRecorder stores connection events.
type EventRecorder interface {
	Record(ctx context.Context, event history.Event) error
}

// Notifier sends desktop notifications.
type Notifier interface {
	Notify(title, message string) error
}

// Manager orchestrates requests to the tunnel service.
type Manager struct {
	service        Service
	monitor        *StatusMonitor
	userConfigPath string
	recorder       EventRecorder
	notifier       Notifier

	mu      sync.Mutex
	pending ConnectionState
	server  string
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRecorder stores connection events in r.
func WithRecorder(r EventRecorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithNotifier sends status change notifications through n.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithService replaces the UDP client, mainly for tests.
func WithService(s Service) Option {
	return func(m *Manager) { m.service = s }
}

// NewManager creates a manager from the application preferences.
func NewManager(cfg *config.Config, opts ...Option) *Manager {
	m := &Manager{
		service: tunnel.NewClient(cfg.ServiceAddress,
			tunnel.WithTimeout(cfg.RequestTimeout)),
		userConfigPath: cfg.ResolvedUserConfigPath(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.monitor = NewStatusMonitor(m.service, MonitorConfig{
		PollInterval: cfg.PollInterval,
		CheckTimeout: 2 * cfg.RequestTimeout,
	})
	m.monitor.OnChange(m.onStatusChange)
	return m
}

// Monitor returns the status monitor.
func (m *Manager) Monitor() *StatusMonitor {
	return m.monitor
}

// Start begins status polling.
func (m *Manager) Start(ctx context.Context) {
	m.monitor.Start(ctx)
}

// Stop ends status polling.
func (m *Manager) Stop() {
	m.monitor.Stop()
}

// Status returns the latest observation, including any pending request.
func (m *Manager) Status() Status {
	status := m.monitor.Current()
	m.mu.Lock()
	status.Pending = m.pending
	m.mu.Unlock()
	return status
}

// CheckNow queries the service once without waiting for the monitor.
func (m *Manager) CheckNow(ctx context.Context) Status {
	return Check(ctx, m.service)
}

// LoadForm builds a form from the remembered configuration. A malformed
// file is logged and replaced by defaults.
func (m *Manager) LoadForm() *form.Form {
	cfg, err := config.LoadUserConfig(m.userConfigPath)
	if err != nil {
		common.LogWarn("Using default configuration: %v", err)
	}
	return form.NewFromUserConfig(cfg)
}

// SaveForm persists the form when remember-me is on. It does nothing
// otherwise.
func (m *Manager) SaveForm(f *form.Form) error {
	if !f.RememberMe {
		return nil
	}
	return config.SaveUserConfig(m.userConfigPath, f.UserConfig())
}

// SetRememberMe updates the remember-me flag and writes the file right
// away. Turning it off resets the stored configuration to defaults.
func (m *Manager) SetRememberMe(f *form.Form, remember bool) error {
	f.RememberMe = remember
	err := config.SaveUserConfig(m.userConfigPath, f.UserConfig())
	if err != nil {
		common.LogError("Error: %v", err)
	}
	return err
}

// UserConfigPath returns where the remembered configuration is stored.
func (m *Manager) UserConfigPath() string {
	return m.userConfigPath
}

// Connect validates f and sends a Connect request. Incomplete forms send
// nothing and return an error wrapping common.ErrMissingCredentials.
func (m *Manager) Connect(ctx context.Context, f *form.Form) (*tunnel.Response, error) {
	if m.Status().Connected {
		return nil, common.ErrAlreadyConnected
	}

	server := f.Params().ServerName
	m.setPending(StateConnecting, server)
	defer m.clearPending()

	resp, err := f.SubmitConnect(ctx, m.service)
	if errors.Is(err, common.ErrMissingCredentials) || errors.Is(err, common.ErrInvalidSearchDomain) {
		return nil, err
	}

	m.record(ctx, history.KindConnectRequested, server, "")
	if saveErr := m.SaveForm(f); saveErr != nil {
		common.LogError("Saving config result: %v", saveErr)
	}
	m.monitor.Refresh()

	if err != nil {
		m.record(ctx, history.KindError, server, err.Error())
		m.notify(notify.TitleError, fmt.Sprintf("%s: %v", server, err))
		return resp, err
	}
	return resp, nil
}

// Disconnect asks the service to close the tunnel.
func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	server := m.server
	m.mu.Unlock()
	m.setPending(StateDisconnecting, server)
	defer m.clearPending()

	err := m.service.Disconnect(ctx)
	m.record(ctx, history.KindDisconnectRequested, server, "")
	m.monitor.Refresh()
	if err != nil {
		m.record(ctx, history.KindError, server, err.Error())
		return err
	}
	return nil
}

func (m *Manager) setPending(state ConnectionState, server string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = state
	if server != "" {
		m.server = server
	}
}

func (m *Manager) clearPending() {
	m.mu.Lock()
	m.pending = StateDisconnected
	m.mu.Unlock()
}

// onStatusChange records and reports transitions.
func (m *Manager) onStatusChange(old, new Status) {
	m.mu.Lock()
	server := m.server
	m.mu.Unlock()

	ctx := context.Background()
	initial := old.CheckedAt.IsZero()

	if old.ServiceRunning != new.ServiceRunning {
		if new.ServiceRunning {
			m.record(ctx, history.KindServiceUp, server, "")
		} else {
			detail := ""
			if new.Err != nil {
				detail = new.Err.Error()
			}
			m.record(ctx, history.KindServiceDown, server, detail)
			if !initial {
				m.notify(notify.TitleServiceDown, "The tunnel service is not responding")
			}
		}
	}

	if old.Connected != new.Connected {
		if new.Connected {
			m.record(ctx, history.KindConnected, server, new.ConnectedSince)
			m.notify(notify.TitleConnected, connectedMessage(server))
		} else if !initial {
			m.record(ctx, history.KindDisconnected, server, new.ServiceError)
			m.notify(notify.TitleDisconnected, "The tunnel was closed")
		}
	}
}

func connectedMessage(server string) string {
	if server == "" {
		return "Tunnel is up"
	}
	return "Connected to " + server
}

func (m *Manager) record(ctx context.Context, kind history.Kind, server, detail string) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(ctx, history.NewEvent(kind, server, detail)); err != nil {
		common.LogWarn("Could not record %s event: %v", kind, err)
	}
}

func (m *Manager) notify(title, message string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(title, message); err != nil {
		common.LogWarn("Could not show notification: %v", err)
	}
}
