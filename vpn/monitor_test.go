package vpn

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/tunnel"
)

// scriptedChecker answers with the configured response or error.
type scriptedChecker struct {
	mu    sync.Mutex
	resp  *tunnel.Response
	err   error
	calls int
}

func (c *scriptedChecker) Status(context.Context) (*tunnel.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.resp, c.err
}

func (c *scriptedChecker) set(resp *tunnel.Response, err error) {
	c.mu.Lock()
	c.resp, c.err = resp, err
	c.mu.Unlock()
}

func (c *scriptedChecker) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func connectedResponse() *tunnel.Response {
	since := "2024-05-01T12:00:00Z"
	return &tunnel.Response{
		Kind:   tunnel.ResponseConnectionStatus,
		Status: tunnel.ConnectionStatus{ConnectedSince: &since},
	}
}

func TestConnectionState_String(t *testing.T) {
	tests := []struct {
		state    ConnectionState
		expected string
	}{
		{StateServiceDown, "Service stopped"},
		{StateDisconnected, "Disconnected"},
		{StateConnecting, "Connecting..."},
		{StateConnected, "Connected"},
		{StateDisconnecting, "Disconnecting..."},
		{ConnectionState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("ConnectionState.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDefaultMonitorConfig(t *testing.T) {
	config := DefaultMonitorConfig()

	if config.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", config.PollInterval)
	}
	if config.CheckTimeout != 400*time.Millisecond {
		t.Errorf("CheckTimeout = %v, want 400ms", config.CheckTimeout)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		resp      *tunnel.Response
		err       error
		running   bool
		connected bool
		state     ConnectionState
	}{
		{"ok", &tunnel.Response{Kind: tunnel.ResponseOk}, nil, true, true, StateConnected},
		{"connected since", connectedResponse(), nil, true, true, StateConnected},
		{"not connected", &tunnel.Response{Kind: tunnel.ResponseConnectionStatus}, nil, true, false, StateDisconnected},
		{"error answer", &tunnel.Response{Kind: tunnel.ResponseError, Error: "no session"}, nil, true, false, StateDisconnected},
		{"unreachable", nil, common.ErrServiceUnavailable, false, false, StateServiceDown},
		{"garbage", nil, common.ErrInvalidResponse, false, false, StateServiceDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Check(context.Background(), &scriptedChecker{resp: tt.resp, err: tt.err})

			if status.ServiceRunning != tt.running {
				t.Errorf("ServiceRunning = %v, want %v", status.ServiceRunning, tt.running)
			}
			if status.Connected != tt.connected {
				t.Errorf("Connected = %v, want %v", status.Connected, tt.connected)
			}
			if got := status.State(); got != tt.state {
				t.Errorf("State() = %v, want %v", got, tt.state)
			}
			if tt.err != nil && !errors.Is(status.Err, tt.err) {
				t.Errorf("Err = %v, want %v", status.Err, tt.err)
			}
			if status.CheckedAt.IsZero() {
				t.Error("CheckedAt should be set")
			}
		})
	}
}

func TestStatus_Texts(t *testing.T) {
	up := Status{ServiceRunning: true, Connected: true}
	if up.ConnectionText() != "connected" || up.ServiceText() != "running" {
		t.Errorf("texts = %q %q", up.ConnectionText(), up.ServiceText())
	}
	if up.ConnectEnabled() || !up.DisconnectEnabled() {
		t.Error("connected status should only enable Disconnect")
	}

	down := Status{}
	if down.ConnectionText() != "disconnected" || down.ServiceText() != "stopped" {
		t.Errorf("texts = %q %q", down.ConnectionText(), down.ServiceText())
	}
	if !down.ConnectEnabled() || down.DisconnectEnabled() {
		t.Error("disconnected status should only enable Connect")
	}
}

func TestStatus_PendingState(t *testing.T) {
	s := Status{ServiceRunning: true, Pending: StateConnecting}
	if s.State() != StateConnecting {
		t.Errorf("State() = %v, want Connecting", s.State())
	}
	s.Pending = StateDisconnected
	if s.State() != StateDisconnected {
		t.Errorf("State() = %v, want Disconnected", s.State())
	}
}

func TestPoll_Callbacks(t *testing.T) {
	checker := &scriptedChecker{resp: &tunnel.Response{Kind: tunnel.ResponseConnectionStatus}}
	monitor := NewStatusMonitor(checker, MonitorConfig{})

	var changes []Status
	monitor.OnChange(func(old, new Status) {
		changes = append(changes, new)
	})

	ctx := context.Background()
	monitor.Poll(ctx)
	monitor.Poll(ctx)
	if len(changes) != 1 {
		t.Fatalf("callbacks after two identical polls = %d, want 1", len(changes))
	}

	checker.set(connectedResponse(), nil)
	monitor.Poll(ctx)
	if len(changes) != 2 || !changes[1].Connected {
		t.Fatalf("expected a connected change, got %+v", changes)
	}

	checker.set(nil, common.ErrServiceUnavailable)
	monitor.Poll(ctx)
	if len(changes) != 3 || changes[2].ServiceRunning {
		t.Fatalf("expected a service down change, got %+v", changes)
	}

	if !monitor.Current().CheckedAt.Equal(changes[2].CheckedAt) {
		t.Error("Current should return the last observation")
	}
}

func TestPoll_LatestWins(t *testing.T) {
	checker := &scriptedChecker{resp: &tunnel.Response{Kind: tunnel.ResponseConnectionStatus}}
	monitor := NewStatusMonitor(checker, MonitorConfig{})

	monitor.Poll(context.Background())
	checker.set(connectedResponse(), nil)
	monitor.Poll(context.Background())

	select {
	case status := <-monitor.Updates():
		if !status.Connected {
			t.Error("Updates should hold the newest observation")
		}
	default:
		t.Fatal("Updates channel is empty")
	}

	select {
	case <-monitor.Updates():
		t.Error("Updates should hold a single value")
	default:
	}
}

func TestStatusMonitor_StartStop(t *testing.T) {
	checker := &scriptedChecker{resp: &tunnel.Response{Kind: tunnel.ResponseOk}}
	monitor := NewStatusMonitor(checker, MonitorConfig{PollInterval: time.Hour})

	if monitor.IsRunning() {
		t.Error("Monitor should not be running initially")
	}

	monitor.Start(context.Background())
	if !monitor.IsRunning() {
		t.Error("Monitor should be running after Start()")
	}

	select {
	case status := <-monitor.Updates():
		if !status.Connected {
			t.Errorf("first status = %+v", status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first poll did not happen immediately")
	}

	// Starting twice is a no-op.
	monitor.Start(context.Background())

	monitor.Refresh()
	select {
	case <-monitor.Updates():
	case <-time.After(2 * time.Second):
		t.Fatal("Refresh did not trigger a poll")
	}

	monitor.Stop()
	if monitor.IsRunning() {
		t.Error("Monitor should not be running after Stop()")
	}
	if got := checker.count(); got != 2 {
		t.Errorf("checker called %d times, want 2", got)
	}

	// Stopping twice is a no-op.
	monitor.Stop()
}

func TestStatusMonitor_ContextCancel(t *testing.T) {
	checker := &scriptedChecker{resp: &tunnel.Response{Kind: tunnel.ResponseOk}}
	monitor := NewStatusMonitor(checker, MonitorConfig{PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	monitor.Start(ctx)
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for monitor.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("monitor kept running after context cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStatusMonitor_UpdateConfig(t *testing.T) {
	monitor := NewStatusMonitor(&scriptedChecker{}, MonitorConfig{})

	monitor.UpdateConfig(MonitorConfig{PollInterval: time.Minute})
	if got := monitor.pollInterval(); got != time.Minute {
		t.Errorf("pollInterval = %v, want 1m", got)
	}

	// Zero values keep the current settings.
	monitor.UpdateConfig(MonitorConfig{})
	if got := monitor.pollInterval(); got != time.Minute {
		t.Errorf("pollInterval = %v, want 1m", got)
	}
}
