// Package vpn provides tunnel service management for the SNX client.
// This file contains the StatusMonitor, which polls the service on a fixed
// interval and publishes what it sees.
package vpn

import (
	"context"
	"sync"
	"time"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/tunnel"
)

// StatusChecker asks the tunnel service for its status.
type StatusChecker interface {
	Status(ctx context.Context) (*tunnel.Response, error)
}

// MonitorConfig holds configuration for the status monitor.
type MonitorConfig struct {
	// PollInterval is how often the service is queried.
	PollInterval time.Duration
	// CheckTimeout bounds a single query, including socket setup.
	CheckTimeout time.Duration
}

// DefaultMonitorConfig returns the polling defaults.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		PollInterval: common.StatusPollInterval,
		CheckTimeout: 2 * common.RequestTimeout,
	}
}

// StatusMonitor polls the tunnel service. Failures mark the service down
// until the next poll; there is no immediate retry.
type StatusMonitor struct {
	mu       sync.RWMutex
	config   MonitorConfig
	checker  StatusChecker
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	refresh  chan struct{}
	updates  chan Status
	current  Status
	onChange []func(old, new Status)
}

// NewStatusMonitor creates a monitor that queries checker.
func NewStatusMonitor(checker StatusChecker, config MonitorConfig) *StatusMonitor {
	defaults := DefaultMonitorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.CheckTimeout <= 0 {
		config.CheckTimeout = defaults.CheckTimeout
	}
	return &StatusMonitor{
		config:  config,
		checker: checker,
		refresh: make(chan struct{}, 1),
		updates: make(chan Status, 1),
	}
}

// OnChange registers a callback for changes in service availability or
// connection state. Callbacks run on the polling goroutine.
func (m *StatusMonitor) OnChange(callback func(old, new Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, callback)
}

// Updates delivers every observation. The channel holds only the latest
// one; a slow reader skips stale values.
func (m *StatusMonitor) Updates() <-chan Status {
	return m.updates
}

// Current returns the latest observation.
func (m *StatusMonitor) Current() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Start begins polling until ctx is cancelled or Stop is called.
// The first poll happens immediately.
func (m *StatusMonitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	common.LogInfo("Status monitor started (interval: %v)", m.config.PollInterval)

	go m.runLoop(ctx, done)
}

// Stop stops polling and waits for the loop to exit.
func (m *StatusMonitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.cancel()
	done := m.done
	m.mu.Unlock()

	<-done
}

// IsRunning returns whether the monitor is currently polling.
func (m *StatusMonitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Refresh asks the running loop to poll now instead of waiting for the
// next tick.
func (m *StatusMonitor) Refresh() {
	select {
	case m.refresh <- struct{}{}:
	default:
	}
}

// UpdateConfig changes the poll interval used from the next tick on.
func (m *StatusMonitor) UpdateConfig(config MonitorConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if config.PollInterval > 0 {
		m.config.PollInterval = config.PollInterval
	}
	if config.CheckTimeout > 0 {
		m.config.CheckTimeout = config.CheckTimeout
	}
}

func (m *StatusMonitor) runLoop(ctx context.Context, done chan struct{}) {
	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		close(done)
		common.LogInfo("Status monitor stopped")
	}()

	m.Poll(ctx)

	interval := m.pollInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.refresh:
			m.Poll(ctx)
		case <-ticker.C:
			m.Poll(ctx)
			common.GetLogger().CheckRotation()
			if next := m.pollInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

func (m *StatusMonitor) pollInterval() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.PollInterval
}

// Poll queries the service once, records and publishes the result.
func (m *StatusMonitor) Poll(ctx context.Context) Status {
	m.mu.RLock()
	timeout := m.config.CheckTimeout
	m.mu.RUnlock()

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	status := Check(checkCtx, m.checker)
	cancel()

	if ctx.Err() != nil {
		return status
	}

	m.mu.Lock()
	old := m.current
	m.current = status
	callbacks := append([]func(old, new Status){}, m.onChange...)
	m.mu.Unlock()

	m.publish(status)

	if old.CheckedAt.IsZero() || !old.sameObservation(status) {
		if !old.CheckedAt.IsZero() {
			common.LogInfo("Status changed: %s -> %s", old.State(), status.State())
		}
		for _, cb := range callbacks {
			cb(old, status)
		}
	}
	return status
}

func (m *StatusMonitor) publish(status Status) {
	for {
		select {
		case m.updates <- status:
			return
		default:
		}
		// Drop the stale value nobody read yet.
		select {
		case <-m.updates:
		default:
		}
	}
}

// Check performs a single status query and maps the answer.
func Check(ctx context.Context, checker StatusChecker) Status {
	status := Status{CheckedAt: time.Now()}

	resp, err := checker.Status(ctx)
	if err != nil {
		common.LogError("error %v", err)
		status.Err = err
		return status
	}

	status.ServiceRunning = true
	status.Connected = resp.Connected()
	status.ConnectedSince = resp.ConnectedSince()
	if resp.Kind == tunnel.ResponseError {
		common.LogError("Connection status: Error %q", resp.Error)
		status.ServiceError = resp.Error
	}
	return status
}
