package vpn

import (
	"time"
)

// ConnectionState summarizes what the front-ends should display.
type ConnectionState int

const (
	// StateServiceDown means the tunnel service did not answer.
	StateServiceDown ConnectionState = iota
	// StateDisconnected means the service runs but no tunnel is up.
	StateDisconnected
	// StateConnecting means a Connect request was sent and not yet confirmed.
	StateConnecting
	// StateConnected means the service reports an active tunnel.
	StateConnected
	// StateDisconnecting means a Disconnect request was sent and not yet confirmed.
	StateDisconnecting
)

// String returns a human-readable representation of the state.
func (s ConnectionState) String() string {
	switch s {
	case StateServiceDown:
		return "Service stopped"
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting..."
	case StateConnected:
		return "Connected"
	case StateDisconnecting:
		return "Disconnecting..."
	default:
		return "Unknown"
	}
}

// Status is one observation of the tunnel service.
type Status struct {
	// ServiceRunning is false when the service did not answer or answered
	// with something undecodable.
	ServiceRunning bool
	// Connected reports an active tunnel.
	Connected bool
	// ConnectedSince is the service-reported start time, if any.
	ConnectedSince string
	// ServiceError is the message of an Error answer.
	ServiceError string
	// CheckedAt is when the observation was made.
	CheckedAt time.Time
	// Err is the transport or decode failure that marked the service down.
	Err error
	// Pending is set by the manager between a request and its confirmation.
	Pending ConnectionState
}

// State derives the display state.
func (s Status) State() ConnectionState {
	if s.Pending == StateConnecting || s.Pending == StateDisconnecting {
		return s.Pending
	}
	switch {
	case !s.ServiceRunning:
		return StateServiceDown
	case s.Connected:
		return StateConnected
	default:
		return StateDisconnected
	}
}

// ConnectionText is "connected" or "disconnected".
func (s Status) ConnectionText() string {
	if s.Connected {
		return "connected"
	}
	return "disconnected"
}

// ServiceText is "running" or "stopped".
func (s Status) ServiceText() string {
	if s.ServiceRunning {
		return "running"
	}
	return "stopped"
}

// ConnectEnabled reports whether the Connect action is available.
func (s Status) ConnectEnabled() bool {
	return !s.Connected
}

// DisconnectEnabled reports whether the Disconnect action is available.
func (s Status) DisconnectEnabled() bool {
	return s.Connected
}

// sameObservation compares the parts of a status that matter to listeners.
func (s Status) sameObservation(o Status) bool {
	return s.ServiceRunning == o.ServiceRunning && s.Connected == o.Connected
}
