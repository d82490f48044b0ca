// Package common provides shared constants, types, and utilities
// used across the SNX client.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application.
	AppID = "io.github.snxgui"
	// AppName is the display name of the application.
	AppName = "SNX Client"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "snx-gui"
)

// File names used by the application.
const (
	PreferencesFileName = "config.yaml"
	UserConfigFileName  = "user-config.json"
	HistoryFileName     = "history.db"
	LogFileName         = "snx-gui.log"
)

// Tunnel service defaults.
const (
	// DefaultServiceAddress is where the tunnel service listens.
	DefaultServiceAddress = "127.0.0.1:7779"
	// ClientBindAddress is the local address requests are sent from.
	// Port 0 asks the kernel for an ephemeral port.
	ClientBindAddress = "127.0.0.1:0"
	// MaxPacketSize is the receive buffer size for service responses.
	MaxPacketSize = 1_000_000
)

// Default timeouts and intervals.
const (
	// RequestTimeout bounds each socket read and write.
	RequestTimeout = 200 * time.Millisecond
	// StatusPollInterval is how often the service status is queried.
	StatusPollInterval = 5 * time.Second
	// HistoryRetention is how long history events are kept.
	HistoryRetention = 30 * 24 * time.Hour
)

// UI constants.
const (
	DefaultWindowWidth  = 600
	DefaultWindowHeight = 600
	DialogMargin        = 24
	TrayIconSize        = 22
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)
