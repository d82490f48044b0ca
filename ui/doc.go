// Package ui provides the graphical user interface for the SNX client.
//
// The window shows the login form (username, password, server address),
// a settings panel revealed from the header bar with every tunnel
// parameter, and the connection and service status labels. A tray
// indicator mirrors the status and offers Show window, Disconnect and
// Quit.
//
// # Architecture
//
//   - Application: GTK/libadwaita lifecycle, theme, status forwarding
//   - MainWindow: login form, status labels and menu actions
//   - SettingsPanel: tunnel parameters bound to the shared form
//   - PreferencesDialog: application preferences (YAML config)
//   - HistoryDialog: recent connection events
//   - TrayIndicator: system tray integration for background operation
//
// # Thread Safety
//
// GTK operations must execute on the main thread. Status observations
// arrive on the monitor goroutine and requests run on their own
// goroutines; both hand results back with glib.IdleAdd.
package ui
