// Package ui provides the graphical user interface for the SNX client.
// This file contains the system tray indicator.
package ui

import (
	"sync"

	"fyne.io/systray"
	"github.com/diamondburned/gotk4/pkg/glib/v2"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/vpn"
)

// TrayIndicator mirrors the connection status in the system tray and
// offers quick actions without opening the window.
type TrayIndicator struct {
	app            *Application
	mu             sync.Mutex
	ready          bool
	pending        *vpn.Status
	statusItem     *systray.MenuItem
	serviceItem    *systray.MenuItem
	disconnectItem *systray.MenuItem
}

// NewTrayIndicator creates a new system tray indicator.
func NewTrayIndicator(app *Application) *TrayIndicator {
	return &TrayIndicator{app: app}
}

// Run starts the system tray indicator.
// This should be called from a goroutine as it blocks.
func (t *TrayIndicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the indicator.
func (t *TrayIndicator) Quit() {
	systray.Quit()
}

func (t *TrayIndicator) onReady() {
	systray.SetIcon(trayIcon(vpn.StateServiceDown))
	systray.SetTitle(common.AppName)
	systray.SetTooltip(common.AppName)

	t.statusItem = systray.AddMenuItem("Connection status: disconnected", "Current tunnel status")
	t.statusItem.Disable()
	t.serviceItem = systray.AddMenuItem("Service status: stopped", "Tunnel service status")
	t.serviceItem.Disable()

	systray.AddSeparator()

	showItem := systray.AddMenuItem("Show window", "Show the main window")
	go func() {
		for range showItem.ClickedCh {
			glib.IdleAdd(t.app.showWindow)
		}
	}()

	t.disconnectItem = systray.AddMenuItem("Disconnect", "Close the tunnel")
	t.disconnectItem.Disable()
	go func() {
		for range t.disconnectItem.ClickedCh {
			t.disconnect()
		}
	}()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Close "+common.AppName)
	go func() {
		for range quitItem.ClickedCh {
			glib.IdleAdd(t.app.Quit)
		}
	}()

	t.mu.Lock()
	t.ready = true
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	if pending != nil {
		t.SetStatus(*pending)
	}
}

func (t *TrayIndicator) onExit() {
	common.LogInfo("Tray indicator cleanup completed")
}

// SetStatus updates the icon, tooltip and menu. Updates that arrive
// before the tray is ready are applied once it is.
func (t *TrayIndicator) SetStatus(status vpn.Status) {
	t.mu.Lock()
	if !t.ready {
		t.pending = &status
		t.mu.Unlock()
		return
	}
	t.mu.Unlock()

	state := status.State()
	systray.SetIcon(trayIcon(state))
	systray.SetTooltip(common.AppName + " - " + state.String())

	t.statusItem.SetTitle("Connection status: " + status.ConnectionText())
	t.serviceItem.SetTitle("Service status: " + status.ServiceText())
	if status.DisconnectEnabled() {
		t.disconnectItem.Enable()
	} else {
		t.disconnectItem.Disable()
	}
}

func (t *TrayIndicator) disconnect() {
	if err := t.app.manager.Disconnect(t.app.ctx); err != nil {
		common.LogError("Tray: disconnect failed: %v", err)
		glib.IdleAdd(func() {
			if t.app.window != nil {
				t.app.window.SetMessage("Disconnect failed: " + err.Error())
			}
		})
	}
}
