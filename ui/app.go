package ui

import (
	"context"
	"os"
	"path/filepath"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/config"
	"github.com/yllada/snx-gui/history"
	"github.com/yllada/snx-gui/notify"
	"github.com/yllada/snx-gui/vpn"
)

// Application represents the main application
type Application struct {
	app      *adw.Application
	window   *MainWindow
	manager  *vpn.Manager
	config   *config.Config
	notifier *notify.Desktop
	history  *history.Store
	version  string
	tray     *TrayIndicator

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication creates the GTK application. store may be nil when the
// history is disabled.
func NewApplication(cfg *config.Config, manager *vpn.Manager, notifier *notify.Desktop, store *history.Store, version string) *Application {
	app := adw.NewApplication(common.AppID, gio.ApplicationFlagsNone)

	ctx, cancel := context.WithCancel(context.Background())
	application := &Application{
		app:      app,
		manager:  manager,
		config:   cfg,
		notifier: notifier,
		history:  store,
		version:  version,
		ctx:      ctx,
		cancel:   cancel,
	}

	app.ConnectActivate(application.onActivate)
	app.ConnectShutdown(application.onShutdown)

	return application
}

// Run runs the application
func (a *Application) Run(args []string) int {
	return a.app.Run(args)
}

// onActivate is called when the application is activated
func (a *Application) onActivate() {
	if a.window != nil {
		a.showWindow()
		return
	}

	a.ApplyTheme(a.config.Theme)
	a.setupAppIcon()
	LoadStyles()

	a.window = NewMainWindow(a)
	a.window.Show()

	a.tray = NewTrayIndicator(a)
	go a.tray.Run()

	a.manager.Start(a.ctx)
	go a.forwardStatus()
}

func (a *Application) onShutdown() {
	a.cancel()
	a.manager.Stop()
	if a.tray != nil {
		a.tray.Quit()
	}
	common.LogInfo("Application shut down")
}

// forwardStatus hands every monitor observation to the GTK main loop.
func (a *Application) forwardStatus() {
	updates := a.manager.Monitor().Updates()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-updates:
			// Pending state lives in the manager, so read the merged view.
			status := a.manager.Status()
			glib.IdleAdd(func() {
				if a.window != nil {
					a.window.updateStatus(status)
				}
			})
			if a.tray != nil {
				a.tray.SetStatus(status)
			}
		}
	}
}

// setupAppIcon sets up the application icon
func (a *Application) setupAppIcon() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	iconTheme := gtk.IconThemeGetForDisplay(display)
	if iconTheme == nil {
		return
	}

	if execPath, err := os.Executable(); err == nil {
		iconTheme.AddSearchPath(filepath.Join(filepath.Dir(execPath), "assets", "icons"))
	}

	gtk.WindowSetDefaultIconName("network-vpn")
}

// ApplyTheme applies the specified theme to the application.
// Supported values: "auto" (system default), "light", "dark"
func (a *Application) ApplyTheme(theme string) {
	manager := adw.StyleManagerGetDefault()
	if manager == nil {
		return
	}

	switch theme {
	case common.ThemeLight:
		manager.SetColorScheme(adw.ColorSchemeForceLight)
	case common.ThemeDark:
		manager.SetColorScheme(adw.ColorSchemeForceDark)
	default:
		manager.SetColorScheme(adw.ColorSchemeDefault)
	}
}

// showWindow shows the main window
func (a *Application) showWindow() {
	if a.window != nil {
		a.window.window.Present()
	}
}

// Quit closes the application
func (a *Application) Quit() {
	a.app.Quit()
}

// QuitFromSignal closes the application from outside the GTK main loop.
func (a *Application) QuitFromSignal() {
	glib.IdleAdd(a.Quit)
}
