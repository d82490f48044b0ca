// Package ui provides the graphical user interface for the SNX client.
// This file contains the PreferencesDialog for application settings.
package ui

import (
	"time"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/config"
	"github.com/yllada/snx-gui/vpn"
)

// PreferencesDialog represents the preferences dialog.
type PreferencesDialog struct {
	window         *gtk.Window
	mainWindow     *MainWindow
	config         *config.Config
	serviceEntry   *gtk.Entry
	pollSpin       *gtk.SpinButton
	minimizeSwitch *gtk.Switch
	notifySwitch   *gtk.Switch
	historySwitch  *gtk.Switch
	themeDropDown  *gtk.DropDown
	themeIDs       []string
}

// NewPreferencesDialog creates a new preferences dialog.
func NewPreferencesDialog(mainWindow *MainWindow) *PreferencesDialog {
	pd := &PreferencesDialog{
		mainWindow: mainWindow,
		config:     mainWindow.app.config,
		themeIDs:   []string{common.ThemeAuto, common.ThemeLight, common.ThemeDark},
	}

	pd.build()
	return pd
}

func (pd *PreferencesDialog) build() {
	pd.window = gtk.NewWindow()
	pd.window.SetTitle("Preferences")
	pd.window.SetTransientFor(&pd.mainWindow.window.Window)
	pd.window.SetModal(true)
	pd.window.SetDefaultSize(500, 560)
	pd.window.SetResizable(false)

	rootBox := gtk.NewBox(gtk.OrientationVertical, 0)

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 20)
	mainBox.SetMarginTop(24)
	mainBox.SetMarginBottom(16)
	mainBox.SetMarginStart(24)
	mainBox.SetMarginEnd(24)

	// Service
	serviceSection := createSection("Tunnel service", "network-server-symbolic")
	serviceCard := createCard()

	pd.serviceEntry = gtk.NewEntry()
	pd.serviceEntry.SetText(pd.config.ServiceAddress)
	pd.serviceEntry.SetVAlign(gtk.AlignCenter)
	serviceCard.Append(createSettingRow(
		"Service address",
		"UDP address of the local tunnel service (applies after restart)",
		pd.serviceEntry,
	))
	serviceCard.Append(createSeparator())

	pd.pollSpin = gtk.NewSpinButtonWithRange(1, 300, 1)
	pd.pollSpin.SetValue(pd.config.PollInterval.Seconds())
	pd.pollSpin.SetVAlign(gtk.AlignCenter)
	serviceCard.Append(createSettingRow(
		"Status interval",
		"Seconds between status checks",
		pd.pollSpin,
	))

	serviceSection.Append(serviceCard)
	mainBox.Append(serviceSection)

	// Behaviour
	behaviourSection := createSection("Behaviour", "system-run-symbolic")
	behaviourCard := createCard()

	pd.minimizeSwitch = newSwitch()
	pd.minimizeSwitch.SetActive(pd.config.MinimizeToTray)
	behaviourCard.Append(createSettingRow(
		"Minimize to Tray",
		"Keep running in system tray when window is closed",
		pd.minimizeSwitch,
	))
	behaviourCard.Append(createSeparator())

	pd.notifySwitch = newSwitch()
	pd.notifySwitch.SetActive(pd.config.ShowNotifications)
	behaviourCard.Append(createSettingRow(
		"Connection Alerts",
		"Show notifications when the tunnel goes up or down",
		pd.notifySwitch,
	))
	behaviourCard.Append(createSeparator())

	pd.historySwitch = newSwitch()
	pd.historySwitch.SetActive(pd.config.HistoryEnabled)
	behaviourCard.Append(createSettingRow(
		"Connection History",
		"Record connection events (applies after restart)",
		pd.historySwitch,
	))

	behaviourSection.Append(behaviourCard)
	mainBox.Append(behaviourSection)

	// Appearance
	appearSection := createSection("Appearance", "preferences-desktop-theme-symbolic")
	appearCard := createCard()

	pd.themeDropDown = newDropDown([]string{"System Default", "Light", "Dark"})
	pd.themeDropDown.SetSelected(indexOf(pd.themeIDs, pd.config.Theme))
	appearCard.Append(createSettingRow(
		"Theme",
		"Choose the visual appearance of the application",
		pd.themeDropDown,
	))

	appearSection.Append(appearCard)
	mainBox.Append(appearSection)

	scrolled.SetChild(mainBox)
	rootBox.Append(scrolled)

	buttonBar := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBar.SetHAlign(gtk.AlignEnd)
	buttonBar.SetMarginTop(16)
	buttonBar.SetMarginBottom(20)
	buttonBar.SetMarginStart(24)
	buttonBar.SetMarginEnd(24)

	cancelBtn := gtk.NewButtonWithLabel("Cancel")
	cancelBtn.ConnectClicked(func() {
		pd.window.Close()
	})
	buttonBar.Append(cancelBtn)

	saveBtn := gtk.NewButtonWithLabel("Save")
	saveBtn.AddCSSClass("suggested-action")
	saveBtn.ConnectClicked(func() {
		pd.savePreferences()
		pd.window.Close()
	})
	buttonBar.Append(saveBtn)

	rootBox.Append(buttonBar)

	pd.window.SetChild(rootBox)
}

// savePreferences saves the current preferences to the config file and
// applies what can change at runtime.
func (pd *PreferencesDialog) savePreferences() {
	app := pd.mainWindow.app

	oldAddress := pd.config.ServiceAddress
	pd.config.ServiceAddress = pd.serviceEntry.Text()
	pd.config.PollInterval = time.Duration(pd.pollSpin.ValueAsInt()) * time.Second
	pd.config.MinimizeToTray = pd.minimizeSwitch.Active()
	pd.config.ShowNotifications = pd.notifySwitch.Active()
	pd.config.HistoryEnabled = pd.historySwitch.Active()
	pd.config.Theme = choice(pd.themeIDs, pd.themeDropDown.Selected())

	if err := pd.config.Save(); err != nil {
		pd.mainWindow.showError("Error", "Could not save preferences: "+err.Error())
		return
	}

	app.ApplyTheme(pd.config.Theme)
	app.notifier.SetEnabled(pd.config.ShowNotifications)
	app.manager.Monitor().UpdateConfig(vpn.MonitorConfig{PollInterval: pd.config.PollInterval})
	pd.mainWindow.window.SetHideOnClose(pd.config.MinimizeToTray)

	if pd.config.ServiceAddress != oldAddress {
		pd.mainWindow.SetMessage("Preferences saved. The new service address applies after restart.")
		return
	}
	pd.mainWindow.SetMessage("Preferences saved")
}

// Show displays the preferences dialog.
func (pd *PreferencesDialog) Show() {
	pd.window.Show()
}
