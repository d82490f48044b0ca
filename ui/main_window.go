package ui

import (
	"errors"
	"fmt"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/form"
	"github.com/yllada/snx-gui/vpn"
)

// MainWindow holds the login form, the settings panel and the status
// labels.
type MainWindow struct {
	app    *Application
	window *gtk.ApplicationWindow
	form   *form.Form

	headerBar      *gtk.HeaderBar
	settingsToggle *gtk.ToggleButton

	usernameEntry *gtk.Entry
	passwordEntry *gtk.PasswordEntry
	serverEntry   *gtk.Entry
	usernameError *gtk.Label
	passwordError *gtk.Label
	serverError   *gtk.Label
	rememberCheck *gtk.CheckButton

	connectBtn    *gtk.Button
	disconnectBtn *gtk.Button

	settingsRevealer *gtk.Revealer
	settings         *SettingsPanel

	connectionLabel *gtk.Label
	serviceLabel    *gtk.Label
	messageLabel    *gtk.Label

	status  vpn.Status
	loading bool
}

// NewMainWindow creates a new main window.
func NewMainWindow(app *Application) *MainWindow {
	mw := &MainWindow{
		app:  app,
		form: app.manager.LoadForm(),
	}

	mw.window = gtk.NewApplicationWindow(&app.app.Application)
	mw.window.SetTitle(common.AppName)
	mw.window.SetDefaultSize(common.DefaultWindowWidth, common.DefaultWindowHeight)
	mw.window.SetIconName("network-vpn")
	mw.window.SetHideOnClose(app.config.MinimizeToTray)

	mw.createLayout()
	mw.loadForm()
	mw.updateStatus(app.manager.Status())

	return mw
}

// createLayout creates the window layout.
func (mw *MainWindow) createLayout() {
	mw.headerBar = gtk.NewHeaderBar()

	mw.settingsToggle = gtk.NewToggleButton()
	mw.settingsToggle.SetIconName("emblem-system-symbolic")
	mw.settingsToggle.SetTooltipText("Tunnel settings")
	mw.settingsToggle.ConnectToggled(func() {
		mw.form.SettingsExpanded = mw.settingsToggle.Active()
		mw.settingsRevealer.SetRevealChild(mw.form.SettingsExpanded)
	})
	mw.headerBar.PackStart(mw.settingsToggle)

	menuButton := gtk.NewMenuButton()
	menuButton.SetIconName("open-menu-symbolic")
	menuButton.SetTooltipText("Menu")
	menuButton.SetMenuModel(mw.createMenu())
	mw.headerBar.PackEnd(menuButton)

	mw.window.SetTitlebar(mw.headerBar)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 8)
	mainBox.SetMarginTop(common.DialogMargin)
	mainBox.SetMarginBottom(common.DialogMargin)
	mainBox.SetMarginStart(common.DialogMargin)
	mainBox.SetMarginEnd(common.DialogMargin)

	mw.usernameEntry = gtk.NewEntry()
	mw.usernameEntry.SetPlaceholderText("Username")
	mw.usernameEntry.ConnectChanged(mw.onFormChanged)
	mw.usernameError = newErrorLabel(form.MsgUsernameRequired)
	mainBox.Append(newFieldLabel("Username"))
	mainBox.Append(mw.usernameEntry)
	mainBox.Append(mw.usernameError)

	mw.passwordEntry = gtk.NewPasswordEntry()
	mw.passwordEntry.SetShowPeekIcon(true)
	mw.passwordEntry.ConnectActivate(mw.onConnect)
	mw.passwordError = newErrorLabel(form.MsgPasswordRequired)
	mainBox.Append(newFieldLabel("Password"))
	mainBox.Append(mw.passwordEntry)
	mainBox.Append(mw.passwordError)

	mw.serverEntry = gtk.NewEntry()
	mw.serverEntry.SetPlaceholderText("vpn.example.com")
	mw.serverEntry.ConnectActivate(mw.onConnect)
	mw.serverEntry.ConnectChanged(mw.onFormChanged)
	mw.serverError = newErrorLabel(form.MsgServerAddressRequired)
	mainBox.Append(newFieldLabel("Server address"))
	mainBox.Append(mw.serverEntry)
	mainBox.Append(mw.serverError)

	buttonBox := gtk.NewBox(gtk.OrientationHorizontal, 12)
	buttonBox.SetHAlign(gtk.AlignEnd)
	buttonBox.SetMarginTop(8)

	mw.rememberCheck = gtk.NewCheckButtonWithLabel("Remember configuration")
	mw.rememberCheck.SetHExpand(true)
	mw.rememberCheck.ConnectToggled(mw.onRememberToggled)
	buttonBox.Append(mw.rememberCheck)

	mw.disconnectBtn = gtk.NewButtonWithLabel("Disconnect")
	mw.disconnectBtn.AddCSSClass("destructive-action")
	mw.disconnectBtn.ConnectClicked(mw.onDisconnect)
	buttonBox.Append(mw.disconnectBtn)

	mw.connectBtn = gtk.NewButtonWithLabel("Connect")
	mw.connectBtn.AddCSSClass("suggested-action")
	mw.connectBtn.ConnectClicked(mw.onConnect)
	buttonBox.Append(mw.connectBtn)

	mainBox.Append(buttonBox)

	mw.settings = NewSettingsPanel()
	mw.settings.OnChanged(mw.onFormChanged)
	mw.settingsRevealer = gtk.NewRevealer()
	mw.settingsRevealer.SetTransitionType(gtk.RevealerTransitionTypeSlideDown)
	mw.settingsRevealer.SetChild(mw.settings.Widget())
	mainBox.Append(mw.settingsRevealer)

	mainBox.Append(mw.createStatusBox())

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scrolled.SetVExpand(true)
	scrolled.SetChild(mainBox)

	mw.window.SetChild(scrolled)
}

func newFieldLabel(text string) *gtk.Label {
	label := gtk.NewLabel(text)
	label.SetXAlign(0)
	label.AddCSSClass("field-label")
	return label
}

func newErrorLabel(text string) *gtk.Label {
	label := gtk.NewLabel(text)
	label.SetXAlign(0)
	label.AddCSSClass("error-label")
	label.SetVisible(false)
	return label
}

func (mw *MainWindow) createStatusBox() *gtk.Box {
	box := gtk.NewBox(gtk.OrientationVertical, 4)
	box.AddCSSClass("status-box")
	box.SetMarginTop(12)

	mw.connectionLabel = gtk.NewLabel("")
	mw.connectionLabel.SetXAlign(0)
	box.Append(mw.connectionLabel)

	mw.serviceLabel = gtk.NewLabel("")
	mw.serviceLabel.SetXAlign(0)
	box.Append(mw.serviceLabel)

	mw.messageLabel = gtk.NewLabel("")
	mw.messageLabel.SetXAlign(0)
	mw.messageLabel.SetWrap(true)
	mw.messageLabel.AddCSSClass("dim-label")
	box.Append(mw.messageLabel)

	return box
}

// createMenu creates the application menu.
func (mw *MainWindow) createMenu() *gio.Menu {
	menu := gio.NewMenu()

	settingsSection := gio.NewMenu()
	settingsSection.Append("Preferences", "app.preferences")
	settingsSection.Append("Connection History", "app.history")
	menu.AppendSection("", &settingsSection.MenuModel)

	appSection := gio.NewMenu()
	appSection.Append("About", "app.about")
	appSection.Append("Quit", "app.quit")
	menu.AppendSection("", &appSection.MenuModel)

	mw.setupActions()

	return menu
}

// setupActions configures menu actions.
func (mw *MainWindow) setupActions() {
	gtkApp := &mw.app.app.Application

	preferencesAction := gio.NewSimpleAction("preferences", nil)
	preferencesAction.ConnectActivate(func(_ *glib.Variant) {
		NewPreferencesDialog(mw).Show()
	})
	gtkApp.AddAction(preferencesAction)
	gtkApp.SetAccelsForAction("app.preferences", []string{"<Control>comma"})

	historyAction := gio.NewSimpleAction("history", nil)
	historyAction.ConnectActivate(func(_ *glib.Variant) {
		NewHistoryDialog(mw).Show()
	})
	gtkApp.AddAction(historyAction)
	gtkApp.SetAccelsForAction("app.history", []string{"<Control>h"})

	aboutAction := gio.NewSimpleAction("about", nil)
	aboutAction.ConnectActivate(func(_ *glib.Variant) {
		mw.onAbout()
	})
	gtkApp.AddAction(aboutAction)

	quitAction := gio.NewSimpleAction("quit", nil)
	quitAction.ConnectActivate(func(_ *glib.Variant) {
		mw.app.Quit()
	})
	gtkApp.AddAction(quitAction)
	gtkApp.SetAccelsForAction("app.quit", []string{"<Control>q"})
}

// Show displays the window.
func (mw *MainWindow) Show() {
	mw.window.Show()
}

// loadForm copies the form into the widgets.
func (mw *MainWindow) loadForm() {
	mw.loading = true
	defer func() { mw.loading = false }()

	mw.usernameEntry.SetText(mw.form.Username)
	mw.passwordEntry.SetText("")
	mw.serverEntry.SetText(mw.form.ServerAddress)
	mw.rememberCheck.SetActive(mw.form.RememberMe)
	mw.settings.Load(mw.form)
	mw.settingsToggle.SetActive(mw.form.SettingsExpanded)
	mw.settingsRevealer.SetRevealChild(mw.form.SettingsExpanded)
}

// syncForm copies the widgets into the form.
func (mw *MainWindow) syncForm() {
	mw.form.Username = mw.usernameEntry.Text()
	mw.form.Password = mw.passwordEntry.Text()
	mw.form.ServerAddress = mw.serverEntry.Text()
	mw.form.RememberMe = mw.rememberCheck.Active()
	mw.settings.Store(mw.form)
}

func (mw *MainWindow) showMissing() {
	mw.usernameError.SetVisible(mw.form.Missing.Username)
	mw.passwordError.SetVisible(mw.form.Missing.Password)
	mw.serverError.SetVisible(mw.form.Missing.ServerAddress)
}

// SetMessage shows a one-line message under the status labels.
func (mw *MainWindow) SetMessage(text string) {
	mw.messageLabel.SetText(text)
}

// Event handlers

func (mw *MainWindow) onConnect() {
	if !mw.status.ConnectEnabled() {
		return
	}

	mw.syncForm()
	valid := mw.form.Validate()
	mw.showMissing()
	if !valid {
		return
	}
	if err := mw.form.ValidateSettings(); err != nil {
		mw.SetMessage(err.Error())
		return
	}

	submit := *mw.form
	mw.form.Password = ""
	mw.form.SettingsExpanded = false
	mw.passwordEntry.SetText("")
	mw.settingsToggle.SetActive(false)

	mw.status.Pending = vpn.StateConnecting
	mw.updateStatus(mw.status)
	mw.SetMessage("")

	go func() {
		_, err := mw.app.manager.Connect(mw.app.ctx, &submit)
		glib.IdleAdd(func() {
			mw.afterRequest("Connect", err)
		})
	}()
}

func (mw *MainWindow) onDisconnect() {
	if !mw.status.DisconnectEnabled() {
		return
	}
	mw.status.Pending = vpn.StateDisconnecting
	mw.updateStatus(mw.status)

	go func() {
		err := mw.app.manager.Disconnect(mw.app.ctx)
		glib.IdleAdd(func() {
			mw.afterRequest("Disconnect", err)
		})
	}()
}

func (mw *MainWindow) afterRequest(action string, err error) {
	switch {
	case err == nil:
		mw.SetMessage("")
	case errors.Is(err, common.ErrServiceError):
		mw.SetMessage(err.Error())
	default:
		mw.SetMessage(fmt.Sprintf("%s failed: %v", action, err))
	}
	mw.updateStatus(mw.app.manager.Status())
}

func (mw *MainWindow) onRememberToggled() {
	remember := mw.rememberCheck.Active()
	if remember == mw.form.RememberMe {
		return
	}
	mw.syncForm()
	if err := mw.app.manager.SetRememberMe(mw.form, remember); err != nil {
		mw.SetMessage(err.Error())
	}
}

// onFormChanged keeps the user config in step with the widgets while
// remember-me is on.
func (mw *MainWindow) onFormChanged() {
	if mw.loading || !mw.form.RememberMe {
		return
	}
	mw.syncForm()
	if err := mw.app.manager.SaveForm(mw.form); err != nil {
		mw.SetMessage(err.Error())
	}
}

// updateStatus refreshes labels and button sensitivity.
func (mw *MainWindow) updateStatus(status vpn.Status) {
	mw.status = status

	connection := status.ConnectionText()
	if state := status.State(); state == vpn.StateConnecting || state == vpn.StateDisconnecting {
		connection = state.String()
	}
	mw.connectionLabel.SetText("Connection status: " + connection)
	mw.serviceLabel.SetText("Service status: " + status.ServiceText())

	setStateClass(mw.connectionLabel, status.State())
	if status.ServiceRunning {
		mw.serviceLabel.RemoveCSSClass("status-error")
	} else {
		mw.serviceLabel.AddCSSClass("status-error")
	}

	pending := status.Pending == vpn.StateConnecting || status.Pending == vpn.StateDisconnecting
	mw.connectBtn.SetSensitive(status.ConnectEnabled() && !pending)
	mw.disconnectBtn.SetSensitive(status.DisconnectEnabled() && !pending)

	if status.ServiceError != "" {
		mw.SetMessage("Service error: " + status.ServiceError)
	}
}

var stateClasses = map[vpn.ConnectionState]string{
	vpn.StateConnected:     "status-connected",
	vpn.StateConnecting:    "status-connecting",
	vpn.StateDisconnecting: "status-connecting",
	vpn.StateDisconnected:  "status-disconnected",
	vpn.StateServiceDown:   "status-disconnected",
}

func setStateClass(label *gtk.Label, state vpn.ConnectionState) {
	for _, class := range stateClasses {
		label.RemoveCSSClass(class)
	}
	label.AddCSSClass(stateClasses[state])
}

func (mw *MainWindow) onAbout() {
	about := gtk.NewAboutDialog()
	about.SetTransientFor(&mw.window.Window)
	about.SetModal(true)

	about.SetProgramName(common.AppName)
	about.SetLogoIconName("network-vpn")
	about.SetVersion(mw.app.version)
	about.SetComments("Desktop front-end for the SNX tunnel service.")
	about.SetLicenseType(gtk.LicenseMITX11)

	about.Show()
}

// showError displays an error dialog.
func (mw *MainWindow) showError(title, message string) {
	window := gtk.NewWindow()
	window.SetTitle(title)
	window.SetTransientFor(&mw.window.Window)
	window.SetModal(true)
	window.SetDefaultSize(350, 150)
	window.SetResizable(false)

	mainBox := gtk.NewBox(gtk.OrientationVertical, 12)
	mainBox.SetMarginTop(24)
	mainBox.SetMarginBottom(24)
	mainBox.SetMarginStart(24)
	mainBox.SetMarginEnd(24)
	mainBox.SetHAlign(gtk.AlignCenter)

	icon := gtk.NewImage()
	icon.SetFromIconName("dialog-error-symbolic")
	icon.SetPixelSize(48)
	mainBox.Append(icon)

	msgLabel := gtk.NewLabel(message)
	msgLabel.SetWrap(true)
	msgLabel.SetMaxWidthChars(40)
	mainBox.Append(msgLabel)

	okBtn := gtk.NewButtonWithLabel("OK")
	okBtn.SetHAlign(gtk.AlignCenter)
	okBtn.SetMarginTop(12)
	okBtn.ConnectClicked(func() {
		window.Close()
	})
	mainBox.Append(okBtn)

	window.SetChild(mainBox)
	window.Show()
}
