package ui

import (
	"slices"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/snx-gui/form"
	"github.com/yllada/snx-gui/tunnel"
)

// SettingsPanel edits the tunnel parameters shown below the login form.
type SettingsPanel struct {
	root *gtk.Box

	logLevel      *gtk.DropDown
	reauth        *gtk.Switch
	searchDomains *gtk.Entry
	defaultRoute  *gtk.Switch
	noRouting     *gtk.Switch
	noDNS         *gtk.Switch
	noCertCheck   *gtk.Switch
	tunnelType    *gtk.DropDown
	caCert        *gtk.Entry
	loginType     *gtk.DropDown
}

// NewSettingsPanel builds the panel widgets.
func NewSettingsPanel() *SettingsPanel {
	sp := &SettingsPanel{}
	sp.build()
	return sp
}

// Widget returns the panel root.
func (sp *SettingsPanel) Widget() gtk.Widgetter {
	return sp.root
}

func (sp *SettingsPanel) build() {
	sp.root = gtk.NewBox(gtk.OrientationVertical, 16)
	sp.root.SetMarginTop(12)

	// Authentication
	authSection := createSection("Authentication", "dialog-password-symbolic")
	authCard := createCard()

	sp.loginType = newDropDown(labels(tunnel.LoginTypes))
	authCard.Append(createSettingRow("Login type", "How the gateway authenticates you", sp.loginType))
	authCard.Append(createSeparator())

	sp.reauth = newSwitch()
	authCard.Append(createSettingRow("Reauthentication", "Renew the session before it expires", sp.reauth))
	authCard.Append(createSeparator())

	sp.noCertCheck = newSwitch()
	authCard.Append(createSettingRow("Skip certificate check", "Do not verify the gateway certificate", sp.noCertCheck))
	authCard.Append(createSeparator())

	sp.caCert = gtk.NewEntry()
	sp.caCert.SetPlaceholderText("/path/to/ca.pem")
	sp.caCert.SetVAlign(gtk.AlignCenter)
	authCard.Append(createSettingRow("CA certificate", "Custom certificate authority file", sp.caCert))

	authSection.Append(authCard)
	sp.root.Append(authSection)

	// Tunnel
	tunnelSection := createSection("Tunnel", "network-vpn-symbolic")
	tunnelCard := createCard()

	sp.tunnelType = newDropDown(labels(tunnel.TunnelTypes))
	tunnelCard.Append(createSettingRow("Tunnel type", "Transport used by the tunnel", sp.tunnelType))
	tunnelCard.Append(createSeparator())

	sp.defaultRoute = newSwitch()
	tunnelCard.Append(createSettingRow("Default route", "Send all traffic through the tunnel", sp.defaultRoute))
	tunnelCard.Append(createSeparator())

	sp.noRouting = newSwitch()
	tunnelCard.Append(createSettingRow("No routing", "Ignore routes pushed by the gateway", sp.noRouting))
	tunnelCard.Append(createSeparator())

	sp.noDNS = newSwitch()
	tunnelCard.Append(createSettingRow("No DNS", "Keep the system resolver configuration", sp.noDNS))
	tunnelCard.Append(createSeparator())

	sp.searchDomains = gtk.NewEntry()
	sp.searchDomains.SetPlaceholderText("corp.example.com, example.net")
	sp.searchDomains.SetVAlign(gtk.AlignCenter)
	tunnelCard.Append(createSettingRow("Search domains", "Comma separated DNS suffixes", sp.searchDomains))

	tunnelSection.Append(tunnelCard)
	sp.root.Append(tunnelSection)

	// Diagnostics
	diagSection := createSection("Diagnostics", "utilities-terminal-symbolic")
	diagCard := createCard()

	sp.logLevel = newDropDown(tunnel.LogLevels)
	diagCard.Append(createSettingRow("Log level", "Verbosity of the tunnel service", sp.logLevel))

	diagSection.Append(diagCard)
	sp.root.Append(diagSection)
}

// Load copies form values into the widgets.
func (sp *SettingsPanel) Load(f *form.Form) {
	sp.logLevel.SetSelected(indexOf(tunnel.LogLevels, f.LogLevel))
	sp.reauth.SetActive(f.Reauth)
	sp.searchDomains.SetText(f.SearchDomains)
	sp.defaultRoute.SetActive(f.DefaultRoute)
	sp.noRouting.SetActive(f.NoRouting)
	sp.noDNS.SetActive(f.NoDNS)
	sp.noCertCheck.SetActive(f.NoCertCheck)
	sp.tunnelType.SetSelected(indexOf(tunnel.TunnelTypes, f.TunnelType))
	sp.caCert.SetText(f.CACertPath)
	sp.loginType.SetSelected(indexOf(tunnel.LoginTypes, f.LoginType))
}

// OnChanged calls fn whenever any setting is edited.
func (sp *SettingsPanel) OnChanged(fn func()) {
	for _, e := range []*gtk.Entry{sp.searchDomains, sp.caCert} {
		e.ConnectChanged(fn)
	}
	for _, sw := range []*gtk.Switch{sp.reauth, sp.defaultRoute, sp.noRouting, sp.noDNS, sp.noCertCheck} {
		sw.NotifyProperty("active", fn)
	}
	for _, dd := range []*gtk.DropDown{sp.logLevel, sp.tunnelType, sp.loginType} {
		dd.NotifyProperty("selected", fn)
	}
}

// Store copies widget values into the form.
func (sp *SettingsPanel) Store(f *form.Form) {
	f.LogLevel = choice(tunnel.LogLevels, sp.logLevel.Selected())
	f.Reauth = sp.reauth.Active()
	f.SearchDomains = sp.searchDomains.Text()
	f.DefaultRoute = sp.defaultRoute.Active()
	f.NoRouting = sp.noRouting.Active()
	f.NoDNS = sp.noDNS.Active()
	f.NoCertCheck = sp.noCertCheck.Active()
	f.TunnelType = choice(tunnel.TunnelTypes, sp.tunnelType.Selected())
	f.CACertPath = sp.caCert.Text()
	f.LoginType = choice(tunnel.LoginTypes, sp.loginType.Selected())
}

func newSwitch() *gtk.Switch {
	sw := gtk.NewSwitch()
	sw.SetVAlign(gtk.AlignCenter)
	return sw
}

func newDropDown(items []string) *gtk.DropDown {
	dd := gtk.NewDropDown(gtk.NewStringList(items), nil)
	dd.SetVAlign(gtk.AlignCenter)
	dd.AddCSSClass("flat")
	return dd
}

func labels[T interface{ String() string }](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

func indexOf[T comparable](values []T, v T) uint {
	if i := slices.Index(values, v); i >= 0 {
		return uint(i)
	}
	return 0
}

func choice[T any](values []T, selected uint) T {
	if int(selected) < len(values) {
		return values[selected]
	}
	return values[0]
}

// createSection creates a section with icon and title.
func createSection(title string, iconName string) *gtk.Box {
	section := gtk.NewBox(gtk.OrientationVertical, 8)

	headerBox := gtk.NewBox(gtk.OrientationHorizontal, 8)

	icon := gtk.NewImage()
	icon.SetFromIconName(iconName)
	icon.SetPixelSize(18)
	icon.AddCSSClass("dim-label")
	headerBox.Append(icon)

	label := gtk.NewLabel(title)
	label.SetXAlign(0)
	label.AddCSSClass("heading")
	label.AddCSSClass("dim-label")
	headerBox.Append(label)

	section.Append(headerBox)
	return section
}

// createCard creates a styled card container for settings.
func createCard() *gtk.Box {
	card := gtk.NewBox(gtk.OrientationVertical, 0)
	card.AddCSSClass("card")
	card.AddCSSClass("preferences-card")
	return card
}

// createSettingRow creates a row with title, description, and widget.
func createSettingRow(title string, description string, widget gtk.Widgetter) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.SetMarginTop(12)
	row.SetMarginBottom(12)
	row.SetMarginStart(16)
	row.SetMarginEnd(16)

	textBox := gtk.NewBox(gtk.OrientationVertical, 4)
	textBox.SetHExpand(true)

	titleLabel := gtk.NewLabel(title)
	titleLabel.SetXAlign(0)
	titleLabel.AddCSSClass("settings-title")
	textBox.Append(titleLabel)

	descLabel := gtk.NewLabel(description)
	descLabel.SetXAlign(0)
	descLabel.AddCSSClass("dim-label")
	descLabel.AddCSSClass("caption")
	descLabel.SetWrap(true)
	textBox.Append(descLabel)

	row.Append(textBox)
	row.Append(widget)
	return row
}

func createSeparator() *gtk.Separator {
	sep := gtk.NewSeparator(gtk.OrientationHorizontal)
	sep.SetMarginStart(16)
	sep.SetMarginEnd(16)
	return sep
}
