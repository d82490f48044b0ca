// Package form holds the state of the login and settings form shared by
// the desktop window, the terminal UI and the command line.
package form

import (
	"context"
	"fmt"
	"strings"

	"github.com/miekg/dns"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/tunnel"
)

// Validation messages shown under the form.
const (
	MsgUsernameRequired      = "Error: Username is required"
	MsgPasswordRequired      = "Error: Password is required"
	MsgServerAddressRequired = "Error: Server address is required"
)

// Connector sends a Connect request to the tunnel service.
type Connector interface {
	Connect(ctx context.Context, params tunnel.TunnelParams) (*tunnel.Response, error)
}

// Missing flags the required fields that were empty on the last submit.
type Missing struct {
	Username      bool
	Password      bool
	ServerAddress bool
}

// Any reports whether any required field is missing.
func (m Missing) Any() bool {
	return m.Username || m.Password || m.ServerAddress
}

// Form is the editable state behind the login and settings panels.
// Front-ends bind their widgets to these fields.
type Form struct {
	Username      string
	Password      string
	ServerAddress string
	LogLevel      string
	Reauth        bool
	SearchDomains string // comma separated
	DefaultRoute  bool
	NoRouting     bool
	NoDNS         bool
	NoCertCheck   bool
	TunnelType    tunnel.TunnelType
	CACertPath    string
	LoginType     tunnel.LoginType
	RememberMe    bool

	SettingsExpanded bool
	Missing          Missing
}

// New returns a form holding the default parameters.
func New() *Form {
	return NewFromUserConfig(tunnel.DefaultUserConfig())
}

// NewFromUserConfig seeds a form from a remembered configuration.
// The password is never seeded.
func NewFromUserConfig(cfg tunnel.UserConfig) *Form {
	f := &Form{RememberMe: cfg.RememberMe}
	f.SetParams(cfg.TunnelParams)
	f.Password = ""
	return f
}

// SetParams copies params into the form fields.
func (f *Form) SetParams(params tunnel.TunnelParams) {
	p := params.Normalized()
	f.Username = p.UserName
	f.Password = p.Password
	f.ServerAddress = p.ServerName
	f.LogLevel = p.LogLevel
	f.Reauth = p.Reauth
	f.SearchDomains = JoinSearchDomains(p.SearchDomains)
	f.DefaultRoute = p.DefaultRoute
	f.NoRouting = p.NoRouting
	f.NoDNS = p.NoDNS
	f.NoCertCheck = p.NoCertCheck
	f.TunnelType = p.TunnelType
	f.CACertPath = p.CACertPath()
	f.LoginType = p.LoginType
}

// Params builds the tunnel parameters from the current field values.
func (f *Form) Params() tunnel.TunnelParams {
	p := tunnel.TunnelParams{
		ServerName:    strings.TrimSpace(f.ServerAddress),
		UserName:      strings.TrimSpace(f.Username),
		Password:      f.Password,
		LogLevel:      f.LogLevel,
		Reauth:        f.Reauth,
		SearchDomains: SplitSearchDomains(f.SearchDomains),
		DefaultRoute:  f.DefaultRoute,
		NoRouting:     f.NoRouting,
		NoDNS:         f.NoDNS,
		NoCertCheck:   f.NoCertCheck,
		TunnelType:    f.TunnelType,
		LoginType:     f.LoginType,
	}
	if ca := strings.TrimSpace(f.CACertPath); ca != "" {
		ca = common.ExpandHome(ca)
		p.CACert = &ca
	}
	return p.Normalized()
}

// UserConfig returns the record to persist for the current form.
func (f *Form) UserConfig() tunnel.UserConfig {
	return tunnel.UserConfig{TunnelParams: f.Params(), RememberMe: f.RememberMe}
}

// Validate flags exactly the empty required fields and reports whether
// the form can be submitted.
func (f *Form) Validate() bool {
	f.Missing = Missing{
		Username:      strings.TrimSpace(f.Username) == "",
		Password:      f.Password == "",
		ServerAddress: strings.TrimSpace(f.ServerAddress) == "",
	}
	return !f.Missing.Any()
}

// Errors returns the validation messages for the missing fields.
func (f *Form) Errors() []string {
	var msgs []string
	if f.Missing.Username {
		msgs = append(msgs, MsgUsernameRequired)
	}
	if f.Missing.Password {
		msgs = append(msgs, MsgPasswordRequired)
	}
	if f.Missing.ServerAddress {
		msgs = append(msgs, MsgServerAddressRequired)
	}
	return msgs
}

// ValidateSettings checks the settings panel values.
func (f *Form) ValidateSettings() error {
	for _, domain := range SplitSearchDomains(f.SearchDomains) {
		if domain == "" {
			continue
		}
		if _, ok := dns.IsDomainName(domain); !ok {
			return fmt.Errorf("%w: %q", common.ErrInvalidSearchDomain, domain)
		}
	}
	return nil
}

// SubmitConnect validates the form and, when it is complete, sends a
// Connect request through c. Nothing is sent for an incomplete form.
// After sending, the settings panel is collapsed and the password field
// is cleared whatever the outcome.
func (f *Form) SubmitConnect(ctx context.Context, c Connector) (*tunnel.Response, error) {
	if !f.Validate() {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingCredentials, strings.Join(f.Errors(), "; "))
	}
	if err := f.ValidateSettings(); err != nil {
		return nil, err
	}

	f.SettingsExpanded = false
	params := f.Params()
	f.Password = ""
	return c.Connect(ctx, params)
}

// ToggleSettings shows or hides the settings panel.
func (f *Form) ToggleSettings() {
	f.SettingsExpanded = !f.SettingsExpanded
}

// SplitSearchDomains parses a comma or whitespace separated list. An empty
// list becomes a single empty entry, which is what the service expects.
func SplitSearchDomains(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return []string{""}
	}
	return fields
}

// JoinSearchDomains formats domains for editing.
func JoinSearchDomains(domains []string) string {
	nonEmpty := make([]string, 0, len(domains))
	for _, d := range domains {
		if d = strings.TrimSpace(d); d != "" {
			nonEmpty = append(nonEmpty, d)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
