package tunnel

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// TunnelType selects the tunnel transport used by the service.
type TunnelType int

const (
	TunnelTypeSSL TunnelType = iota
	TunnelTypeIPSec
)

var tunnelTypeWire = map[TunnelType]string{
	TunnelTypeSSL:   "Ssl",
	TunnelTypeIPSec: "Ipsec",
}

// TunnelTypes lists the selectable tunnel types in display order.
var TunnelTypes = []TunnelType{TunnelTypeSSL, TunnelTypeIPSec}

// String returns the display label.
func (t TunnelType) String() string {
	switch t {
	case TunnelTypeSSL:
		return "SSL"
	case TunnelTypeIPSec:
		return "IPSec"
	default:
		return "Unknown"
	}
}

// ParseTunnelType maps a display label back to a TunnelType.
// Unknown labels fall back to SSL.
func ParseTunnelType(label string) TunnelType {
	for _, t := range TunnelTypes {
		if strings.EqualFold(label, t.String()) || label == tunnelTypeWire[t] {
			return t
		}
	}
	return TunnelTypeSSL
}

// MarshalJSON encodes the variant name.
func (t TunnelType) MarshalJSON() ([]byte, error) {
	name, ok := tunnelTypeWire[t]
	if !ok {
		return nil, fmt.Errorf("unknown tunnel type %d", int(t))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a variant name.
func (t *TunnelType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("tunnel type: %w", err)
	}
	for k, v := range tunnelTypeWire {
		if v == name {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown tunnel type %q", name)
}

// LoginType selects the authentication flow the service performs.
type LoginType int

const (
	LoginPassword LoginType = iota
	LoginPasswordWithMfa
	LoginPasswordWithMsAuth
	LoginEmergencyAccess
	LoginSsoAzure
)

// LoginTypes lists the selectable login types in display order.
var LoginTypes = []LoginType{
	LoginPassword,
	LoginPasswordWithMfa,
	LoginPasswordWithMsAuth,
	LoginEmergencyAccess,
	LoginSsoAzure,
}

var loginTypeWire = map[LoginType]string{
	LoginPassword:           "Password",
	LoginPasswordWithMfa:    "PasswordWithMfa",
	LoginPasswordWithMsAuth: "PasswordWithMsAuth",
	LoginEmergencyAccess:    "EmergencyAccess",
	LoginSsoAzure:           "SsoAzure",
}

// String returns the display label.
func (l LoginType) String() string {
	switch l {
	case LoginPassword:
		return "Password"
	case LoginPasswordWithMfa:
		return "Password with MFA"
	case LoginPasswordWithMsAuth:
		return "Password with MS auth"
	case LoginEmergencyAccess:
		return "Emergency access"
	case LoginSsoAzure:
		return "SSO Azure"
	default:
		return "Unknown"
	}
}

// ParseLoginType maps a display label (or wire name) back to a LoginType.
// Unknown labels fall back to Password.
func ParseLoginType(label string) LoginType {
	for _, l := range LoginTypes {
		if label == l.String() || label == loginTypeWire[l] {
			return l
		}
	}
	return LoginPassword
}

// MarshalJSON encodes the variant name.
func (l LoginType) MarshalJSON() ([]byte, error) {
	name, ok := loginTypeWire[l]
	if !ok {
		return nil, fmt.Errorf("unknown login type %d", int(l))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a variant name.
func (l *LoginType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("login type: %w", err)
	}
	for k, v := range loginTypeWire {
		if v == name {
			*l = k
			return nil
		}
	}
	return fmt.Errorf("unknown login type %q", name)
}

// LogLevels are the log levels the service accepts.
var LogLevels = []string{"debug", "info", "warn", "error"}

// DefaultLogLevel is the service log level used when none is set.
const DefaultLogLevel = "info"

// TunnelParams is everything the service needs to open a tunnel.
type TunnelParams struct {
	ServerName    string     `json:"server_name"`
	UserName      string     `json:"user_name"`
	Password      string     `json:"password"`
	LogLevel      string     `json:"log_level"`
	Reauth        bool       `json:"reauth"`
	SearchDomains []string   `json:"search_domains"`
	DefaultRoute  bool       `json:"default_route"`
	NoRouting     bool       `json:"no_routing"`
	NoDNS         bool       `json:"no_dns"`
	NoCertCheck   bool       `json:"no_cert_check"`
	TunnelType    TunnelType `json:"tunnel_type"`
	CACert        *string    `json:"ca_cert"`
	LoginType     LoginType  `json:"login_type"`
}

// DefaultTunnelParams returns the parameters a fresh form starts from.
func DefaultTunnelParams() TunnelParams {
	return TunnelParams{
		LogLevel:      DefaultLogLevel,
		Reauth:        true,
		SearchDomains: []string{""},
		TunnelType:    TunnelTypeSSL,
		LoginType:     LoginPasswordWithMsAuth,
	}
}

// Normalized returns a copy safe to put on the wire: search domains are
// never null and the log level is never empty.
func (p TunnelParams) Normalized() TunnelParams {
	p.SearchDomains = slices.Clone(p.SearchDomains)
	if len(p.SearchDomains) == 0 {
		p.SearchDomains = []string{""}
	}
	if p.LogLevel == "" {
		p.LogLevel = DefaultLogLevel
	}
	if p.CACert != nil {
		if *p.CACert == "" {
			p.CACert = nil
		} else {
			ca := *p.CACert
			p.CACert = &ca
		}
	}
	return p
}

// WithoutPassword returns a copy with the password cleared.
func (p TunnelParams) WithoutPassword() TunnelParams {
	p = p.Normalized()
	p.Password = ""
	return p
}

// CACertPath returns the CA certificate path or "" when unset.
func (p TunnelParams) CACertPath() string {
	if p.CACert == nil {
		return ""
	}
	return *p.CACert
}

// Equal reports whether two parameter sets are identical.
func (p TunnelParams) Equal(o TunnelParams) bool {
	return p.ServerName == o.ServerName &&
		p.UserName == o.UserName &&
		p.Password == o.Password &&
		p.LogLevel == o.LogLevel &&
		p.Reauth == o.Reauth &&
		slices.Equal(p.SearchDomains, o.SearchDomains) &&
		p.DefaultRoute == o.DefaultRoute &&
		p.NoRouting == o.NoRouting &&
		p.NoDNS == o.NoDNS &&
		p.NoCertCheck == o.NoCertCheck &&
		p.TunnelType == o.TunnelType &&
		p.CACertPath() == o.CACertPath() &&
		p.LoginType == o.LoginType
}

// String describes the parameters for logs. The password is never included.
func (p TunnelParams) String() string {
	return fmt.Sprintf("server=%s user=%s tunnel=%s login=%s log=%s reauth=%t domains=%v",
		p.ServerName, p.UserName, p.TunnelType, p.LoginType, p.LogLevel, p.Reauth, p.SearchDomains)
}

// UserConfig is the record persisted between launches.
type UserConfig struct {
	TunnelParams TunnelParams `json:"tunnel_params"`
	RememberMe   bool         `json:"remember_me"`
}

// DefaultUserConfig returns default parameters with remember-me off.
func DefaultUserConfig() UserConfig {
	return UserConfig{TunnelParams: DefaultTunnelParams()}
}
