package tunnel

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDefaultTunnelParams(t *testing.T) {
	p := DefaultTunnelParams()

	if p.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", p.LogLevel)
	}
	if !p.Reauth {
		t.Error("Reauth should be true by default")
	}
	if p.TunnelType != TunnelTypeSSL {
		t.Errorf("TunnelType = %v, want SSL", p.TunnelType)
	}
	if p.LoginType != LoginPasswordWithMsAuth {
		t.Errorf("LoginType = %v, want Password with MS auth", p.LoginType)
	}
	if len(p.SearchDomains) != 1 || p.SearchDomains[0] != "" {
		t.Errorf("SearchDomains = %q, want one empty entry", p.SearchDomains)
	}
	if p.CACert != nil {
		t.Error("CACert should be unset by default")
	}
}

func TestTunnelParams_JSONShape(t *testing.T) {
	data, err := json.Marshal(DefaultTunnelParams())
	if err != nil {
		t.Fatal(err)
	}

	want := `{"server_name":"","user_name":"","password":"","log_level":"info","reauth":true,` +
		`"search_domains":[""],"default_route":false,"no_routing":false,"no_dns":false,` +
		`"no_cert_check":false,"tunnel_type":"Ssl","ca_cert":null,"login_type":"PasswordWithMsAuth"}`
	if string(data) != want {
		t.Errorf("json = %s\nwant   %s", data, want)
	}
}

func TestTunnelParams_DecodeService(t *testing.T) {
	input := `{"server_name":"vpn.example.com","user_name":"alice","password":"s3cret",
		"log_level":"debug","reauth":false,"search_domains":["corp.example.com","example.com"],
		"default_route":true,"no_routing":false,"no_dns":true,"no_cert_check":false,
		"tunnel_type":"Ipsec","ca_cert":"/etc/ssl/ca.pem","login_type":"SsoAzure"}`

	var p TunnelParams
	if err := json.Unmarshal([]byte(input), &p); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if p.TunnelType != TunnelTypeIPSec {
		t.Errorf("TunnelType = %v, want IPSec", p.TunnelType)
	}
	if p.LoginType != LoginSsoAzure {
		t.Errorf("LoginType = %v, want SSO Azure", p.LoginType)
	}
	if p.CACertPath() != "/etc/ssl/ca.pem" {
		t.Errorf("CACert = %q", p.CACertPath())
	}
	if len(p.SearchDomains) != 2 {
		t.Errorf("SearchDomains = %q", p.SearchDomains)
	}
	if !p.NoDNS || !p.DefaultRoute || p.Reauth {
		t.Error("boolean flags not decoded")
	}
}

func TestTunnelType_UnknownWireName(t *testing.T) {
	var tt TunnelType
	if err := json.Unmarshal([]byte(`"Wireguard"`), &tt); err == nil {
		t.Error("expected error for unknown tunnel type")
	}
	var lt LoginType
	if err := json.Unmarshal([]byte(`"Kerberos"`), &lt); err == nil {
		t.Error("expected error for unknown login type")
	}
}

func TestParseTunnelType(t *testing.T) {
	tests := []struct {
		label string
		want  TunnelType
	}{
		{"SSL", TunnelTypeSSL},
		{"IPSec", TunnelTypeIPSec},
		{"Ipsec", TunnelTypeIPSec},
		{"bogus", TunnelTypeSSL},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ParseTunnelType(tt.label); got != tt.want {
				t.Errorf("ParseTunnelType(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestParseLoginType(t *testing.T) {
	for _, l := range LoginTypes {
		if got := ParseLoginType(l.String()); got != l {
			t.Errorf("ParseLoginType(%q) = %v, want %v", l.String(), got, l)
		}
	}
	if got := ParseLoginType("nonsense"); got != LoginPassword {
		t.Errorf("ParseLoginType(nonsense) = %v, want Password", got)
	}
}

func TestTunnelParams_Normalized(t *testing.T) {
	empty := ""
	p := TunnelParams{CACert: &empty}

	n := p.Normalized()
	if len(n.SearchDomains) != 1 || n.SearchDomains[0] != "" {
		t.Errorf("SearchDomains = %q, want one empty entry", n.SearchDomains)
	}
	if n.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", n.LogLevel, DefaultLogLevel)
	}
	if n.CACert != nil {
		t.Error("empty CA path should become null")
	}
}

func TestTunnelParams_StringHidesPassword(t *testing.T) {
	p := DefaultTunnelParams()
	p.Password = "hunter2"
	if strings.Contains(p.String(), "hunter2") {
		t.Error("String() must not include the password")
	}
}

func TestTunnelParams_WithoutPassword(t *testing.T) {
	p := DefaultTunnelParams()
	p.UserName = "alice"
	p.Password = "hunter2"

	stripped := p.WithoutPassword()
	if stripped.Password != "" {
		t.Error("WithoutPassword() should clear the password")
	}
	if stripped.UserName != "alice" {
		t.Error("WithoutPassword() should keep other fields")
	}
	if p.Password != "hunter2" {
		t.Error("WithoutPassword() should not modify the receiver")
	}
}
