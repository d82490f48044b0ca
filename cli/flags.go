package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yllada/snx-gui/tunnel"
)

var tunnelTypeAliases = map[string]tunnel.TunnelType{
	"ssl":   tunnel.TunnelTypeSSL,
	"ipsec": tunnel.TunnelTypeIPSec,
}

var loginTypeAliases = map[string]tunnel.LoginType{
	"password":  tunnel.LoginPassword,
	"mfa":       tunnel.LoginPasswordWithMfa,
	"ms-auth":   tunnel.LoginPasswordWithMsAuth,
	"emergency": tunnel.LoginEmergencyAccess,
	"sso":       tunnel.LoginSsoAzure,
}

func normalizeFlag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func parseTunnelType(s string) (tunnel.TunnelType, error) {
	if t, ok := tunnelTypeAliases[normalizeFlag(s)]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("unknown tunnel type %q (want ssl or ipsec)", s)
}

// parseLoginType accepts the short aliases as well as the service's own
// variant names.
func parseLoginType(s string) (tunnel.LoginType, error) {
	if l, ok := loginTypeAliases[normalizeFlag(s)]; ok {
		return l, nil
	}
	for _, l := range tunnel.LoginTypes {
		if strings.EqualFold(s, l.String()) {
			return l, nil
		}
		if wire, err := l.MarshalJSON(); err == nil && strings.EqualFold(`"`+s+`"`, string(wire)) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown login type %q", s)
}

func parseLogLevel(s string) (string, error) {
	level := normalizeFlag(s)
	if !slices.Contains(tunnel.LogLevels, level) {
		return "", fmt.Errorf("unknown log level %q (want one of %s)", s, strings.Join(tunnel.LogLevels, ", "))
	}
	return level, nil
}
