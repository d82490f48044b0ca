package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yllada/snx-gui/form"
	"github.com/yllada/snx-gui/tunnel"
)

// passwordEnv is read when --password is not given.
const passwordEnv = "SNX_PASSWORD"

type connectOptions struct {
	server        string
	user          string
	password      string
	logLevel      string
	reauth        bool
	searchDomains string
	defaultRoute  bool
	noRouting     bool
	noDNS         bool
	noCertCheck   bool
	tunnelType    string
	caCert        string
	loginType     string
	remember      bool
	wait          time.Duration
}

var connectOpts connectOptions

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Open a tunnel",
	Long: `Send a Connect request to the tunnel service.

Values not given on the command line are taken from the remembered
configuration. The password is read from --password, then $SNX_PASSWORD,
then prompted for.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		f := s.manager.LoadForm()
		if err := connectOpts.apply(cmd, f); err != nil {
			return err
		}
		if f.Password == "" {
			f.Password, err = readPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return New(s.manager, nil, cmd.OutOrStdout()).Connect(ctx, f, connectOpts.wait)
	},
}

// apply copies the flags the user set onto f.
func (o connectOptions) apply(cmd *cobra.Command, f *form.Form) error {
	changed := cmd.Flags().Changed

	if changed("server") {
		f.ServerAddress = o.server
	}
	if changed("user") {
		f.Username = o.user
	}
	if changed("password") {
		f.Password = o.password
	} else if pw := os.Getenv(passwordEnv); pw != "" {
		f.Password = pw
	}
	if changed("log-level") {
		level, err := parseLogLevel(o.logLevel)
		if err != nil {
			return err
		}
		f.LogLevel = level
	}
	if changed("reauth") {
		f.Reauth = o.reauth
	}
	if changed("search-domains") {
		f.SearchDomains = o.searchDomains
	}
	if changed("default-route") {
		f.DefaultRoute = o.defaultRoute
	}
	if changed("no-routing") {
		f.NoRouting = o.noRouting
	}
	if changed("no-dns") {
		f.NoDNS = o.noDNS
	}
	if changed("no-cert-check") {
		f.NoCertCheck = o.noCertCheck
	}
	if changed("tunnel-type") {
		t, err := parseTunnelType(o.tunnelType)
		if err != nil {
			return err
		}
		f.TunnelType = t
	}
	if changed("ca-cert") {
		f.CACertPath = o.caCert
	}
	if changed("login-type") {
		l, err := parseLoginType(o.loginType)
		if err != nil {
			return err
		}
		f.LoginType = l
	}
	if changed("remember") {
		f.RememberMe = o.remember
	}
	return f.ValidateSettings()
}

// readPassword prompts on the terminal, or reads one line from a pipe.
func readPassword(prompt io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(prompt, "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Close the tunnel",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		return New(s.manager, nil, cmd.OutOrStdout()).Disconnect(cmd.Context())
	},
}

var watchStatus bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tunnel and service status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		c := New(s.manager, nil, cmd.OutOrStdout())
		if !watchStatus {
			return c.Status(cmd.Context())
		}
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return c.Watch(ctx)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the remembered connection settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the remembered settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()
		return New(s.manager, nil, cmd.OutOrStdout()).ShowConfig()
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the remembered settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()
		return New(s.manager, nil, cmd.OutOrStdout()).ResetConfig()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file locations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Preferences:  %s\n", s.config.Path())
		fmt.Fprintf(out, "Connection:   %s\n", s.manager.UserConfigPath())
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent connection events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		var reader HistoryReader
		if s.history != nil {
			reader = s.history
		}
		return New(s.manager, reader, cmd.OutOrStdout()).History(cmd.Context(), historyLimit)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "snx-gui %s\n", Version)
		if BuildTime != "unknown" {
			fmt.Fprintf(cmd.OutOrStdout(), "  Build: %s\n", BuildTime)
		}
	},
}

func addConnectFlags(cmd *cobra.Command, o *connectOptions) {
	f := cmd.Flags()
	f.StringVarP(&o.server, "server", "s", "", "Server address")
	f.StringVarP(&o.user, "user", "u", "", "User name")
	f.StringVarP(&o.password, "password", "p", "", "Password (prefer $"+passwordEnv+")")
	f.StringVar(&o.logLevel, "log-level", "", "Service log level: "+strings.Join(tunnel.LogLevels, ", ")+" (default: remembered, initially "+tunnel.DefaultLogLevel+")")
	f.BoolVar(&o.reauth, "reauth", false, "Re-authenticate automatically (default: remembered, initially on; --reauth=false turns it off)")
	f.StringVar(&o.searchDomains, "search-domains", "", "Comma separated DNS search domains")
	f.BoolVar(&o.defaultRoute, "default-route", false, "Route all traffic through the tunnel")
	f.BoolVar(&o.noRouting, "no-routing", false, "Do not change routes")
	f.BoolVar(&o.noDNS, "no-dns", false, "Do not change DNS settings")
	f.BoolVar(&o.noCertCheck, "no-cert-check", false, "Skip server certificate checks")
	f.StringVar(&o.tunnelType, "tunnel-type", "", "Tunnel type: ssl, ipsec (default: remembered, initially ssl)")
	f.StringVar(&o.caCert, "ca-cert", "", "CA certificate file")
	f.StringVar(&o.loginType, "login-type", "", "Login type: password, mfa, ms-auth, emergency, sso (default: remembered, initially ms-auth)")
	f.BoolVar(&o.remember, "remember", false, "Remember these settings")
	f.DurationVar(&o.wait, "wait", 0, "Wait up to this long for the tunnel to come up")
}

func registerCommands(root *cobra.Command) {
	addConnectFlags(connectCmd, &connectOpts)
	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Keep printing status changes")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of events to show")

	configCmd.AddCommand(configShowCmd, configResetCmd, configPathCmd)
	root.AddCommand(connectCmd, disconnectCmd, statusCmd, configCmd, historyCmd, versionCmd)
}
