package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/config"
	"github.com/yllada/snx-gui/history"
	"github.com/yllada/snx-gui/notify"
	"github.com/yllada/snx-gui/tui"
	"github.com/yllada/snx-gui/ui"
	"github.com/yllada/snx-gui/vpn"
)

// Version and BuildTime are set at build time.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// logLevelEnv sets the client log level when --verbose is not given.
const logLevelEnv = "SNX_GUI_LOG_LEVEL"

var (
	verbose        bool
	serviceAddress string
	configPath     string
)

var rootCmd = &cobra.Command{
	Use:   "snx-gui",
	Short: "Client for the SNX tunnel service",
	Long: `Desktop and terminal front-end for the SNX tunnel service.

Without a subcommand the GTK window is opened.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := common.LevelInfo
		if env := os.Getenv(logLevelEnv); env != "" {
			level = common.ParseLogLevel(env)
		}
		if verbose {
			level = common.LevelDebug
		}
		if err := common.InitLogger(common.LogConfig{
			Level:       level,
			EnableFile:  true,
			MaxFileSize: 5 * 1024 * 1024,
			MaxBackups:  5,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGUI(cmd)
	},
}

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Open the desktop window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGUI(cmd)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal interface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(false)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return tui.Run(ctx, s.manager)
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&serviceAddress, "service", "", "Tunnel service address (default from preferences)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Preferences file (default ~/.config/snx-gui/config.yaml)")

	rootCmd.AddCommand(guiCmd, tuiCmd)
	registerCommands(rootCmd)
}

// Execute runs the root command.
func Execute() {
	defer common.CloseLogger()
	if err := rootCmd.Execute(); err != nil {
		common.CloseLogger()
		os.Exit(1)
	}
}

// SetVersionInfo sets version information for the CLI.
func SetVersionInfo(version, buildTime string) {
	Version = version
	BuildTime = buildTime
	rootCmd.Version = version + " (built " + buildTime + ")"
}

// session holds everything a command needs to talk to the service.
type session struct {
	config   *config.Config
	manager  *vpn.Manager
	history  *history.Store
	notifier *notify.Desktop
}

// openSession loads the preferences and builds the manager. Desktop
// notifications are only wired when notifications is true.
func openSession(notifications bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{config: cfg}
	var opts []vpn.Option

	if cfg.HistoryEnabled {
		s.history = openHistory()
		if s.history != nil {
			opts = append(opts, vpn.WithRecorder(s.history))
		}
	}

	s.notifier = notify.New(notifications && cfg.ShowNotifications)
	if notifications {
		opts = append(opts, vpn.WithNotifier(s.notifier))
	}

	s.manager = vpn.NewManager(cfg, opts...)
	return s, nil
}

// Close releases the history database.
func (s *session) Close() {
	if s.history == nil {
		return
	}
	if err := s.history.Close(); err != nil {
		common.LogWarn("Could not close history: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(common.ExpandHome(configPath))
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if serviceAddress != "" {
		cfg.OverrideServiceAddress(serviceAddress)
	}
	return cfg, nil
}

// openHistory opens the history database and drops expired events.
// Failures are logged and disable the history for this run.
func openHistory() *history.Store {
	path, err := history.DefaultPath()
	if err != nil {
		common.LogWarn("History disabled: %v", err)
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		common.LogWarn("History disabled: %v", err)
		return nil
	}
	if n, err := store.Prune(context.Background(), common.HistoryRetention); err != nil {
		common.LogWarn("Could not prune history: %v", err)
	} else if n > 0 {
		common.LogDebug("Pruned %d history events", n)
	}
	return store
}

func runGUI(cmd *cobra.Command) error {
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.Close()

	common.LogInfo("Starting %s %s", common.AppName, Version)
	app := ui.NewApplication(s.config, s.manager, s.notifier, s.history, Version)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			common.LogInfo("Received shutdown signal")
			app.QuitFromSignal()
		case <-done:
		}
	}()

	// GTK parses its own arguments; cobra has already consumed ours.
	if code := app.Run([]string{os.Args[0]}); code != 0 {
		common.LogWarn("Application exited with code %d", code)
		return fmt.Errorf("application exited with code %d", code)
	}
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
