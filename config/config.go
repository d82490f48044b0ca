// Package config provides configuration management for the SNX client.
// It handles the application preferences (YAML) and the user's remembered
// tunnel configuration (JSON).
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yllada/snx-gui/common"
)

// Config holds the application preferences.
// All settings are persisted to a YAML file in the user's config directory.
type Config struct {
	// ServiceAddress is the UDP address of the tunnel service.
	ServiceAddress string `yaml:"service_address"`
	// PollInterval is how often the service status is queried.
	PollInterval time.Duration `yaml:"poll_interval"`
	// RequestTimeout bounds each socket read and write.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// UserConfigPath is where the remembered form is stored.
	// Relative paths are resolved against the working directory.
	UserConfigPath string `yaml:"user_config_path"`
	// ShowNotifications enables desktop notifications for status changes.
	ShowNotifications bool `yaml:"show_notifications"`
	// MinimizeToTray hides the window instead of quitting when closed.
	MinimizeToTray bool `yaml:"minimize_to_tray"`
	// HistoryEnabled records connection events in a local database.
	HistoryEnabled bool `yaml:"history_enabled"`
	// Theme sets the color theme: "light", "dark", or "auto".
	Theme string `yaml:"theme"`

	path string
	// fileServiceAddress is the address on disk while a command line
	// override is active.
	fileServiceAddress string
	serviceOverride    string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ServiceAddress:    common.DefaultServiceAddress,
		PollInterval:      common.StatusPollInterval,
		RequestTimeout:    common.RequestTimeout,
		UserConfigPath:    common.UserConfigFileName,
		ShowNotifications: true,
		MinimizeToTray:    false,
		HistoryEnabled:    true,
		Theme:             common.ThemeAuto,
	}
}

// Load loads the configuration from the default location.
// If the file doesn't exist, one is created with default values.
func Load() (*Config, error) {
	configPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from path, creating it with defaults
// when it doesn't exist.
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.path = configPath
		if err := cfg.Save(); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: error opening configuration: %v", common.ErrConfigLoad, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	config := DefaultConfig()
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("%w: error parsing configuration: %v", common.ErrConfigLoad, err)
	}

	config.validate()
	config.path = configPath
	return config, nil
}

// validate resets invalid values to their defaults.
func (c *Config) validate() {
	defaults := DefaultConfig()

	switch c.Theme {
	case common.ThemeAuto, common.ThemeLight, common.ThemeDark:
	default:
		c.Theme = defaults.Theme
	}

	if _, _, err := net.SplitHostPort(c.ServiceAddress); err != nil {
		common.LogWarn("Invalid service address %q, using %s", c.ServiceAddress, defaults.ServiceAddress)
		c.ServiceAddress = defaults.ServiceAddress
	}
	if c.PollInterval < time.Second {
		c.PollInterval = defaults.PollInterval
	}
	if c.RequestTimeout <= 0 || c.RequestTimeout > 10*time.Second {
		c.RequestTimeout = defaults.RequestTimeout
	}
	if c.UserConfigPath == "" {
		c.UserConfigPath = defaults.UserConfigPath
	}
}

// OverrideServiceAddress uses addr for this run only. Save keeps the
// address from the file unless ServiceAddress is changed again.
func (c *Config) OverrideServiceAddress(addr string) {
	if c.serviceOverride == "" {
		c.fileServiceAddress = c.ServiceAddress
	}
	c.ServiceAddress = addr
	c.serviceOverride = addr
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save saves the configuration to the file it was loaded from, or to the
// default location.
func (c *Config) Save() error {
	configPath := c.path
	if configPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
		c.path = p
	}

	record := *c
	if c.serviceOverride != "" && c.ServiceAddress == c.serviceOverride {
		record.ServiceAddress = c.fileServiceAddress
	}

	data, err := yaml.Marshal(&record)
	if err != nil {
		return fmt.Errorf("%w: error serializing configuration: %v", common.ErrConfigSave, err)
	}

	if err := common.WriteFileAtomic(configPath, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}

	return nil
}

// ResolvedUserConfigPath returns UserConfigPath with "~" expanded.
func (c *Config) ResolvedUserConfigPath() string {
	return common.ExpandHome(c.UserConfigPath)
}

// DefaultPath returns ~/.config/snx-gui/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", common.ConfigDirName, common.PreferencesFileName), nil
}
