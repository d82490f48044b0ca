package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yllada/snx-gui/common"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServiceAddress != "127.0.0.1:7779" {
		t.Errorf("ServiceAddress = %q", cfg.ServiceAddress)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
	if cfg.RequestTimeout != 200*time.Millisecond {
		t.Errorf("RequestTimeout = %v, want 200ms", cfg.RequestTimeout)
	}
	if cfg.UserConfigPath != "user-config.json" {
		t.Errorf("UserConfigPath = %q", cfg.UserConfigPath)
	}
	if cfg.Theme != common.ThemeAuto {
		t.Errorf("Theme = %q", cfg.Theme)
	}
}

func TestLoadFrom_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}
	if !common.FileExists(path) {
		t.Fatal("LoadFrom() should write the default file")
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "poll_interval: 5s") {
		t.Errorf("default file should store durations as strings:\n%s", data)
	}
}

func TestLoadFrom_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.ServiceAddress = "127.0.0.1:9000"
	cfg.PollInterval = 10 * time.Second
	cfg.Theme = common.ThemeDark
	cfg.HistoryEnabled = false
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.ServiceAddress != "127.0.0.1:9000" || loaded.PollInterval != 10*time.Second ||
		loaded.Theme != common.ThemeDark || loaded.HistoryEnabled {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestSave_ServiceOverrideNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.OverrideServiceAddress("127.0.0.1:9100")
	cfg.Theme = common.ThemeDark
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.ServiceAddress != common.DefaultServiceAddress {
		t.Errorf("ServiceAddress = %q, want %q on disk", loaded.ServiceAddress, common.DefaultServiceAddress)
	}
	if loaded.Theme != common.ThemeDark {
		t.Errorf("Theme = %q, want other fields saved", loaded.Theme)
	}
	if cfg.ServiceAddress != "127.0.0.1:9100" {
		t.Errorf("in-memory ServiceAddress = %q, want the override", cfg.ServiceAddress)
	}

	// An explicit edit replaces the override and is written.
	cfg.ServiceAddress = "127.0.0.1:9200"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err = LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.ServiceAddress != "127.0.0.1:9200" {
		t.Errorf("ServiceAddress = %q, want the edited value", loaded.ServiceAddress)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("theme: light\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Theme != common.ThemeLight {
		t.Errorf("Theme = %q, want light", cfg.Theme)
	}
	if cfg.ServiceAddress != common.DefaultServiceAddress {
		t.Errorf("ServiceAddress = %q, want default", cfg.ServiceAddress)
	}
	if !cfg.ShowNotifications {
		t.Error("unset booleans should keep their defaults")
	}
}

func TestLoadFrom_RejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("no_such_option: true\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFrom(path); !errors.Is(err, common.ErrConfigLoad) {
		t.Errorf("LoadFrom() error = %v, want ErrConfigLoad", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		ServiceAddress: "localhost",
		PollInterval:   10 * time.Millisecond,
		RequestTimeout: time.Minute,
		Theme:          "neon",
	}
	cfg.validate()

	defaults := DefaultConfig()
	if cfg.ServiceAddress != defaults.ServiceAddress {
		t.Errorf("ServiceAddress = %q, want default", cfg.ServiceAddress)
	}
	if cfg.PollInterval != defaults.PollInterval {
		t.Errorf("PollInterval = %v, want default", cfg.PollInterval)
	}
	if cfg.RequestTimeout != defaults.RequestTimeout {
		t.Errorf("RequestTimeout = %v, want default", cfg.RequestTimeout)
	}
	if cfg.Theme != common.ThemeAuto {
		t.Errorf("Theme = %q, want auto", cfg.Theme)
	}
	if cfg.UserConfigPath != defaults.UserConfigPath {
		t.Errorf("UserConfigPath = %q, want default", cfg.UserConfigPath)
	}
}

func TestResolvedUserConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := DefaultConfig()
	cfg.UserConfigPath = "~/snx/user-config.json"
	if got := cfg.ResolvedUserConfigPath(); got != filepath.Join(home, "snx/user-config.json") {
		t.Errorf("ResolvedUserConfigPath() = %q", got)
	}
}
