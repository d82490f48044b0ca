package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/tunnel"
)

// LoadUserConfig reads the remembered form from path.
//
// A missing file yields the defaults and no error. A malformed file also
// yields the defaults, together with an error wrapping common.ErrConfigLoad
// that callers are expected to log and otherwise ignore.
func LoadUserConfig(path string) (tunnel.UserConfig, error) {
	common.LogInfo("Reading config from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			common.LogInfo("Config file not found")
			return tunnel.DefaultUserConfig(), nil
		}
		return tunnel.DefaultUserConfig(), fmt.Errorf("%w: %v", common.ErrConfigLoad, err)
	}

	// Keys missing from the file keep their default values.
	cfg := tunnel.DefaultUserConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return tunnel.DefaultUserConfig(), fmt.Errorf("%w: %s: %v", common.ErrConfigLoad, path, err)
	}

	// Files written by hand or by older versions may carry a password.
	cfg.TunnelParams = cfg.TunnelParams.WithoutPassword()
	if !cfg.RememberMe {
		return tunnel.DefaultUserConfig(), nil
	}
	return cfg, nil
}

// SaveUserConfig writes cfg to path. With remember-me on, the parameters
// are stored without the password; with it off, the file is reset to the
// defaults so nothing entered in the form survives.
func SaveUserConfig(path string, cfg tunnel.UserConfig) error {
	common.LogDebug("Saving config to %s", path)

	record := PersistedUserConfig(cfg)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}
	if err := common.WriteFileAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfigSave, err)
	}
	return nil
}

// PersistedUserConfig returns exactly what SaveUserConfig writes for cfg.
func PersistedUserConfig(cfg tunnel.UserConfig) tunnel.UserConfig {
	if !cfg.RememberMe {
		return tunnel.DefaultUserConfig()
	}
	return tunnel.UserConfig{
		TunnelParams: cfg.TunnelParams.WithoutPassword(),
		RememberMe:   true,
	}
}
