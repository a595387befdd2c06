// Package config loads the passctl configuration file. All settings have
// working defaults; the file is optional.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultDirName       = ".passctl"
	ConfigFileName       = "config.yaml"
	DefaultMaxAttempts   = 3
	DefaultLockoutWindow = 15 * time.Minute
)

// Config holds the settings read from ~/.passctl/config.yaml.
type Config struct {
	// VaultPath is the directory holding the vault database.
	VaultPath string `yaml:"vault_path"`

	// Lockout tunes brute-force protection.
	Lockout LockoutConfig `yaml:"lockout"`
}

// LockoutConfig tunes the failed-attempt lockout policy.
type LockoutConfig struct {
	MaxAttempts   int `yaml:"max_attempts"`
	WindowMinutes int `yaml:"window_minutes"`
}

// Window returns the lockout window as a duration.
func (l LockoutConfig) Window() time.Duration {
	return time.Duration(l.WindowMinutes) * time.Minute
}

// Default returns the configuration used when no file exists. The vault
// directory is $PASSCTL_HOME if set, otherwise ~/.passctl.
func Default() (*Config, error) {
	dir := os.Getenv("PASSCTL_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: failed to get user home directory: %w", err)
		}
		dir = filepath.Join(home, DefaultDirName)
	}

	return &Config{
		VaultPath: dir,
		Lockout: LockoutConfig{
			MaxAttempts:   DefaultMaxAttempts,
			WindowMinutes: int(DefaultLockoutWindow / time.Minute),
		},
	}, nil
}

// Load reads the configuration file from the vault directory, overlaying
// it on the defaults. A missing file is not an error.
func Load() (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(cfg.VaultPath, ConfigFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse config file: %w", err)
	}

	// Never allow a config file to disable lockout entirely
	if cfg.Lockout.MaxAttempts <= 0 {
		cfg.Lockout.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Lockout.WindowMinutes <= 0 {
		cfg.Lockout.WindowMinutes = int(DefaultLockoutWindow / time.Minute)
	}
	if cfg.VaultPath == "" {
		def, err := Default()
		if err != nil {
			return nil, err
		}
		cfg.VaultPath = def.VaultPath
	}

	return cfg, nil
}
