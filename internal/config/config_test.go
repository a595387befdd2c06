package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PASSCTL_HOME", dir)

	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if cfg.VaultPath != dir {
		t.Errorf("VaultPath = %q, want %q", cfg.VaultPath, dir)
	}
	if cfg.Lockout.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want %d", cfg.Lockout.MaxAttempts, DefaultMaxAttempts)
	}
	if cfg.Lockout.Window() != DefaultLockoutWindow {
		t.Errorf("Window = %v, want %v", cfg.Lockout.Window(), DefaultLockoutWindow)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("PASSCTL_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Lockout.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("expected defaults with no config file, got %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PASSCTL_HOME", dir)

	content := "lockout:\n  max_attempts: 5\n  window_minutes: 30\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Lockout.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Lockout.MaxAttempts)
	}
	if cfg.Lockout.Window() != 30*time.Minute {
		t.Errorf("Window = %v, want 30m", cfg.Lockout.Window())
	}
	// Unset vault_path falls back to the default
	if cfg.VaultPath != dir {
		t.Errorf("VaultPath = %q, want %q", cfg.VaultPath, dir)
	}
}

func TestLoadClampsLockout(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PASSCTL_HOME", dir)

	content := "lockout:\n  max_attempts: 0\n  window_minutes: -1\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Lockout.MaxAttempts != DefaultMaxAttempts {
		t.Errorf("MaxAttempts = %d, want default %d", cfg.Lockout.MaxAttempts, DefaultMaxAttempts)
	}
	if cfg.Lockout.Window() != DefaultLockoutWindow {
		t.Errorf("Window = %v, want default %v", cfg.Lockout.Window(), DefaultLockoutWindow)
	}
}
