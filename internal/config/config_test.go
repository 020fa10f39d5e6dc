package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Pool.MaxSize != 1 {
		t.Errorf("Pool.MaxSize = %d, want 1", cfg.Pool.MaxSize)
	}
	if cfg.Pool.MinSize != 0 {
		t.Errorf("Pool.MinSize = %d, want 0", cfg.Pool.MinSize)
	}
	if cfg.Pool.IdleTimeout != 30*time.Second {
		t.Errorf("Pool.IdleTimeout = %v, want 30s", cfg.Pool.IdleTimeout)
	}
	if cfg.Pool.ReapInterval != time.Second {
		t.Errorf("Pool.ReapInterval = %v, want 1s", cfg.Pool.ReapInterval)
	}
	if !cfg.Pool.RefreshIdle {
		t.Error("Pool.RefreshIdle = false, want true")
	}
	if cfg.Pool.PriorityRange != 10 {
		t.Errorf("Pool.PriorityRange = %d, want 10", cfg.Pool.PriorityRange)
	}
	if cfg.Backend.Mode != "valkey" {
		t.Errorf("Backend.Mode = %q, want valkey", cfg.Backend.Mode)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("POOL_MAX_SIZE", "20")
	t.Setenv("POOL_MIN_SIZE", "5")
	t.Setenv("POOL_IDLE_TIMEOUT", "2m")
	t.Setenv("POOL_REFRESH_IDLE", "false")
	t.Setenv("BACKEND_MODE", "nats")

	cfg := Load()

	if cfg.Pool.MaxSize != 20 {
		t.Errorf("Pool.MaxSize = %d, want 20", cfg.Pool.MaxSize)
	}
	if cfg.Pool.MinSize != 5 {
		t.Errorf("Pool.MinSize = %d, want 5", cfg.Pool.MinSize)
	}
	if cfg.Pool.IdleTimeout != 2*time.Minute {
		t.Errorf("Pool.IdleTimeout = %v, want 2m", cfg.Pool.IdleTimeout)
	}
	if cfg.Pool.RefreshIdle {
		t.Error("Pool.RefreshIdle = true, want false")
	}
	if cfg.Backend.Mode != "nats" {
		t.Errorf("Backend.Mode = %q, want nats", cfg.Backend.Mode)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("POOL_MAX_SIZE", "not-a-number")
	t.Setenv("POOL_IDLE_TIMEOUT", "soon")
	t.Setenv("POOL_REFRESH_IDLE", "sometimes")

	cfg := Load()

	if cfg.Pool.MaxSize != 1 {
		t.Errorf("Pool.MaxSize = %d, want default 1", cfg.Pool.MaxSize)
	}
	if cfg.Pool.IdleTimeout != 30*time.Second {
		t.Errorf("Pool.IdleTimeout = %v, want default 30s", cfg.Pool.IdleTimeout)
	}
	if !cfg.Pool.RefreshIdle {
		t.Error("Pool.RefreshIdle = false, want default true")
	}
}

func TestLoad_TOMLFileLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poold.toml")
	content := `
POOL_MAX_SIZE = 8
POOL_IDLE_TIMEOUT = "45s"
BACKEND_MODE = "websocket"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("POOLD_CONFIG", path)
	// Environment still wins over the file.
	t.Setenv("BACKEND_MODE", "mysql")

	cfg := Load()

	if cfg.Pool.MaxSize != 8 {
		t.Errorf("Pool.MaxSize = %d, want 8 (from file)", cfg.Pool.MaxSize)
	}
	if cfg.Pool.IdleTimeout != 45*time.Second {
		t.Errorf("Pool.IdleTimeout = %v, want 45s (from file)", cfg.Pool.IdleTimeout)
	}
	if cfg.Backend.Mode != "mysql" {
		t.Errorf("Backend.Mode = %q, want mysql (env wins over file)", cfg.Backend.Mode)
	}
}

func TestLoad_MissingConfigFileIgnored(t *testing.T) {
	t.Setenv("POOLD_CONFIG", filepath.Join(t.TempDir(), "absent.toml"))

	cfg := Load()

	if cfg.Pool.MaxSize != 1 {
		t.Errorf("Pool.MaxSize = %d, want default 1", cfg.Pool.MaxSize)
	}
}
