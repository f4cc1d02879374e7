package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBPath != "housy.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "housy.db")
	}
	if cfg.SessionTTL != 720*time.Hour {
		t.Errorf("SessionTTL = %v, want 720h", cfg.SessionTTL)
	}
	if cfg.PushEnabled() {
		t.Error("expected push disabled without VAPID keys")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOUSY_PORT", "9090")
	t.Setenv("HOUSY_REMINDER_INTERVAL", "30s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.ReminderEvery != 30*time.Second {
		t.Errorf("ReminderEvery = %v, want 30s", cfg.ReminderEvery)
	}
}

func TestLoadDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("HOUSY_DB_PATH=from-file.db\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("HOUSY_DB_PATH") })

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "from-file.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "from-file.db")
	}
}

func TestLocationFallback(t *testing.T) {
	cfg := &Config{Timezone: "Not/AZone"}
	if cfg.Location() != time.UTC {
		t.Error("expected UTC for unknown timezone")
	}
}

func TestLoadAllowedOrigins(t *testing.T) {
	t.Setenv("HOUSY_ALLOWED_ORIGINS", "housy.app,*.housy.app")
	t.Setenv("HOUSY_SECURE_COOKIE", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "*.housy.app" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if !cfg.SecureCookie {
		t.Error("expected SecureCookie")
	}
}
