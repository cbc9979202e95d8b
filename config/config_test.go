package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.UserServiceURL != "http://localhost:8081" || cfg.ReservationServiceURL != "http://localhost:8084" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.HTTPTimeout != 12*time.Second {
		t.Fatalf("expected 12s timeout, got %s", cfg.HTTPTimeout)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected info log level, got %q", cfg.LogLevel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("KTX_SEAT_SERVICE_URL", "http://seats.internal/")
	t.Setenv("KTX_HTTP_TIMEOUT", "3s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got := cfg.Endpoints().Seat; got != "http://seats.internal" {
		t.Fatalf("expected trimmed seat url, got %q", got)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %s", cfg.HTTPTimeout)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	body := "train_service_url: http://trains:9000\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.TrainServiceURL != "http://trains:9000" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.UserServiceURL != "http://localhost:8081" {
		t.Fatalf("expected default user url, got %q", cfg.UserServiceURL)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("KTX_USER_SERVICE_URL", "")
	os.Unsetenv("KTX_USER_SERVICE_URL")
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("KTX_USER_SERVICE_URL=http://users:7000\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if cfg.UserServiceURL != "http://users:7000" {
		t.Fatalf("expected .env value, got %q", cfg.UserServiceURL)
	}
}
