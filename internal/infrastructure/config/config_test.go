package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
service:
  id: "test-fleet"
devices:
  control_binary: "/usr/local/bin/simctl"
  poll_interval_ms: 500
capture:
  encoder_binary: "/opt/homebrew/bin/ffmpeg"
  default_fps: 24
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
api:
  host: "0.0.0.0"
  port: 8080
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ID != "test-fleet" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "test-fleet")
	}

	if cfg.Devices.ControlBinary != "/usr/local/bin/simctl" {
		t.Errorf("Devices.ControlBinary = %q, want %q", cfg.Devices.ControlBinary, "/usr/local/bin/simctl")
	}

	if cfg.PollInterval() != 500*time.Millisecond {
		t.Errorf("PollInterval() = %v, want %v", cfg.PollInterval(), 500*time.Millisecond)
	}

	if cfg.Capture.DefaultFPS != 24 {
		t.Errorf("Capture.DefaultFPS = %d, want 24", cfg.Capture.DefaultFPS)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
}

func TestLoad_Defaults(t *testing.T) {
	content := `
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Devices.ControlBinary != "simctl" {
		t.Errorf("default ControlBinary = %q, want %q", cfg.Devices.ControlBinary, "simctl")
	}
	if cfg.Devices.PollIntervalMs != 1000 {
		t.Errorf("default PollIntervalMs = %d, want 1000", cfg.Devices.PollIntervalMs)
	}
	if cfg.Capture.EncoderBinary != "ffmpeg" {
		t.Errorf("default EncoderBinary = %q, want %q", cfg.Capture.EncoderBinary, "ffmpeg")
	}
	if cfg.Capture.DefaultFPS != 30 {
		t.Errorf("default DefaultFPS = %d, want 30", cfg.Capture.DefaultFPS)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("default API.Port = %d, want 8080", cfg.API.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
service:
  id: ""
database:
  path: "/tmp/test.db"
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	content := `
devices:
  control_binary: "simctl"
security:
  jwt:
    secret: "test-secret-key-at-least-32-chars!"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("SIMFLEET_DEVICES_CONTROL_BINARY", "/custom/simctl")
	t.Setenv("SIMFLEET_CAPTURE_DEFAULT_FPS", "15")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Devices.ControlBinary != "/custom/simctl" {
		t.Errorf("ControlBinary = %q, want env override %q", cfg.Devices.ControlBinary, "/custom/simctl")
	}
	if cfg.Capture.DefaultFPS != 15 {
		t.Errorf("DefaultFPS = %d, want env override 15", cfg.Capture.DefaultFPS)
	}
}

func TestValidate_WeakJWTSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = "short"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for short JWT secret, got nil")
	}
}

func TestValidate_BadFPS(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWT.Secret = "test-secret-key-at-least-32-chars!"
	cfg.Capture.DefaultFPS = 0

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() expected error for fps=0, got nil")
	}
}
