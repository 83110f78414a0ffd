package config

import (
	"os"
	"path/filepath"
	"testing"
)

const schemaPath = "../../schemas/cleansend.cue"

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stream.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
port: /dev/ttyACM0
baud: 115200
rate_hz: 20
mission_profile: track_day
duration_s: 5
`)
	cfg, err := Load(path, schemaPath)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Port != "/dev/ttyACM0" {
		t.Errorf("expected port /dev/ttyACM0, got %q", cfg.Port)
	}
	if cfg.Baud != 115200 {
		t.Errorf("expected baud 115200, got %d", cfg.Baud)
	}
	if cfg.RateHz != 20 {
		t.Errorf("expected rate 20, got %v", cfg.RateHz)
	}
	if cfg.MissionProfile != "track_day" {
		t.Errorf("expected profile track_day, got %q", cfg.MissionProfile)
	}
	if cfg.StatusEveryS != 30 {
		t.Errorf("expected default status cadence to survive overlay, got %v", cfg.StatusEveryS)
	}
}

func TestLoadRejectsNonPositiveBaud(t *testing.T) {
	path := writeConfig(t, `
port: /dev/ttyACM0
baud: -9600
`)
	if _, err := Load(path, schemaPath); err == nil {
		t.Error("expected validation error for negative baud, got nil")
	}
}

func TestLoadRejectsWrongType(t *testing.T) {
	path := writeConfig(t, `
rate_hz: fast
`)
	if _, err := Load(path, schemaPath); err == nil {
		t.Error("expected validation error for string rate, got nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), schemaPath); err == nil {
		t.Error("expected error for missing config file, got nil")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Baud != 57600 {
		t.Errorf("expected baud 57600, got %d", cfg.Baud)
	}
	if cfg.RateHz != 10 {
		t.Errorf("expected rate 10, got %v", cfg.RateHz)
	}
	if cfg.MissionProfile != "city" {
		t.Errorf("expected city profile, got %q", cfg.MissionProfile)
	}
	if cfg.DurationS != 0 {
		t.Errorf("expected unbounded duration, got %v", cfg.DurationS)
	}
	if cfg.StatusEveryS != 30 {
		t.Errorf("expected 30s status cadence, got %v", cfg.StatusEveryS)
	}
	if cfg.SoftErrors {
		t.Error("expected hard write errors by default")
	}
}
