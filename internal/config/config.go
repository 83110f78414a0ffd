// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/york-fs/cleansend/internal/profile"
)

// Config is the root configuration for one telemetry stream.
type Config struct {
	Port           string  `yaml:"port"`
	Baud           int     `yaml:"baud"`
	RateHz         float64 `yaml:"rate_hz"`
	MissionProfile string  `yaml:"mission_profile"`
	DurationS      float64 `yaml:"duration_s"`
	Seed           int64   `yaml:"seed"`
	LogFile        string  `yaml:"log_file"`
	StatusEveryS   float64 `yaml:"status_every_s"`
	SoftErrors     bool    `yaml:"soft_errors"`
}

// Default returns the stream settings used when neither config file nor
// flags say otherwise. DurationS zero means run until interrupted; Seed
// zero means time-seeded.
func Default() Config {
	return Config{
		Baud:           57600,
		RateHz:         10,
		MissionProfile: profile.DefaultName,
		StatusEveryS:   30,
	}
}

// Load reads a YAML config validated against a CUE schema. File values
// overlay the defaults.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
