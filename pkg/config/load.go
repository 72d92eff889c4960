package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SKYWATCH_SECTION_FIELD (e.g., SKYWATCH_TILE_LOCATOR).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format SKYWATCH_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Telemetry overrides
	if val := os.Getenv("SKYWATCH_TELEMETRY_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.ListenAddress = val
	}
	if val := os.Getenv("SKYWATCH_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SKYWATCH_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SKYWATCH_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}

	// Journal overrides
	if val := os.Getenv("SKYWATCH_JOURNAL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if val := os.Getenv("SKYWATCH_JOURNAL_PATH"); val != "" {
		cfg.Journal.Path = val
	}

	// Notify overrides
	if val := os.Getenv("SKYWATCH_NOTIFY_WEBHOOK_URL"); val != "" {
		cfg.Notify.WebhookURL = val
	}
	if val := os.Getenv("SKYWATCH_NOTIFY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Notify.Timeout = d
		}
	}

	// Sweep overrides
	if val := os.Getenv("SKYWATCH_SWEEP_SCHEDULE"); val != "" {
		cfg.Sweep.Schedule = val
	}
	if val := os.Getenv("SKYWATCH_SWEEP_JOURNAL_RETENTION"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sweep.JournalRetention = d
		}
	}

	// Tile loop overrides
	if val := os.Getenv("SKYWATCH_TILE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tile.Enabled = b
		}
	}
	if val := os.Getenv("SKYWATCH_TILE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Tile.Interval = d
		}
	}
	if val := os.Getenv("SKYWATCH_TILE_LOCATOR"); val != "" {
		cfg.Tile.Locator = val
	}
	if val := os.Getenv("SKYWATCH_TILE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Tile.Timeout = d
		}
	}
	if val := os.Getenv("SKYWATCH_TILE_STORE_DIR"); val != "" {
		cfg.Tile.Store.Dir = val
	}

	// Camera loop overrides
	if val := os.Getenv("SKYWATCH_CAMERA_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Camera.Enabled = b
		}
	}
	if val := os.Getenv("SKYWATCH_CAMERA_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Camera.Interval = d
		}
	}
	if val := os.Getenv("SKYWATCH_CAMERA_COMMAND"); val != "" {
		cfg.Camera.Command = val
	}
	if val := os.Getenv("SKYWATCH_CAMERA_STORE_DIR"); val != "" {
		cfg.Camera.Store.Dir = val
	}
	if val := os.Getenv("SKYWATCH_CAMERA_STORE_MAX_COUNT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Camera.Store.MaxCount = i
		}
	}
}
