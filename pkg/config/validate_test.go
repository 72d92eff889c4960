package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"stratus-hq/skywatch/pkg/gate"
)

// validConfig returns a fully valid configuration for mutation in tests.
func validConfig() *Config {
	cfg := &Config{}
	cfg.Tile.Enabled = true
	cfg.Tile.Locator = "https://tiles.example.net/{year}/{month}/{day}/{index}.png"
	cfg.Camera.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{
			name:   "no loop enabled",
			mutate: func(c *Config) { c.Tile.Enabled = false; c.Camera.Enabled = false },
			field:  "tile.enabled",
		},
		{
			name:   "missing locator",
			mutate: func(c *Config) { c.Tile.Locator = "" },
			field:  "tile.locator",
		},
		{
			name:   "malformed locator placeholder",
			mutate: func(c *Config) { c.Tile.Locator = "https://example.net/{bogus}.png" },
			field:  "tile.locator",
		},
		{
			name:   "non-positive tile interval",
			mutate: func(c *Config) { c.Tile.Interval = -time.Minute },
			field:  "tile.interval",
		},
		{
			name:   "inverted tile window",
			mutate: func(c *Config) { c.Tile.Window = &gate.Window{StartHourUTC: 18, EndHourUTC: 3} },
			field:  "tile.window",
		},
		{
			name:   "missing camera command",
			mutate: func(c *Config) { c.Camera.Command = "" },
			field:  "camera.command",
		},
		{
			name:   "non-positive camera interval",
			mutate: func(c *Config) { c.Camera.Interval = 0 },
			field:  "camera.interval",
		},
		{
			name:   "non-positive max count",
			mutate: func(c *Config) { c.Camera.Store.MaxCount = -1 },
			field:  "camera.store.max_count",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Telemetry.Logging.Level = "loud" },
			field:  "telemetry.logging.level",
		},
		{
			name:   "bad log format",
			mutate: func(c *Config) { c.Telemetry.Logging.Format = "xml" },
			field:  "telemetry.logging.format",
		},
		{
			name:   "bad webhook URL",
			mutate: func(c *Config) { c.Notify.WebhookURL = "ftp://example.net/hook" },
			field:  "notify.webhook_url",
		},
		{
			name:   "bad sweep schedule",
			mutate: func(c *Config) { c.Sweep.Schedule = "every day at three" },
			field:  "sweep.schedule",
		},
		{
			name:   "journal enabled without path",
			mutate: func(c *Config) { c.Journal.Enabled = true; c.Journal.Path = "" },
			field:  "journal.path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Validate accepted an invalid config")
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for field %q in %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidate_DisabledLoopSkipsChecks(t *testing.T) {
	cfg := validConfig()
	cfg.Tile.Enabled = false
	cfg.Tile.Locator = "not even a URL"

	if err := Validate(cfg); err != nil {
		t.Errorf("disabled loop validated: %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "tile.interval", Message: "interval must be positive"},
		{Field: "camera.command", Message: "capture command is required"},
	}}

	msg := err.Error()
	if !strings.Contains(msg, "2 errors") {
		t.Errorf("message does not report error count: %q", msg)
	}
	if !strings.Contains(msg, "tile.interval") || !strings.Contains(msg, "camera.command") {
		t.Errorf("message does not list field paths: %q", msg)
	}
}
