package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"

	"stratus-hq/skywatch/pkg/acquire"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "tile.locator").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	if !cfg.Tile.Enabled && !cfg.Camera.Enabled {
		errs = append(errs, FieldError{
			Field:   "tile.enabled",
			Message: "at least one acquisition loop must be enabled",
		})
	}

	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateNotify(&cfg.Notify)...)
	errs = append(errs, validateSweep(&cfg.Sweep)...)

	if cfg.Tile.Enabled {
		errs = append(errs, validateTile(&cfg.Tile)...)
	}
	if cfg.Camera.Enabled {
		errs = append(errs, validateCamera(&cfg.Camera)...)
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	return errs
}

// validateJournal validates journal configuration.
func validateJournal(cfg *JournalConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{
			Field:   "journal.path",
			Message: "journal path is required when the journal is enabled",
		})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "journal.busy_timeout",
			Message: "busy timeout must be non-negative",
		})
	}

	return errs
}

// validateNotify validates notify configuration.
func validateNotify(cfg *NotifyConfig) []FieldError {
	var errs []FieldError

	if cfg.WebhookURL != "" {
		u, err := url.Parse(cfg.WebhookURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   "notify.webhook_url",
				Message: fmt.Sprintf("invalid webhook URL %q (must be http or https)", cfg.WebhookURL),
			})
		}
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "notify.timeout",
			Message: "timeout must be non-negative",
		})
	}

	return errs
}

// validateSweep validates sweep configuration.
func validateSweep(cfg *SweepConfig) []FieldError {
	var errs []FieldError

	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "sweep.schedule",
				Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.Schedule, err),
			})
		}
	}
	if cfg.JournalRetention < 0 {
		errs = append(errs, FieldError{
			Field:   "sweep.journal_retention",
			Message: "journal retention must be non-negative",
		})
	}

	return errs
}

// validateTile validates the tile loop configuration.
func validateTile(cfg *TileLoopConfig) []FieldError {
	var errs []FieldError

	if cfg.Interval <= 0 {
		errs = append(errs, FieldError{
			Field:   "tile.interval",
			Message: "interval must be positive",
		})
	}
	if cfg.Locator == "" {
		errs = append(errs, FieldError{
			Field:   "tile.locator",
			Message: "locator is required",
		})
	} else if _, err := acquire.ParseLocator(cfg.Locator); err != nil {
		errs = append(errs, FieldError{
			Field:   "tile.locator",
			Message: err.Error(),
		})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "tile.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.MaxBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "tile.max_bytes",
			Message: "max bytes must be non-negative",
		})
	}
	if cfg.Window != nil {
		if err := cfg.Window.Validate(); err != nil {
			errs = append(errs, FieldError{
				Field:   "tile.window",
				Message: err.Error(),
			})
		}
	}
	if cfg.Store.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "tile.store.dir",
			Message: "store directory is required",
		})
	}
	if cfg.Store.Filename == "" {
		errs = append(errs, FieldError{
			Field:   "tile.store.filename",
			Message: "store filename is required",
		})
	}

	return errs
}

// validateCamera validates the camera loop configuration.
func validateCamera(cfg *CameraLoopConfig) []FieldError {
	var errs []FieldError

	if cfg.Interval <= 0 {
		errs = append(errs, FieldError{
			Field:   "camera.interval",
			Message: "interval must be positive",
		})
	}
	if cfg.Command == "" {
		errs = append(errs, FieldError{
			Field:   "camera.command",
			Message: "capture command is required",
		})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "camera.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.Window != nil {
		if err := cfg.Window.Validate(); err != nil {
			errs = append(errs, FieldError{
				Field:   "camera.window",
				Message: err.Error(),
			})
		}
	}
	if cfg.Store.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "camera.store.dir",
			Message: "store directory is required",
		})
	}
	if cfg.Store.MaxCount <= 0 {
		errs = append(errs, FieldError{
			Field:   "camera.store.max_count",
			Message: "max count must be positive",
		})
	}

	return errs
}
