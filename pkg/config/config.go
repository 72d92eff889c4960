package config

import (
	"time"

	"stratus-hq/skywatch/pkg/gate"
	"stratus-hq/skywatch/pkg/telemetry/logging"
	"stratus-hq/skywatch/pkg/telemetry/metrics"
)

// Config is the root configuration for the Skywatch daemon.
type Config struct {
	// Telemetry configures logging, metrics and the optional HTTP surface.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Journal configures the SQLite cycle journal.
	Journal JournalConfig `yaml:"journal"`

	// Notify configures the outbound artifact event.
	Notify NotifyConfig `yaml:"notify"`

	// Sweep configures the scheduled deep retention sweep.
	Sweep SweepConfig `yaml:"sweep"`

	// Tile configures the remote-tile acquisition loop.
	Tile TileLoopConfig `yaml:"tile"`

	// Camera configures the local-camera acquisition loop.
	Camera CameraLoopConfig `yaml:"camera"`
}

// TelemetryConfig contains telemetry configuration.
type TelemetryConfig struct {
	// ListenAddress is where the telemetry HTTP server (metrics, health)
	// listens. Empty disables the server entirely.
	ListenAddress string `yaml:"listen_address"`

	// Logging configures the process-wide structured logger.
	Logging logging.Config `yaml:"logging"`

	// Metrics configures the Prometheus collector.
	Metrics metrics.Config `yaml:"metrics"`
}

// JournalConfig contains configuration for the cycle journal.
type JournalConfig struct {
	// Enabled turns the journal on. Off by default.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait for database locks before failing.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// NotifyConfig contains configuration for the outbound artifact event.
type NotifyConfig struct {
	// WebhookURL is the endpoint artifact events are POSTed to. Empty
	// disables event emission.
	WebhookURL string `yaml:"webhook_url"`

	// Timeout bounds one delivery attempt.
	Timeout time.Duration `yaml:"timeout"`
}

// SweepConfig contains configuration for the scheduled retention sweep.
type SweepConfig struct {
	// Schedule is a standard cron expression, e.g. "0 3 * * *" for daily
	// at 3 AM. Empty disables the sweep.
	Schedule string `yaml:"schedule"`

	// JournalRetention bounds the cycle journal's age; older entries are
	// pruned during the sweep. Zero keeps the journal forever.
	JournalRetention time.Duration `yaml:"journal_retention"`
}

// TileLoopConfig contains configuration for the remote-tile loop.
type TileLoopConfig struct {
	// Enabled turns the loop on.
	Enabled bool `yaml:"enabled"`

	// Interval is the acquisition cadence.
	Interval time.Duration `yaml:"interval"`

	// Locator is the tile URL template with {year} {month} {day} {hour}
	// {minute} {index} placeholders.
	Locator string `yaml:"locator"`

	// Timeout bounds one fetch attempt.
	Timeout time.Duration `yaml:"timeout"`

	// MaxBytes caps the accepted tile size. Zero uses the default.
	MaxBytes int64 `yaml:"max_bytes"`

	// UserAgent is sent with every fetch.
	UserAgent string `yaml:"user_agent"`

	// Window optionally gates acquisition by UTC hour. Omitted is
	// always open.
	Window *gate.Window `yaml:"window"`

	// Store configures the latest-snapshot store.
	Store LatestStoreConfig `yaml:"store"`
}

// LatestStoreConfig contains configuration for a latest-snapshot store.
type LatestStoreConfig struct {
	// Dir is the store directory.
	Dir string `yaml:"dir"`

	// Filename is the fixed snapshot filename inside Dir.
	Filename string `yaml:"filename"`
}

// CameraLoopConfig contains configuration for the local-camera loop.
type CameraLoopConfig struct {
	// Enabled turns the loop on.
	Enabled bool `yaml:"enabled"`

	// Interval is the capture cadence.
	Interval time.Duration `yaml:"interval"`

	// Window optionally gates capture by UTC hour, e.g. daylight only.
	Window *gate.Window `yaml:"window"`

	// Command is the capture executable, e.g. "fswebcam".
	Command string `yaml:"command"`

	// Args are fixed arguments placed before the device settings.
	Args []string `yaml:"args"`

	// Settings are opaque device settings rendered as "--key value" flags
	// in sorted key order. Skywatch never interprets them.
	Settings map[string]string `yaml:"settings"`

	// Timeout bounds one capture attempt.
	Timeout time.Duration `yaml:"timeout"`

	// Store configures the rolling store.
	Store RollingStoreConfig `yaml:"store"`
}

// RollingStoreConfig contains configuration for a rolling store.
type RollingStoreConfig struct {
	// Dir is the store directory.
	Dir string `yaml:"dir"`

	// Prefix is prepended to every artifact filename.
	Prefix string `yaml:"prefix"`

	// Extension is the artifact filename extension, including the dot.
	Extension string `yaml:"extension"`

	// MaxCount is how many unpinned artifacts retention keeps.
	MaxCount int `yaml:"max_count"`

	// PinPrefix marks artifacts exempt from retention: any filename
	// beginning with PinPrefix is never auto-deleted.
	PinPrefix string `yaml:"pin_prefix"`
}
