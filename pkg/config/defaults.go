package config

import "time"

// Default values for configuration fields.
const (
	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsNamespace = "skywatch"

	// Journal defaults
	DefaultJournalPath        = "data/journal.db"
	DefaultJournalBusyTimeout = 5 * time.Second

	// Notify defaults
	DefaultNotifyTimeout = 10 * time.Second

	// Tile loop defaults
	DefaultTileInterval  = 15 * time.Minute
	DefaultTileTimeout   = 30 * time.Second
	DefaultTileMaxBytes  = int64(32 << 20) // 32 MiB
	DefaultTileUserAgent = "skywatch"
	DefaultTileStoreDir  = "data/tile"
	DefaultTileFilename  = "latest.png"

	// Camera loop defaults
	DefaultCameraInterval  = 10 * time.Minute
	DefaultCameraCommand   = "fswebcam"
	DefaultCameraTimeout   = 60 * time.Second
	DefaultCameraStoreDir  = "data/camera"
	DefaultCameraPrefix    = "frame-"
	DefaultCameraExtension = ".jpg"
	DefaultCameraMaxCount  = 288 // two days at 10-minute cadence
	DefaultCameraPinPrefix = "keep-"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Journal defaults
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = DefaultJournalPath
	}
	if cfg.Journal.BusyTimeout == 0 {
		cfg.Journal.BusyTimeout = DefaultJournalBusyTimeout
	}

	// Notify defaults
	if cfg.Notify.Timeout == 0 {
		cfg.Notify.Timeout = DefaultNotifyTimeout
	}

	// Tile loop defaults
	if cfg.Tile.Interval == 0 {
		cfg.Tile.Interval = DefaultTileInterval
	}
	if cfg.Tile.Timeout == 0 {
		cfg.Tile.Timeout = DefaultTileTimeout
	}
	if cfg.Tile.MaxBytes == 0 {
		cfg.Tile.MaxBytes = DefaultTileMaxBytes
	}
	if cfg.Tile.UserAgent == "" {
		cfg.Tile.UserAgent = DefaultTileUserAgent
	}
	if cfg.Tile.Store.Dir == "" {
		cfg.Tile.Store.Dir = DefaultTileStoreDir
	}
	if cfg.Tile.Store.Filename == "" {
		cfg.Tile.Store.Filename = DefaultTileFilename
	}

	// Camera loop defaults
	if cfg.Camera.Interval == 0 {
		cfg.Camera.Interval = DefaultCameraInterval
	}
	if cfg.Camera.Command == "" {
		cfg.Camera.Command = DefaultCameraCommand
	}
	if cfg.Camera.Timeout == 0 {
		cfg.Camera.Timeout = DefaultCameraTimeout
	}
	if cfg.Camera.Store.Dir == "" {
		cfg.Camera.Store.Dir = DefaultCameraStoreDir
	}
	if cfg.Camera.Store.Prefix == "" {
		cfg.Camera.Store.Prefix = DefaultCameraPrefix
	}
	if cfg.Camera.Store.Extension == "" {
		cfg.Camera.Store.Extension = DefaultCameraExtension
	}
	if cfg.Camera.Store.MaxCount == 0 {
		cfg.Camera.Store.MaxCount = DefaultCameraMaxCount
	}
	if cfg.Camera.Store.PinPrefix == "" {
		cfg.Camera.Store.PinPrefix = DefaultCameraPinPrefix
	}
}
