// Package config provides configuration management for Skywatch.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SKYWATCH_SECTION_FIELD.
// For example:
//
//   - SKYWATCH_TILE_LOCATOR overrides tile.locator
//   - SKYWATCH_CAMERA_STORE_MAX_COUNT overrides camera.store.max_count
//   - SKYWATCH_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// All configuration is validated automatically during loading. Validation
// errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - tile.locator: unknown placeholder "{foo}"
//	  - camera.interval: interval must be positive
//
// # Hot Reload
//
// Retention settings of the rolling store can be changed without a restart:
// a Watcher observes the configuration file and invokes a callback with the
// freshly loaded (and validated) configuration. Only retention settings are
// applied live; everything else requires a restart.
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	tile:
//	  enabled: true
//	  interval: 15m
//	  locator: "https://tiles.example.net/ir/{year}/{month}/{day}/{index}.png"
//	  store:
//	    dir: "data/tile"
//
//	camera:
//	  enabled: true
//	  interval: 10m
//	  command: "fswebcam"
//	  window:
//	    start_hour_utc: 3
//	    end_hour_utc: 18
//	  store:
//	    dir: "data/camera"
//	    max_count: 288
//
//	telemetry:
//	  listen_address: "127.0.0.1:9090"
//	  logging:
//	    level: "info"
//	    format: "json"
package config
