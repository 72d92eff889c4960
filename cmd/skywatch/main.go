// Skywatch is a scheduled acquisition and retention daemon for time-indexed
// artifacts.
//
// It runs independent acquisition loops on a wall-clock-aligned cadence:
//   - Remote imagery tiles fetched over HTTP into a latest-snapshot store
//   - Local camera frames captured by an external command into a rolling
//     store with count-based, pin-exempt retention
//
// Usage:
//
//	# Start the daemon with default configuration
//	skywatch run
//
//	# Start with custom configuration file
//	skywatch run --config /etc/skywatch/config.yaml
//
//	# Validate configuration without starting the loops
//	skywatch run --dry-run
//	skywatch validate
//
//	# Inspect the cycle journal
//	skywatch journal --loop tile --limit 20
//
//	# Show version information
//	skywatch version
package main

func main() {
	Execute()
}
