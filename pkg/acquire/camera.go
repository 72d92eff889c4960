package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// CameraConfig contains configuration for the command-based frame capturer.
// Device settings (resolution, exposure, white balance, focus, ...) are passed
// through to the capture command uninterpreted.
type CameraConfig struct {
	// Command is the capture executable, e.g. "fswebcam".
	Command string

	// Args are fixed arguments placed before the device settings.
	Args []string

	// Settings are opaque device settings rendered as --key value pairs,
	// in sorted key order for reproducible invocations.
	Settings map[string]string

	// Timeout bounds one capture attempt. Default: 60 seconds.
	Timeout time.Duration
}

// DefaultCameraConfig returns the default capturer configuration.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Command: "fswebcam",
		Timeout: 60 * time.Second,
	}
}

// CommandCapturer grabs a frame from a local capture device by running an
// external command. The command must write the frame to the output path it
// is given as its final argument.
type CommandCapturer struct {
	config CameraConfig
	logger *slog.Logger

	// run is swapped out in tests.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewCommandCapturer creates a capturer. The command itself is not probed
// here; a missing executable surfaces as DeviceError on first capture.
func NewCommandCapturer(config CameraConfig) (*CommandCapturer, error) {
	if strings.TrimSpace(config.Command) == "" {
		return nil, fmt.Errorf("capture command is empty")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultCameraConfig().Timeout
	}

	return &CommandCapturer{
		config: config,
		logger: slog.Default().With("component", "acquire.camera"),
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}, nil
}

// Capture grabs one frame into outputPath. On success the file at outputPath
// exists and is non-empty; on failure no artifact is produced (a partial or
// empty output file is removed) and the error is DeviceBusyError or
// DeviceError.
func (c *CommandCapturer) Capture(ctx context.Context, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	args := append([]string(nil), c.config.Args...)
	for _, key := range sortedKeys(c.config.Settings) {
		args = append(args, "--"+key, c.config.Settings[key])
	}
	args = append(args, outputPath)

	c.logger.Debug("capturing frame", "command", c.config.Command, "output", outputPath)

	output, err := c.run(ctx, c.config.Command, args...)
	if err != nil {
		os.Remove(outputPath)
		if isDeviceBusy(output) {
			return &DeviceBusyError{Device: c.config.Command}
		}
		return &DeviceError{
			Device: c.config.Command,
			Output: strings.TrimSpace(string(output)),
			Cause:  err,
		}
	}

	// The command exiting zero does not guarantee a frame was written.
	info, err := os.Stat(outputPath)
	if err != nil {
		return &DeviceError{
			Device: c.config.Command,
			Cause:  fmt.Errorf("no output file produced: %w", err),
		}
	}
	if info.Size() == 0 {
		os.Remove(outputPath)
		return &DeviceError{
			Device: c.config.Command,
			Cause:  errors.New("capture produced an empty file"),
		}
	}

	c.logger.Debug("frame captured", "output", outputPath, "bytes", info.Size())
	return nil
}

// Device returns the configured capture command, for logs.
func (c *CommandCapturer) Device() string {
	return c.config.Command
}

// isDeviceBusy recognizes the common "device held elsewhere" failure modes
// reported by V4L-based capture tools.
func isDeviceBusy(output []byte) bool {
	s := strings.ToLower(string(output))
	return strings.Contains(s, "device or resource busy") ||
		strings.Contains(s, "device is busy")
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
