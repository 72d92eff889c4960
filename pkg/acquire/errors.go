package acquire

import (
	"errors"
	"fmt"
	"time"
)

// UnavailableError reports that the upstream source could not serve the
// requested index: a transport/DNS/connect failure or a non-2xx response.
type UnavailableError struct {
	// Index is the canonical index that was requested.
	Index string

	// StatusCode is the HTTP status code (0 for transport failures).
	StatusCode int

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("index %s unavailable (status %d)", e.Index, e.StatusCode)
	}
	return fmt.Sprintf("index %s unavailable: %v", e.Index, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// NotYetPublishedError reports that upstream answered successfully but with a
// zero-length payload: the artifact for this index has not materialized yet.
// This is routine near publication boundaries and must never reach storage.
type NotYetPublishedError struct {
	// Index is the canonical index that was requested.
	Index string
}

// Error implements the error interface.
func (e *NotYetPublishedError) Error() string {
	return fmt.Sprintf("index %s not yet published upstream", e.Index)
}

// TimeoutError reports that the bounded retrieval deadline elapsed. The
// scheduler treats it identically to UnavailableError.
type TimeoutError struct {
	// Index is the canonical index that was requested.
	Index string

	// Timeout is the configured retrieval deadline.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch of index %s timed out after %v", e.Index, e.Timeout)
}

// DeviceBusyError reports that the capture device is held by another process.
type DeviceBusyError struct {
	// Device is the configured capture command.
	Device string
}

// Error implements the error interface.
func (e *DeviceBusyError) Error() string {
	return fmt.Sprintf("capture device %q busy", e.Device)
}

// DeviceError reports any other capture failure.
type DeviceError struct {
	// Device is the configured capture command.
	Device string

	// Output is the capture command's combined output, when available.
	Output string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("capture device %q failed: %v: %s", e.Device, e.Cause, e.Output)
	}
	return fmt.Sprintf("capture device %q failed: %v", e.Device, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *DeviceError) Unwrap() error {
	return e.Cause
}

// IsNotYetPublished reports whether err indicates an artifact that upstream
// has not published yet.
func IsNotYetPublished(err error) bool {
	var nyp *NotYetPublishedError
	return errors.As(err, &nyp)
}

// IsUnavailable reports whether err indicates an unreachable or erroring
// upstream, including timeouts.
func IsUnavailable(err error) bool {
	var unavail *UnavailableError
	var timeout *TimeoutError
	return errors.As(err, &unavail) || errors.As(err, &timeout)
}
