// Package acquire retrieves time-indexed artifacts from external sources.
//
// Two acquirers are provided:
//
//   - TileFetcher retrieves a remote imagery tile over HTTP, addressed by a
//     canonical acquisition index interpolated into a locator template.
//   - CommandCapturer grabs a frame from a local capture device by running an
//     external capture command (for example fswebcam), passing device settings
//     through opaquely.
//
// Acquirers make exactly one attempt per call. There is no in-process retry:
// a failed cycle recovers on the next scheduled cycle, which keeps the
// wall-clock cadence predictable even under sustained upstream outage.
//
// # Error Taxonomy
//
// Fetch failures are classified so the scheduler can log them meaningfully:
//
//   - UnavailableError: transport failure, DNS failure, or a non-2xx response.
//   - NotYetPublishedError: a successful response with an empty payload;
//     upstream has not materialized this index yet (clock/publication skew).
//   - TimeoutError: the bounded retrieval deadline elapsed.
//
// Capture failures are DeviceBusyError (device held by another process) or
// DeviceError (anything else the capture command reports).
//
// None of these errors write to storage: a payload reaches the retention
// store only after it has been fully received and validated non-empty.
package acquire
