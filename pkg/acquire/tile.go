package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"stratus-hq/skywatch/pkg/timealign"
)

// TileConfig contains configuration for the HTTP tile fetcher.
type TileConfig struct {
	// Timeout bounds one retrieval, connection establishment included.
	// Default: 30 seconds.
	Timeout time.Duration

	// MaxBytes caps the accepted payload size. Default: 32 MiB.
	MaxBytes int64

	// UserAgent is sent with each request. Default: "skywatch".
	UserAgent string

	// MaxIdleConns configures connection pooling. Default: 2, since there is one upstream
	// host, one request in flight.
	MaxIdleConns int
}

// DefaultTileConfig returns the default fetcher configuration.
func DefaultTileConfig() TileConfig {
	return TileConfig{
		Timeout:      30 * time.Second,
		MaxBytes:     32 << 20,
		MaxIdleConns: 2,
		UserAgent:    "skywatch",
	}
}

// TileFetcher retrieves remote imagery tiles addressed by acquisition index.
// It makes exactly one attempt per Fetch call and classifies failures into
// the package's error taxonomy. Redirects are followed.
type TileFetcher struct {
	locator *Locator
	config  TileConfig
	client  *http.Client
	logger  *slog.Logger
}

// NewTileFetcher creates a fetcher for the given locator template.
func NewTileFetcher(locator *Locator, config TileConfig) *TileFetcher {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTileConfig().Timeout
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = DefaultTileConfig().MaxBytes
	}
	if config.MaxIdleConns <= 0 {
		config.MaxIdleConns = DefaultTileConfig().MaxIdleConns
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultTileConfig().UserAgent
	}

	transport := &http.Transport{
		MaxIdleConns:      config.MaxIdleConns,
		IdleConnTimeout:   90 * time.Second,
		ForceAttemptHTTP2: true,
	}

	return &TileFetcher{
		locator: locator,
		config:  config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: slog.Default().With("component", "acquire.tile"),
	}
}

// Fetch retrieves the artifact for the given index. It returns the payload
// bytes on validated success; all failure modes map to UnavailableError,
// NotYetPublishedError, or TimeoutError. Nothing is written to storage here;
// that is the caller's job, and only on success.
func (f *TileFetcher) Fetch(ctx context.Context, idx timealign.Index) ([]byte, error) {
	url := f.locator.URL(idx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UnavailableError{Index: idx.String(), Cause: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	f.logger.Debug("fetching tile", "index", idx.String(), "url", url)

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, &TimeoutError{Index: idx.String(), Timeout: f.config.Timeout}
		}
		return nil, &UnavailableError{Index: idx.String(), Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused.
		io.CopyN(io.Discard, resp.Body, 4096)
		return nil, &UnavailableError{Index: idx.String(), StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes+1))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, &TimeoutError{Index: idx.String(), Timeout: f.config.Timeout}
		}
		return nil, &UnavailableError{Index: idx.String(), Cause: err}
	}
	if int64(len(data)) > f.config.MaxBytes {
		return nil, &UnavailableError{
			Index: idx.String(),
			Cause: fmt.Errorf("payload exceeds %d byte limit", f.config.MaxBytes),
		}
	}

	// Upstream publishes the slot before the image lands in it: an empty 2xx
	// body means this index has not materialized yet.
	if len(data) == 0 {
		return nil, &NotYetPublishedError{Index: idx.String()}
	}

	f.logger.Debug("tile fetched", "index", idx.String(), "bytes", len(data))
	return data, nil
}

// Close releases idle connections.
func (f *TileFetcher) Close() {
	f.client.CloseIdleConnections()
}

// isTimeout reports whether err (or the context) indicates an elapsed
// retrieval deadline rather than an upstream failure.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
