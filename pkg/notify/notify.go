// Package notify emits "artifact available" events to an external
// notification collaborator (the original deployment pushed these to a
// browser-notification relay). The contract is deliberately thin: artifact
// path plus capture instant, nothing more. Emission is fire-and-forget from
// the scheduler's point of view; failures are logged and never affect a
// cycle's outcome.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Event announces one newly stored rolling artifact.
type Event struct {
	// ID uniquely identifies the event so the receiver can deduplicate.
	ID string `json:"event_id"`

	// Path is the artifact's storage path.
	Path string `json:"path"`

	// CapturedAt is the artifact's capture instant, UTC.
	CapturedAt time.Time `json:"captured_at"`
}

// NewEvent creates an event for a stored artifact.
func NewEvent(path string, capturedAt time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Path:       path,
		CapturedAt: capturedAt.UTC(),
	}
}

// Emitter delivers events to the notification collaborator.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// Nop is the default emitter: it drops every event. Used when no webhook is
// configured.
type Nop struct{}

// Emit implements Emitter.
func (Nop) Emit(ctx context.Context, ev Event) error {
	return nil
}

// WebhookConfig contains configuration for the webhook emitter.
type WebhookConfig struct {
	// URL is the endpoint events are POSTed to.
	URL string

	// Timeout bounds one delivery attempt. Default: 10 seconds.
	Timeout time.Duration
}

// Webhook POSTs events as JSON to a configured endpoint.
type Webhook struct {
	config WebhookConfig
	client *http.Client
	logger *slog.Logger
}

// NewWebhook creates a webhook emitter.
func NewWebhook(config WebhookConfig) (*Webhook, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("webhook URL is empty")
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Webhook{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: slog.Default().With("component", "notify.webhook"),
	}, nil
}

// Emit implements Emitter. One attempt per event; a lost event is acceptable,
// a blocked scheduler is not.
func (w *Webhook) Emit(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build event request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver event %s: %w", ev.ID, err)
	}
	defer resp.Body.Close()
	io.CopyN(io.Discard, resp.Body, 1024)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deliver event %s: receiver returned status %d", ev.ID, resp.StatusCode)
	}

	w.logger.Debug("event delivered", "event_id", ev.ID, "path", ev.Path)
	return nil
}
