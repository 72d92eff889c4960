package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestWebhook_Emit tests event delivery and payload shape.
func TestWebhook_Emit(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
	}))
	defer srv.Close()

	w, err := NewWebhook(WebhookConfig{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewWebhook: %v", err)
	}

	capturedAt := time.Date(2024, 6, 1, 10, 7, 42, 0, time.UTC)
	ev := NewEvent("data/frames/frame-20240601-100742.jpg", capturedAt)
	if err := w.Emit(context.Background(), ev); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if got.ID == "" {
		t.Error("event_id is empty")
	}
	if got.Path != ev.Path {
		t.Errorf("path = %q, want %q", got.Path, ev.Path)
	}
	if !got.CapturedAt.Equal(capturedAt) {
		t.Errorf("captured_at = %v, want %v", got.CapturedAt, capturedAt)
	}
}

// TestWebhook_Emit_ReceiverError tests non-2xx classification.
func TestWebhook_Emit_ReceiverError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	w, _ := NewWebhook(WebhookConfig{URL: srv.URL})
	if err := w.Emit(context.Background(), NewEvent("p", time.Now())); err == nil {
		t.Error("Emit to failing receiver succeeded, want error")
	}
}

// TestNewWebhook_EmptyURL tests fail-fast configuration.
func TestNewWebhook_EmptyURL(t *testing.T) {
	if _, err := NewWebhook(WebhookConfig{}); err == nil {
		t.Error("NewWebhook(empty URL) succeeded, want error")
	}
}

// TestNewEvent_UniqueIDs tests that events are individually identifiable.
func TestNewEvent_UniqueIDs(t *testing.T) {
	a := NewEvent("p", time.Now())
	b := NewEvent("p", time.Now())
	if a.ID == b.ID {
		t.Errorf("two events share ID %q", a.ID)
	}
}

// TestNop_Emit tests the default emitter.
func TestNop_Emit(t *testing.T) {
	if err := (Nop{}).Emit(context.Background(), NewEvent("p", time.Now())); err != nil {
		t.Errorf("Nop.Emit: %v", err)
	}
}
