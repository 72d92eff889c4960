package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

// TestSetup_JSONOutput tests the default JSON handler.
func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	logger.Info("cycle complete", "loop", "tile", "outcome", "stored")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "cycle complete" || entry["loop"] != "tile" {
		t.Errorf("entry = %v", entry)
	}
}

// TestSetup_LevelFiltering tests minimum-level enforcement.
func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Level: "warn", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")

	out := buf.String()
	if strings.Contains(out, "info message") || strings.Contains(out, "debug message") {
		t.Errorf("sub-level messages leaked: %s", out)
	}
	if !strings.Contains(out, "warn message") {
		t.Errorf("warn message missing: %s", out)
	}
}

// TestSetup_InstallsDefault tests that component loggers derive from the
// configured handler.
func TestSetup_InstallsDefault(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Setup(Config{Format: "json", Writer: &buf}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	slog.Default().With("component", "store.latest").Info("snapshot replaced")

	if !strings.Contains(buf.String(), `"component":"store.latest"`) {
		t.Errorf("derived logger did not use configured handler: %s", buf.String())
	}
}

// TestSetup_InvalidConfig tests fail-fast on unknown level or format.
func TestSetup_InvalidConfig(t *testing.T) {
	if _, err := Setup(Config{Level: "loud"}); err == nil {
		t.Error("Setup(level=loud) succeeded, want error")
	}
	if _, err := Setup(Config{Format: "xml"}); err == nil {
		t.Error("Setup(format=xml) succeeded, want error")
	}
}

// TestSetup_Defaults tests the empty-config defaults (info, json).
func TestSetup_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := Setup(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	logger.Debug("hidden")
	logger.Info("visible")

	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug logged at default level")
	}
	if !strings.Contains(buf.String(), "visible") {
		t.Error("info not logged at default level")
	}
}
