package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"hawarun/internal/config"
	"hawarun/internal/logging"
)

func TestConsoleLoggerWritesComponentPrefixAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "ipc").Info("frame sent",
		logging.String("socket", "/run/Hawa/game-launcher.sock"),
		logging.Int("bytes", 42),
		logging.String("note", "has spaces"))

	out := buf.String()
	for _, want := range []string{" INFO ipc: frame sent", "socket=/run/Hawa/game-launcher.sock", "bytes=42", `note="has spaces"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %q", want, out)
		}
	}
	if strings.Contains(out, "component=") {
		t.Fatalf("component should render as prefix, got %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", out)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("with caller")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestDefaultLevelSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Output: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be suppressed at default level, got %q", buf.String())
	}
	logger.Warn("loud", logging.Error(errors.New("boom")))
	if !strings.Contains(buf.String(), "WARN loud error=boom") {
		t.Fatalf("unexpected warn output: %q", buf.String())
	}
}

func TestJSONLoggerCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.Logging.Format = "json"
	cfg.Logging.Level = "info"

	logger, err := logging.NewFromConfig(&cfg, &buf, "req-123")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.With(logging.String(logging.FieldComponent, "manifest")).Info("parsed")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if record["request_id"] != "req-123" {
		t.Fatalf("expected request_id, got %#v", record)
	}
	if record["level"] != "info" || record["msg"] != "parsed" || record["component"] != "manifest" {
		t.Fatalf("unexpected record: %#v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key, got %#v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewRequestIDIsUnique(t *testing.T) {
	a, b := logging.NewRequestID(), logging.NewRequestID()
	if a == "" || a == b {
		t.Fatalf("expected distinct request ids, got %q and %q", a, b)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(t.Context(), 12) {
		t.Fatal("nop logger should never be enabled")
	}
	logger.Error("ignored")
}
