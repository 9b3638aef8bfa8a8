package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogOptions{Level: "INFO", Format: "json", Writer: &buf})

	WithRunID(logger, "run-1").Info("run started", "commands", 3)
	logger.Debug("hidden")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "run started" {
		t.Errorf("expected msg 'run started', got %v", entry["msg"])
	}
	if entry["run_id"] != "run-1" {
		t.Errorf("expected run_id run-1, got %v", entry["run_id"])
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogOptions{Level: "DEBUG", Writer: &buf, NoColor: true})

	WithCommand(logger, 2, "bucket", "S3", "CreateBucket").Debug("params resolved")

	out := buf.String()
	for _, want := range []string{"params resolved", "index=2", "results_id=bucket", "object_type=S3", "method=CreateBucket"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestFromContext(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger without value in context")
	}

	logger := NewLogger(LogOptions{Writer: &bytes.Buffer{}})
	ctx := WithLogger(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Error("expected logger from context")
	}
}
