package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestConsoleHandlerRendersComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	NewComponentLogger(logger, "toolchain").Info("downloading archive", String(FieldTool, "ffmpeg"))

	line := buf.String()
	if !strings.Contains(line, "[toolchain]") {
		t.Fatalf("expected component marker in %q", line)
	}
	if !strings.Contains(line, "downloading archive") {
		t.Fatalf("expected message in %q", line)
	}
	if !strings.Contains(line, "tool=ffmpeg") {
		t.Fatalf("expected attr in %q", line)
	}
}

func TestJSONHandlerShapesCoreKeys(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: nil})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_ = logger

	levelVar := new(slog.LevelVar)
	direct := slog.New(newJSONHandler(&buf, levelVar))
	direct.Warn("checksum mismatch", String(FieldTool, "mkvtoolnix"))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("unexpected level field: %v", payload["level"])
	}
	if payload["msg"] != "checksum mismatch" {
		t.Fatalf("unexpected msg field: %v", payload["msg"])
	}
	if payload["tool"] != "mkvtoolnix" {
		t.Fatalf("unexpected tool field: %v", payload["tool"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatal("expected ts field")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
