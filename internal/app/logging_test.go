package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dshills/inkwell/internal/engine"
)

// The session logs through this exact surface.
var _ engine.Logger = (*Logger)(nil)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"", LogLevelInfo},
		{"loud", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf})

	log.Debug("quiet")
	log.Info("quiet")
	log.Warn("loud")
	log.Error("louder")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("suppressed levels leaked: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "loud") {
		t.Errorf("warn missing: %q", out)
	}
	if !strings.Contains(out, "[ERROR]") || !strings.Contains(out, "louder") {
		t.Errorf("error missing: %q", out)
	}
}

func TestLoggerKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})

	log.Debug("committed", "op", "insert_text", "block", "b-1")

	out := buf.String()
	if !strings.Contains(out, "committed op=insert_text block=b-1") {
		t.Errorf("line = %q", out)
	}
}

func TestLoggerDanglingArg(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})

	log.Info("odd", "key", "value", "orphan")

	out := buf.String()
	if !strings.Contains(out, "key=value") || !strings.Contains(out, "orphan") {
		t.Errorf("line = %q", out)
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf}).
		WithComponent("engine").
		WithField("doc", "a.iw")

	log.Info("ready")

	out := buf.String()
	if !strings.Contains(out, "component=engine") || !strings.Contains(out, "doc=a.iw") {
		t.Errorf("line = %q", out)
	}
}

func TestLoggerFieldsDoNotLeakBack(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})
	_ = base.WithComponent("child")

	base.Info("plain")

	if strings.Contains(buf.String(), "component=") {
		t.Errorf("parent logger picked up child fields: %q", buf.String())
	}
}

func TestLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf, Prefix: "inkwell"})

	log.Info("hello")

	if !strings.Contains(buf.String(), "inkwell: hello") {
		t.Errorf("line = %q", buf.String())
	}
}

func TestNullLoggerSilent(t *testing.T) {
	// Must not panic and must not write anywhere observable.
	NullLogger.Debug("nothing")
	NullLogger.Error("nothing")
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig()
	if cfg.Level != LogLevelInfo {
		t.Errorf("level = %v", cfg.Level)
	}
	if cfg.Prefix != "inkwell" {
		t.Errorf("prefix = %q", cfg.Prefix)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelError, Output: &buf})

	log.Info("before")
	log.SetLevel(LogLevelDebug)
	log.Info("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Errorf("filtered line leaked: %q", out)
	}
	if !strings.Contains(out, "after") {
		t.Errorf("line missing after SetLevel: %q", out)
	}
}
