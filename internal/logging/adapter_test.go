package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewSlogAdapter_WithNil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	if adapter.Logger() == nil {
		t.Error("adapter logger should not be nil when created with nil")
	}
}

func TestSlogAdapter_Levels(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(New(&buf, true))

	adapter.Debug("debug message", "key", "d")
	adapter.Info("info message", "key", "i")
	adapter.Warn("warn message", "key", "w")
	adapter.Error("error message", "key", "e")

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "debug message", "key=d",
		"level=INFO", "info message", "key=i",
		"level=WARN", "warn message", "key=w",
		"level=ERROR", "error message", "key=e",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSlogAdapter_Logger(t *testing.T) {
	logger := slog.Default()
	adapter := NewSlogAdapter(logger)
	if adapter.Logger() != logger {
		t.Error("Logger() should return the underlying logger")
	}
}

func TestDiscard(t *testing.T) {
	// Should not panic
	Discard().Error("dropped", "key", "value")
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = (*SlogAdapter)(nil)
}
