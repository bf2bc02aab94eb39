package logutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestTraceLevelName(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(NewLogger(&buf, LevelTrace))
	defer slog.SetDefault(prev)

	if !TraceEnabled() {
		t.Fatal("TraceEnabled = false at LevelTrace")
	}
	Trace("compiled", "nodes", 3)
	out := buf.String()
	if !strings.Contains(out, "level=TRACE") || !strings.Contains(out, "nodes=3") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(out, "logutil_test.go") {
		t.Errorf("source not shortened to caller file: %q", out)
	}
}

func TestTraceSuppressed(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(NewLogger(&buf, slog.LevelInfo))
	defer slog.SetDefault(prev)

	Trace("hidden")
	if buf.Len() != 0 {
		t.Errorf("trace record written at info level: %q", buf.String())
	}
}

func TestLevel(t *testing.T) {
	if Level(false, false) != slog.LevelWarn || Level(true, false) != slog.LevelDebug || Level(true, true) != LevelTrace {
		t.Error("Level mapping mismatch")
	}
}
