package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// captureOutput redirects logger output to a buffer for testing.
// Returns the buffer and a cleanup function to restore original output.
func captureOutput() (*bytes.Buffer, func()) {
	buf := new(bytes.Buffer)

	mu.Lock()
	originalOutput := output
	originalColor := useColor
	output = buf
	useColor = false // Disable colors for easier testing
	mu.Unlock()

	reconfigure()

	cleanup := func() {
		mu.Lock()
		output = originalOutput
		useColor = originalColor
		mu.Unlock()
		reconfigure()
	}

	return buf, cleanup
}

func TestLevelFiltering(t *testing.T) {
	t.Run("DebugLevelShowsAllMessages", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("DEBUG")

		Debug("debug message")
		Info("info message")
		Warn("warn message")
		Error("error message")

		out := buf.String()
		for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
	})

	t.Run("WarnLevelFiltersBelow", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("WARN")
		defer SetLevel("INFO")

		Debug("debug message")
		Info("info message")
		Warn("warn message")

		out := buf.String()
		if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
			t.Errorf("filtered levels leaked into output: %q", out)
		}
		if !strings.Contains(out, "warn message") {
			t.Error("warn message missing")
		}
	})

	t.Run("InvalidLevelIgnored", func(t *testing.T) {
		buf, cleanup := captureOutput()
		defer cleanup()

		SetLevel("INFO")
		SetLevel("VERBOSE")

		Info("still logging")
		if !strings.Contains(buf.String(), "still logging") {
			t.Error("logger broken after invalid level")
		}
	})
}

func TestStructuredFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")

	Info("File stored", KeyRoomID, "abc12345", KeyVersion, int64(7), KeyPathHash, "deadbeef")

	out := buf.String()
	for _, want := range []string{"File stored", "room_id=abc12345", "version=7", "path_hash=deadbeef"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestTextHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	h := NewColorTextHandler(&buf, nil, false).WithGroup("store")

	slog.New(h).Info("Query ran", "rows", int64(3))

	if !strings.Contains(buf.String(), "store.rows=3") {
		t.Errorf("grouped key missing: %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("json")
	defer SetFormat("text")

	Info("Operation appended", KeyRoomID, "abc12345", KeySeq, int64(42))

	line := strings.TrimSpace(buf.String())
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, line)
	}

	if record["msg"] != "Operation appended" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record[KeyRoomID] != "abc12345" {
		t.Errorf("room_id = %v", record[KeyRoomID])
	}
	if record[KeySeq] != float64(42) {
		t.Errorf("seq = %v", record[KeySeq])
	}
}

func TestContextFields(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")
	SetFormat("text")

	lc := NewLogContext("10.0.0.7").
		WithRoom("abc12345").
		WithClient("editor-1").
		WithRequestID("req-99")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "Delta read served")

	out := buf.String()
	for _, want := range []string{"room_id=abc12345", "client_id=editor-1", "request_id=req-99", "client_ip=10.0.0.7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestContextFieldsAbsent(t *testing.T) {
	buf, cleanup := captureOutput()
	defer cleanup()

	SetLevel("INFO")

	// A context without a LogContext logs the bare message.
	InfoCtx(context.Background(), "no context")
	if !strings.Contains(buf.String(), "no context") {
		t.Error("message missing")
	}
	if strings.Contains(buf.String(), "room_id") {
		t.Error("phantom context fields in output")
	}
}

func TestLogContextClone(t *testing.T) {
	lc := NewLogContext("10.0.0.7").WithRoom("abc12345")
	clone := lc.WithClient("editor-2")

	if lc.ClientID != "" {
		t.Error("WithClient mutated the original")
	}
	if clone.RoomID != "abc12345" || clone.ClientID != "editor-2" {
		t.Errorf("clone = %+v", clone)
	}

	var nilCtx *LogContext
	if nilCtx.Clone() != nil {
		t.Error("nil Clone should stay nil")
	}
	if nilCtx.DurationMs() != 0 {
		t.Error("nil DurationMs should be 0")
	}
}

func TestFieldConstructors(t *testing.T) {
	if attr := RoomID("abc12345"); attr.Key != KeyRoomID || attr.Value.String() != "abc12345" {
		t.Errorf("RoomID attr = %v", attr)
	}
	if attr := Version(3); attr.Value.Int64() != 3 {
		t.Errorf("Version attr = %v", attr)
	}
	if attr := Err(errors.New("boom")); attr.Key != KeyError || attr.Value.String() != "boom" {
		t.Errorf("Err attr = %v", attr)
	}
	if attr := Err(nil); attr.Key != "" {
		t.Errorf("Err(nil) should be the zero attr, got %v", attr)
	}
}

func TestInitWithWriter(t *testing.T) {
	buf := new(bytes.Buffer)
	InitWithWriter(buf, "DEBUG", "text", false)
	defer InitWithWriter(bytes.NewBuffer(nil), "INFO", "text", false)

	Debug("writer test")
	if !strings.Contains(buf.String(), "writer test") {
		t.Error("InitWithWriter output missing")
	}
}
