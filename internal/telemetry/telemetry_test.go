package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Enabled {
		t.Error("tracing enabled by default")
	}
	if cfg.ServiceName != "livepaste" {
		t.Errorf("service name = %s, want livepaste", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4317" {
		t.Errorf("endpoint = %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("sample rate = %v, want 1.0", cfg.SampleRate)
	}
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Enabled = false

	shutdown, err := Init(ctx, cfg)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Init returned nil shutdown")
	}
	if err := shutdown(ctx); err != nil {
		t.Errorf("shutdown failed: %v", err)
	}
	if IsEnabled() {
		t.Error("telemetry enabled after disabled init")
	}
}

func TestTracerReturnsNoOp(t *testing.T) {
	tracer = nil
	enabled = false

	if Tracer() == nil {
		t.Fatal("Tracer returned nil without initialization")
	}
}

func TestStartSpanWithoutInit(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartSpan(ctx, "room.state")
	if newCtx == nil || span == nil {
		t.Fatal("StartSpan returned nil without initialization")
	}
	span.End()
}

func TestRecordErrorNilSafe(t *testing.T) {
	ctx := context.Background()

	RecordError(ctx, nil)
	RecordError(ctx, errors.New("boom"))
	SetStatus(ctx, codes.Error, "failed")
	AddEvent(ctx, "conflict.detected")
	SetAttributes(ctx, RoomID("abc12345"))
}

func TestTraceIDWithoutSpan(t *testing.T) {
	ctx := context.Background()

	if id := TraceID(ctx); id != "" {
		t.Errorf("TraceID = %q, want empty without an active span", id)
	}
	if id := SpanID(ctx); id != "" {
		t.Errorf("SpanID = %q, want empty without an active span", id)
	}
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		name string
		key  string
		got  string
	}{
		{"RoomID", AttrRoomID, string(RoomID("abc12345").Key)},
		{"PathHash", AttrPathHash, string(PathHash("deadbeef").Key)},
		{"ClientID", AttrClientID, string(ClientID("alice").Key)},
		{"ChangesetID", AttrChangesetID, string(ChangesetID("cs-1").Key)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.key {
				t.Errorf("key = %s, want %s", tt.got, tt.key)
			}
		})
	}

	if v := RoomVersion(42); v.Value.AsInt64() != 42 {
		t.Errorf("RoomVersion value = %d, want 42", v.Value.AsInt64())
	}
	if v := OpSeq(7); v.Value.AsInt64() != 7 {
		t.Errorf("OpSeq value = %d, want 7", v.Value.AsInt64())
	}
	if v := SyncChunks(3); v.Value.AsInt64() != 3 {
		t.Errorf("SyncChunks value = %d, want 3", v.Value.AsInt64())
	}
}

func TestStartRoomSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartRoomSpan(ctx, SpanRoomState, "abc12345")
	if newCtx == nil || span == nil {
		t.Fatal("StartRoomSpan returned nil")
	}
	span.End()

	newCtx2, span2 := StartFileSpan(ctx, SpanFileUpsert, "abc12345", "deadbeef", FileVersion(2))
	if newCtx2 == nil || span2 == nil {
		t.Fatal("StartFileSpan returned nil")
	}
	span2.End()
}
