package logger

import (
	"context"
	"testing"

	"geoatlas/pkg/utils/contextkey"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAddsTraceFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := New(zap.New(core))

	ctx := context.WithValue(context.Background(), contextkey.TraceID, "trace-1")
	ctx = context.WithValue(ctx, contextkey.RequestID, "req-1")
	log.Info(ctx, "hello", zap.Int("n", 1))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != "trace-1" || fields["request_id"] != "req-1" {
		t.Fatalf("missing trace fields: %v", fields)
	}
	if fields["n"] != int64(1) {
		t.Fatalf("missing call field: %v", fields)
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, err := NewLogger(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
	if _, err := NewLogger(Config{Level: "debug", Format: "json"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
