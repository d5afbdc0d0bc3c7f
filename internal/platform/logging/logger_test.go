package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWritesKeyValueFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := FromZap(zap.New(core)).Named("fetcher").With("season", "2025-26")

	logger.WarnContext(context.Background(), "request failed", "attempt", 2, "error", errors.New("boom"))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got=%d", len(entries))
	}
	entry := entries[0]
	if entry.LoggerName != "fetcher" {
		t.Fatalf("unexpected logger name: %q", entry.LoggerName)
	}
	fields := entry.ContextMap()
	if fields["season"] != "2025-26" {
		t.Fatalf("expected season field, got %+v", fields)
	}
	if fields["attempt"] != int64(2) {
		t.Fatalf("expected attempt=2, got %+v", fields["attempt"])
	}
	if fields["error"] != "boom" {
		t.Fatalf("expected error field, got %+v", fields["error"])
	}
}

func TestZapFields_OddArgs(t *testing.T) {
	fields := zapFields([]any{"rows", 10, "dangling"})
	if len(fields) != 2 {
		t.Fatalf("expected two fields, got=%d", len(fields))
	}
	if fields[1].Key != "dangling" {
		t.Fatalf("unexpected key: %q", fields[1].Key)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if logger.Named("x") == nil {
		t.Fatalf("expected nop logger")
	}
}
