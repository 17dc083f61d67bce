package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level zapcore.Level) (context.Context, *observer.ObservedLogs) {
	core, recorded := observer.New(level)
	return WithLogger(context.Background(), zap.New(core, zap.WithFatalHook(zapcore.WriteThenPanic))), recorded
}

func TestLogHelpers(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		log       func(ctx context.Context)
		level     zapcore.Level
		wantError bool
	}{
		{
			name:  "info",
			log:   func(ctx context.Context) { LogInfo(ctx, "feed refreshed", zap.String("userId", "u-1")) },
			level: zapcore.InfoLevel,
		},
		{
			name:  "warn",
			log:   func(ctx context.Context) { LogWarn(ctx, "feed refreshed", zap.String("userId", "u-1")) },
			level: zapcore.WarnLevel,
		},
		{
			name:      "error with err",
			log:       func(ctx context.Context) { LogError(ctx, "feed refreshed", boom, zap.String("userId", "u-1")) },
			level:     zapcore.ErrorLevel,
			wantError: true,
		},
		{
			name:  "error without err",
			log:   func(ctx context.Context) { LogError(ctx, "feed refreshed", nil, zap.String("userId", "u-1")) },
			level: zapcore.ErrorLevel,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, recorded := observed(zapcore.DebugLevel)
			tt.log(ctx)

			entries := recorded.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			entry := entries[0]
			if entry.Message != "feed refreshed" || entry.Level != tt.level {
				t.Fatalf("unexpected entry: %s at %s", entry.Message, entry.Level)
			}
			fields := entry.ContextMap()
			if fields["userId"] != "u-1" {
				t.Fatalf("expected userId field, got %v", fields)
			}
			if _, ok := fields["error"]; ok != tt.wantError {
				t.Fatalf("error field present = %v, want %v", ok, tt.wantError)
			}
		})
	}
}

func TestLogFatalPanicsThroughHook(t *testing.T) {
	ctx, recorded := observed(zapcore.InfoLevel)
	defer func() {
		if recover() == nil {
			t.Fatal("expected the fatal hook to panic")
		}
		entries := recorded.All()
		if len(entries) != 1 || entries[0].Level != zapcore.FatalLevel {
			t.Fatalf("expected one fatal entry, got %+v", entries)
		}
		if _, ok := entries[0].ContextMap()["error"]; !ok {
			t.Fatal("expected error field")
		}
	}()
	LogFatal(ctx, "agent stopped", errors.New("listen failed"))
}

func TestLoggerFromContextFallsBack(t *testing.T) {
	var nilCtx context.Context //nolint:revive // nil context handling
	if LoggerFromContext(nilCtx) != Logger() {
		t.Fatal("nil context should yield the process logger")
	}
	ctx := context.WithValue(context.Background(), loggerKey{}, (*zap.Logger)(nil))
	if LoggerFromContext(ctx) != Logger() {
		t.Fatal("nil stored logger should yield the process logger")
	}
	if WithLogger(nilCtx, zap.NewNop()) == nil {
		t.Fatal("WithLogger should build a context from nil")
	}
}

func TestCorrelationID(t *testing.T) {
	var nilCtx context.Context //nolint:revive // nil context handling
	if got := CorrelationID(nilCtx); got != "" {
		t.Fatalf("expected empty id for nil context, got %q", got)
	}
	base := context.Background()
	if withCorrelationID(base, "") != base {
		t.Fatal("empty id should leave the context untouched")
	}
	if got := CorrelationID(withCorrelationID(base, "req-9")); got != "req-9" {
		t.Fatalf("expected req-9, got %q", got)
	}
	if got := CorrelationID(withCorrelationID(nilCtx, "req-10")); got != "req-10" {
		t.Fatalf("expected req-10, got %q", got)
	}
}

func TestWithAddsFields(t *testing.T) {
	ctx, recorded := observed(zapcore.InfoLevel)
	ctx = With(ctx, zap.String("userId", "u-1"))
	ctx = With(ctx, zap.String("reason", "sign_in"))

	LogInfo(ctx, "session reset")

	fields := recorded.All()[0].ContextMap()
	if fields["userId"] != "u-1" || fields["reason"] != "sign_in" {
		t.Fatalf("expected accumulated fields, got %v", fields)
	}
}
