package logging

import (
	"context"

	"go.uber.org/zap"
)

type (
	loggerKey      struct{}
	correlationKey struct{}
)

// LoggerFromContext returns the logger stored by WithLogger or RequestLogger,
// or the process-wide logger when there is none.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, _ := ctx.Value(loggerKey{}).(*zap.Logger); l != nil {
			return l
		}
	}
	return Logger()
}

// WithLogger returns a context carrying logger. Background work outside an
// HTTP request uses this to attach fields such as the signed-in user ID.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// With returns a context whose logger carries the extra fields.
func With(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, LoggerFromContext(ctx).With(fields...))
}

// CorrelationID is the Cloud Trace resource of the current request, or its
// request ID when no trace header was sent. Empty outside a request.
func CorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

func withCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Info(msg, fields...)
}

func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Warn(msg, fields...)
}

// LogError logs at error level and appends err as the "error" field when non-nil.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	LoggerFromContext(ctx).Error(msg, withErr(fields, err)...)
}

// LogFatal logs like LogError and then exits the process.
func LogFatal(ctx context.Context, msg string, err error, fields ...zap.Field) {
	LoggerFromContext(ctx).Fatal(msg, withErr(fields, err)...)
}

func withErr(fields []zap.Field, err error) []zap.Field {
	if err == nil {
		return fields
	}
	return append(fields, zap.Error(err))
}
