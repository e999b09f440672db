// Package requestctx carries correlation ids from HTTP requests and background
// job runs down into domain code, so a payroll run's log lines can be traced
// back to whatever triggered it.
package requestctx

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	jobRunIDKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithJobRunID(ctx context.Context, runID string) context.Context {
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, jobRunIDKey, runID)
}

func JobRunID(ctx context.Context) string {
	value, _ := ctx.Value(jobRunIDKey).(string)
	return value
}

// Logger returns the default logger tagged with the ids present in ctx.
func Logger(ctx context.Context) *slog.Logger {
	logger := slog.Default()
	if id := RequestID(ctx); id != "" {
		logger = logger.With("requestId", id)
	}
	if id := JobRunID(ctx); id != "" {
		logger = logger.With("jobRunId", id)
	}
	return logger
}
