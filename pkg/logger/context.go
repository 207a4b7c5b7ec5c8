package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const loggerKey ctxKey = "logger"

// NewContext stores l as the request-scoped logger.
func NewContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// With returns a new context that includes a logger with fields.
func With(ctx context.Context, fields ...any) context.Context {
	return NewContext(ctx, From(ctx).With(fields...))
}

// From returns the logger stored in context, or default if missing.
func From(ctx context.Context) *slog.Logger {
	if l, ok := FromContext(ctx); ok {
		return l
	}
	return LoggerWrapper()
}

// FromContext reports the logger stored by NewContext or With, if any.
func FromContext(ctx context.Context) (*slog.Logger, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(loggerKey).(*slog.Logger)
	return l, ok
}

// Discard returns a logger that drops every record. Used by tests and by
// commands that print their own output.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
