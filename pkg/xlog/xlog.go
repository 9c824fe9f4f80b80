// Package xlog provides the structured logging seam every primitive in this
// module accepts as an optional construction argument: leveled,
// context-aware, structured logging via log/slog, with With/WithGroup for
// derived loggers that carry a primitive's resource name and owner id on
// every line. Runtime level control and stack-trace capture are
// deliberately out of scope — nothing in this module needs them.
package xlog

import (
	"context"
	"log/slog"
)

// Logger is the logging seam accepted by every primitive's constructor. A
// nil Logger is valid everywhere it is accepted and means "no logging" —
// every call site nil-checks before logging, so logging stays a purely
// optional ambient concern rather than a hard dependency.
type Logger interface {
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)
	Info(ctx context.Context, msg string, attrs ...slog.Attr)
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With returns a derived Logger carrying attrs on every subsequent call.
	With(attrs ...slog.Attr) Logger

	// WithGroup returns a derived Logger that nests subsequent With
	// attributes under name.
	WithGroup(name string) Logger
}

// slogLogger adapts a *slog.Logger to Logger.
type slogLogger struct {
	base *slog.Logger
}

// New wraps base as a Logger. If base is nil, slog.Default() is used.
func New(base *slog.Logger) Logger {
	if base == nil {
		base = slog.Default()
	}
	return &slogLogger{base: base}
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if !l.base.Enabled(ctx, level) {
		return
	}
	l.base.LogAttrs(ctx, level, msg, attrs...)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs...)
}

func (l *slogLogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs...)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs...)
}

func (l *slogLogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs...)
}

func (l *slogLogger) With(attrs ...slog.Attr) Logger {
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, a)
	}
	return &slogLogger{base: l.base.With(args...)}
}

func (l *slogLogger) WithGroup(name string) Logger {
	return &slogLogger{base: l.base.WithGroup(name)}
}
