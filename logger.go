package symtensor

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/symtensor/psio"
)

// Logger wraps slog.Logger with symtensor-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithID adds the computation id.
func (l *Logger) WithID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("context_id", id),
	}
}

// WithUnit adds a unit field to the logger.
func (l *Logger) WithUnit(u psio.Unit) *Logger {
	return &Logger{
		Logger: l.Logger.With("unit", int(u)),
	}
}

// LogOpen logs the opening of a unit.
func (l *Logger) LogOpen(ctx context.Context, u psio.Unit, mode psio.Mode, err error) {
	ul := l.WithUnit(u)
	if err != nil {
		ul.ErrorContext(ctx, "unit open failed",
			"mode", mode.String(),
			"error", err,
		)
	} else {
		ul.DebugContext(ctx, "unit opened",
			"mode", mode.String(),
		)
	}
}

// LogClose logs the closing of a unit.
func (l *Logger) LogClose(ctx context.Context, u psio.Unit, keep bool, err error) {
	ul := l.WithUnit(u)
	if err != nil {
		ul.ErrorContext(ctx, "unit close failed",
			"keep", keep,
			"error", err,
		)
	} else {
		ul.DebugContext(ctx, "unit closed",
			"keep", keep,
		)
	}
}

// LogFlush logs a tile cache close or flush. what names the tiles flushed.
func (l *Logger) LogFlush(ctx context.Context, what string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "tile flush failed",
			"tiles", what,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "tiles flushed",
			"tiles", what,
		)
	}
}

// LogTransfer logs the archive or restore of a unit file.
func (l *Logger) LogTransfer(ctx context.Context, op string, u psio.Unit, bytes int64, err error) {
	ul := l.WithUnit(u)
	if err != nil {
		ul.ErrorContext(ctx, op+" failed",
			"error", err,
		)
	} else {
		ul.InfoContext(ctx, op+" completed",
			"bytes", bytes,
		)
	}
}

// LogTeardown logs the end of a computation.
func (l *Logger) LogTeardown(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "teardown completed with errors",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "teardown completed")
	}
}
