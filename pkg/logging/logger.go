package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger defines the interface for logging
// Implementations include slog-backed text/JSON loggers and a null logger
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields Fields)

	// Info logs an info message
	Info(ctx context.Context, msg string, fields Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a logger with additional fields
	WithFields(fields Fields) Logger

	// Close flushes and closes the logger
	Close() error
}

// Options configures a logger
type Options struct {
	Format string // "text" or "json"
	Level  string // "debug", "info", "warn", "error"
	File   string // log file path (empty = stderr)
}

// slogLogger is a Logger backed by log/slog
type slogLogger struct {
	logger *slog.Logger
	closer io.Closer
}

// New creates a logger from options. Text format uses the tint handler for
// colored, aligned output; JSON format uses slog's JSON handler.
func New(opts Options) (Logger, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closer = f
	}

	level := parseLevel(opts.Level)
	var handler slog.Handler
	switch opts.Format {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    opts.File != "",
		})
	}

	return &slogLogger{logger: slog.New(handler), closer: closer}, nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func attrs(fields Fields) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}

// Debug logs a debug message
func (l *slogLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.logger.DebugContext(ctx, msg, attrs(fields)...)
}

// Info logs an info message
func (l *slogLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.logger.InfoContext(ctx, msg, attrs(fields)...)
}

// Warn logs a warning message
func (l *slogLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.logger.WarnContext(ctx, msg, attrs(fields)...)
}

// Error logs an error message
func (l *slogLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	args := attrs(fields)
	if err != nil {
		args = append(args, tint.Err(err))
	}
	l.logger.ErrorContext(ctx, msg, args...)
}

// WithFields returns a logger with additional fields
func (l *slogLogger) WithFields(fields Fields) Logger {
	return &slogLogger{
		logger: l.logger.With(attrs(fields)...),
		closer: nil, // only the root logger owns the file handle
	}
}

// Close flushes and closes the logger
func (l *slogLogger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
