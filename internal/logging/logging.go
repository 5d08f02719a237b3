// Package logging wraps log/slog with the level and format conventions
// used by the takeoff CLI.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelEnv names the environment variable that selects the log level.
const LevelEnv = "TAKEOFF_LOG_LEVEL"

type Logger struct {
	*slog.Logger
}

// New returns a text logger on stderr at the level given by LevelEnv
// (DEBUG, INFO, WARN, ERROR; default WARN so CLI output stays clean).
func New() *Logger {
	return NewWithWriter(os.Stderr, LevelFromEnv())
}

func NewWithWriter(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog.New(handler)}
}

// Discard returns a logger that drops every record.
func Discard() *Logger {
	return NewWithWriter(io.Discard, slog.LevelError+1)
}

func LevelFromEnv() slog.Level {
	switch strings.ToUpper(os.Getenv(LevelEnv)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Error logs msg at error level with err attached.
func (l *Logger) Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.Log(ctx, slog.LevelError, msg, args...)
}

// WithRun returns a logger that tags every record with a run label.
func (l *Logger) WithRun(label string) *Logger {
	return &Logger{l.Logger.With("run", label)}
}

type ctxKey struct{}

func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or a discarding logger.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Discard()
}
