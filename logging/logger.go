// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. It also offers a RunLogger with contextual helpers
// (run id, component) and domain specific helpers for conversion and engine
// invocations.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel is a thin enum for user friendly level configuration decoupled
// from slog.
type LogLevel int

const (
	// LogLevelDebug is the debug logging level.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is the informational logging level.
	LogLevelInfo
	// LogLevelWarn is the warning logging level.
	LogLevelWarn
	// LogLevelError is the error logging level.
	LogLevelError
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger defines the minimal logging interface for slicerun. Args are
// alternating key/value pairs as in slog.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	*slog.Logger
}

// Debug logs a debug message.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.Logger.Debug(msg, args...) }

// Info logs an informational message.
func (s *SlogAdapter) Info(msg string, args ...any) { s.Logger.Info(msg, args...) }

// Warn logs a warning message.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.Logger.Warn(msg, args...) }

// Error logs an error message.
func (s *SlogAdapter) Error(msg string, args ...any) { s.Logger.Error(msg, args...) }

// NewSlogAdapter creates a Logger from *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultSlogLogger creates a Logger using slog.Default().
func NewDefaultSlogLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// NewSlogLogger builds a Logger writing to stderr with the given level and
// format ("json" or "text", defaulting to json).
func NewSlogLogger(level LogLevel, format string) Logger {
	return NewSlogLoggerTo(os.Stderr, level, format)
}

// NewSlogLoggerTo builds a Logger writing to w with the given level and
// format.
func NewSlogLoggerTo(w io.Writer, level LogLevel, format string) Logger {
	opts := &slog.HandlerOptions{Level: slogLevel(level)}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return NewSlogAdapter(slog.New(handler))
}

func slogLevel(l LogLevel) slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// RunLogger wraps a *slog.Logger adding run scoped context and domain
// helpers. It is cheap to copy via With* methods.
type RunLogger struct {
	logger    *slog.Logger
	component string
	runID     string
}

// NewRunLogger wraps an slog logger for run scoped logging.
func NewRunLogger(logger *slog.Logger) *RunLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunLogger{logger: logger}
}

// WithComponent sets the logical component (engine, stager, converter).
func (l *RunLogger) WithComponent(c string) *RunLogger {
	nl := *l
	nl.component = c
	return &nl
}

// WithRun attaches the run identifier.
func (l *RunLogger) WithRun(runID string) *RunLogger {
	nl := *l
	nl.runID = runID
	return &nl
}

func (l *RunLogger) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(extra)+2)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if l.runID != "" {
		attrs = append(attrs, slog.String("run_id", l.runID))
	}
	return append(attrs, extra...)
}

// Debug logs at debug level with key/value args.
func (l *RunLogger) Debug(msg string, args ...any) {
	l.logger.With(attrsToAny(l.attrs())...).Debug(msg, args...)
}

// Info logs at info level with key/value args.
func (l *RunLogger) Info(msg string, args ...any) {
	l.logger.With(attrsToAny(l.attrs())...).Info(msg, args...)
}

// Warn logs at warn level with key/value args.
func (l *RunLogger) Warn(msg string, args ...any) {
	l.logger.With(attrsToAny(l.attrs())...).Warn(msg, args...)
}

// Error logs at error level with key/value args.
func (l *RunLogger) Error(msg string, args ...any) {
	l.logger.With(attrsToAny(l.attrs())...).Error(msg, args...)
}

// LogConversion records a format conversion outcome.
func (l *RunLogger) LogConversion(ext string, inBytes, outBytes int, dur time.Duration, err error) {
	attrs := l.attrs(
		slog.String("extension", ext),
		slog.Int("input_bytes", inBytes),
		slog.Int("output_bytes", outBytes),
		slog.Duration("duration", dur),
	)
	level := slog.LevelInfo
	msg := "conversion completed"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelError
		msg = "conversion failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogEngineCall records an engine invocation outcome.
func (l *RunLogger) LogEngineCall(args []string, dur time.Duration, err error) {
	attrs := l.attrs(
		slog.Int("arg_count", len(args)),
		slog.Duration("duration", dur),
	)
	level := slog.LevelInfo
	msg := "engine invocation completed"
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		level = slog.LevelError
		msg = "engine invocation failed"
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func attrsToAny(attrs []slog.Attr) []any {
	out := make([]any, len(attrs))
	for i, a := range attrs {
		out[i] = a
	}
	return out
}

// NoOpLogger discards all log messages. Useful for testing or when logging
// is disabled.
type NoOpLogger struct{}

// Debug logs a debug message.
func (NoOpLogger) Debug(string, ...any) {}

// Info logs an informational message.
func (NoOpLogger) Info(string, ...any) {}

// Warn logs a warning message.
func (NoOpLogger) Warn(string, ...any) {}

// Error logs an error message.
func (NoOpLogger) Error(string, ...any) {}
