package restconsumer

import (
	"context"
	"fmt"
	"log/slog"
)

// RequestLogger is the interface used by [Transport] for logging requests,
// retries and errors. It matches resty's Logger, so the same value is also
// handed to the underlying resty client. Supply an implementation via
// [WithRequestLogger].
//
// The transport never passes a basic-auth password to the logger.
type RequestLogger interface {
	Errorf(format string, v ...any)
	Warnf(format string, v ...any)
	Debugf(format string, v ...any)
}

// NoopLogger is a [RequestLogger] that silently discards all log messages.
// It is the default logger used when no logger is provided.
type NoopLogger struct{}

func (l *NoopLogger) Errorf(_ string, _ ...any) {}
func (l *NoopLogger) Warnf(_ string, _ ...any)  {}
func (l *NoopLogger) Debugf(_ string, _ ...any) {}

// SlogLogger adapts a *slog.Logger to [RequestLogger].
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger returns a [RequestLogger] writing to logger, or to
// slog.Default() when logger is nil.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger.With("component", "restconsumer")}
}

func (l *SlogLogger) Errorf(format string, v ...any) {
	l.log(slog.LevelError, format, v...)
}

func (l *SlogLogger) Warnf(format string, v ...any) {
	l.log(slog.LevelWarn, format, v...)
}

func (l *SlogLogger) Debugf(format string, v ...any) {
	l.log(slog.LevelDebug, format, v...)
}

func (l *SlogLogger) log(level slog.Level, format string, v ...any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(format, v...))
}
