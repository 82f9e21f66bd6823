package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with map-based structured fields.
type Logger struct {
	zlog zerolog.Logger
}

// New creates a Logger for the given environment writing to stdout.
// Development gets colored console output at debug level, "test" only
// records warnings and above, anything else is JSON at info level.
func New(env string) *Logger {
	if env == "development" {
		return NewWithWriter(env, zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter creates a Logger for env that writes to w.
func NewWithWriter(env string, w io.Writer) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	zlog := zerolog.New(w).
		Level(levelFor(env)).
		With().
		Timestamp().
		Str("service", "land-tax").
		Logger()

	return &Logger{zlog: zlog}
}

func levelFor(env string) zerolog.Level {
	switch env {
	case "development":
		return zerolog.DebugLevel
	case "test":
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message with optional fields.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	withFields(l.zlog.Debug(), fields).Msg(msg)
}

// Info logs an info message with optional fields.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	withFields(l.zlog.Info(), fields).Msg(msg)
}

// Warn logs a warning message with optional fields.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	withFields(l.zlog.Warn(), fields).Msg(msg)
}

// Error logs an error message with an error and optional fields.
func (l *Logger) Error(msg string, err error, fields map[string]interface{}) {
	withFields(l.zlog.Error().Err(err), fields).Msg(msg)
}

// Fatal logs a fatal message and exits the application.
func (l *Logger) Fatal(msg string, err error, fields map[string]interface{}) {
	withFields(l.zlog.Fatal().Err(err), fields).Msg(msg)
}

func withFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	return event
}

// With creates a child logger with additional context fields.
func (l *Logger) With(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return &Logger{zlog: ctx.Logger()}
}

// WithRequestID creates a child logger with a request ID field.
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("request_id", requestID).Logger()}
}

// WithUserID creates a child logger tagged with the authenticated user.
func (l *Logger) WithUserID(userID string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("user_id", userID).Logger()}
}

// GetZerolog returns the underlying zerolog.Logger for advanced usage.
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}
