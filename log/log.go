// Package log wires a process-wide zerolog.Logger and threads
// request-scoped loggers through context.Context.
//
// Reference: LeeDigitalWorks-zapfs/pkg/logger/logger.go.
package log

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type loggerKey struct{}

var globalLogger zerolog.Logger

func init() {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(os.Getenv("S3GATE_LOG_LEVEL")); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return filepath.Base(file) + ":" + strconv.Itoa(line)
	}

	globalLogger = log.With().
		Str("hostname", hostname).
		Str("component", "s3gate").
		Caller().
		Logger().
		Level(level)

	log.Logger = globalLogger
}

// Ctx returns the logger attached to ctx, or the global logger if none
// was attached with WithLogger.
func Ctx(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &globalLogger
	}
	if logger, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok {
		return logger
	}
	return &globalLogger
}

// WithLogger attaches logger to ctx so downstream calls can recover it
// via Ctx.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// SetLevel updates the global log level.
func SetLevel(level zerolog.Level) {
	globalLogger = globalLogger.Level(level)
	log.Logger = globalLogger
}

// Error logs an error-level message on the global logger.
func Error() *zerolog.Event { return globalLogger.Error() }

// Warn logs a warning-level message on the global logger.
func Warn() *zerolog.Event { return globalLogger.Warn() }

// Info logs an info-level message on the global logger.
func Info() *zerolog.Event { return globalLogger.Info() }

// Debug logs a debug-level message on the global logger.
func Debug() *zerolog.Event { return globalLogger.Debug() }
