// Package log provides the package-level structured logger used
// throughout the client. It wraps zerolog, shipping lines in Elastic
// Common Schema form via ecszerolog, and writes to a rotating file when
// configured, falling back to stderr otherwise.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"go.elastic.co/ecszerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	logger zerolog.Logger = ecszerolog.New(os.Stderr).Logger()
)

// Configure points the package logger at a rolling log file instead of
// stderr. It's a no-op (other than level) if path is empty.
func Configure(path string, level zerolog.Level, maxSizeMB, maxBackups, maxAgeDays int) {
	mu.Lock()
	defer mu.Unlock()

	var w io.Writer = os.Stderr
	if path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
	}

	logger = ecszerolog.New(w, ecszerolog.Level(level)).Logger()
}

// SetLevel adjusts the minimum level the package logger emits.
func SetLevel(level zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(level)
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Debugf logs a debug-level, printf-style message.
func Debugf(format string, args ...interface{}) {
	current().Debug().Msgf(format, args...)
}

// Infof logs an info-level, printf-style message.
func Infof(format string, args ...interface{}) {
	current().Info().Msgf(format, args...)
}

// Warnf logs a warn-level, printf-style message.
func Warnf(format string, args ...interface{}) {
	current().Warn().Msgf(format, args...)
}

// Errorf logs an error-level, printf-style message.
func Errorf(format string, args ...interface{}) {
	current().Error().Msgf(format, args...)
}

// Event starts a log event at the given level, for call sites that need
// structured fields beyond a format string (topic, subscription,
// consumerId, ...). Callers finish it with .Msg/.Msgf.
func Event(level zerolog.Level) *zerolog.Event {
	return current().WithLevel(level)
}
