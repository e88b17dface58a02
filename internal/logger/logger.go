// Package logger wraps zerolog for diagnostics written to stderr.
// Standard output is reserved for the status line itself.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	Logger zerolog.Logger
)

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelWarn  LogLevel = "warn"
)

func init() {
	Configure(os.Stderr, LevelWarn, true)
}

// Configure sets up the global logger with the specified level and output.
// Pretty output is a single uncolored console line per event.
func Configure(w io.Writer, level LogLevel, pretty bool) {
	if pretty {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    true,
		}
	}
	Logger = zerolog.New(w).Level(zeroLevel(level)).With().Timestamp().Logger()
}

func zeroLevel(level LogLevel) zerolog.Level {
	if level == LevelDebug {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

// LevelFromEnv determines the log level from STATUSLINE_DEBUG.
func LevelFromEnv() LogLevel {
	debug := strings.ToLower(os.Getenv("STATUSLINE_DEBUG"))
	if debug == "true" || debug == "1" {
		return LevelDebug
	}
	return LevelWarn
}

// Debugf logs a formatted message at debug level
func Debugf(format string, args ...interface{}) {
	Logger.Debug().Msgf(format, args...)
}

// Warn logs a message at warn level
func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

