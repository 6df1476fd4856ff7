// Package logger builds the zerolog logger shared by the backend and CLI.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Environment variables read by New.
const (
	EnvLevel = "LOG_LEVEL"
	EnvMode  = "COMMENTARY_ENV"
)

// New creates a logger writing to out. The level comes from LOG_LEVEL
// (debug, info, warn, error; default warn). With COMMENTARY_ENV=development
// the output is human readable, otherwise JSON.
func New(out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level := ParseLevel(os.Getenv(EnvLevel))

	if os.Getenv(EnvMode) == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(level).
			With().
			Timestamp().
			Caller().
			Str("service", "commentary").
			Logger()
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "commentary").
		Logger()
}

// ParseLevel maps a level name to a zerolog level. Unknown names yield
// warn, which keeps CLI output quiet.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}
