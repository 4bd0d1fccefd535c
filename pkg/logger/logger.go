// Package logger wraps zerolog with the configuration knobs the service uses.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger wraps a configured zerolog logger.
type Logger struct {
	logger zerolog.Logger
}

// New creates a logger from the configured level, format and output target.
func New(level, format, output string) *Logger {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	var writer io.Writer = os.Stdout
	if output != "" && output != "stdout" {
		file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open log file")
		}
		writer = file
	}

	if format == "console" {
		writer = zerolog.ConsoleWriter{Out: writer}
	}

	return &Logger{logger: zerolog.New(writer).With().Timestamp().Caller().Logger()}
}

// Debug starts a debug-level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info starts an info-level event.
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn starts a warn-level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error starts an error-level event.
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// Fatal starts a fatal-level event; the message call exits the process.
func (l *Logger) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

// With creates a child logger context with additional fields.
func (l *Logger) With() zerolog.Context {
	return l.logger.With()
}

// GetLogger returns the underlying zerolog.Logger.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.logger
}

var global *Logger

// Init initializes the global logger.
func Init(level, format, output string) {
	global = New(level, format, output)
}

// Get returns the global logger, creating a default one if Init never ran.
func Get() *Logger {
	if global == nil {
		global = New("info", "json", "stdout")
	}
	return global
}
