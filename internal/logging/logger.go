// Package logging builds the zerolog loggers used by the CLI and the browser.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

const timeFormat = "15:04:05"

// Options configures New.
type Options struct {
	// Out receives log lines. Nil discards everything.
	Out io.Writer
	// Verbose lowers the level from info to debug.
	Verbose bool
	// NoColor disables ANSI colors, e.g. when writing to a file.
	NoColor bool
}

// New creates a console logger with timestamps.
func New(opts Options) zerolog.Logger {
	if opts.Out == nil {
		return zerolog.Nop()
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        opts.Out,
		TimeFormat: timeFormat,
		NoColor:    opts.NoColor,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// OpenFile opens path for appending log lines, creating parent directories.
// The browser owns the terminal, so its logs go to a file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
