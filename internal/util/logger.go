package util

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nakachan-ing/jmt-cli/internal/model"
	"github.com/rs/zerolog"
)

// NewLogger builds the diagnostics logger. With toFile the log goes to the
// configured file (the board owns the terminal); otherwise to stderr.
// The returned closer must be called on exit.
func NewLogger(config model.Config, toFile bool) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil || config.LogLevel == "" {
		level = zerolog.InfoLevel
	}

	if !toFile || config.LogFile == "" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		return zerolog.New(out).Level(level).With().Timestamp().Logger(), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(config.LogFile), 0755); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("❌ Failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("❌ Failed to open log file: %w", err)
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger(), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
