// =============================================================================
// EDI Codec - Logging
// =============================================================================
//
// This module builds the structured logger shared by the CLI and the
// processing pipeline. Components accept a logrus.FieldLogger and log with
// fields (file, dialect, transactions, errors) rather than formatted text.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Level is a logging level name.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warn"
	LevelError   Level = "error"
)

// Format is the output format of log lines.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config holds the logger settings.
type Config struct {
	Level  Level  `mapstructure:"level" yaml:"level"`
	Format Format `mapstructure:"format" yaml:"format"`

	// File, when set, receives log lines in addition to stderr.
	File string `mapstructure:"file" yaml:"file"`
}

// Validate checks the Config for unsupported values.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON, "":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LevelDebug, LevelInfo, LevelWarning, LevelError, "":
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	return nil
}

// New creates a logger from the configuration. The returned closer releases
// the log file, if one was opened.
func New(cfg Config) (*logrus.Logger, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(string(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	}

	logger.SetOutput(os.Stderr)
	if cfg.File == "" {
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, f))
	return logger, f, nil
}

// Discard returns a logger that drops everything. Used as the default when a
// component is built without one.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
