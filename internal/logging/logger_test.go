package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("Should apply level and format", func(t *testing.T) {
		logger, closer, err := New(Config{Level: LevelDebug, Format: FormatJSON})
		require.NoError(t, err)
		defer closer.Close()
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
	})

	t.Run("Should default to info for an empty level", func(t *testing.T) {
		logger, _, err := New(Config{})
		require.NoError(t, err)
		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	})

	t.Run("Should write to the configured file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "edi.log")
		logger, closer, err := New(Config{Level: LevelInfo, Format: FormatText, File: path})
		require.NoError(t, err)
		logger.WithField("file", "a.edi").Info("processed")
		require.NoError(t, closer.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "file=a.edi")
	})

	t.Run("Should reject unknown formats", func(t *testing.T) {
		_, _, err := New(Config{Format: "xml"})
		assert.Error(t, err)
	})
}
