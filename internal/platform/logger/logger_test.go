package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traqcheck/intake-client/internal/config"
	"github.com/traqcheck/intake-client/internal/platform/logger"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level      string
		debugShown bool
		infoShown  bool
		warnShown  bool
	}{
		{level: "debug", debugShown: true, infoShown: true, warnShown: true},
		{level: "info", debugShown: false, infoShown: true, warnShown: true},
		{level: "WARN", debugShown: false, infoShown: false, warnShown: true},
		{level: "error", debugShown: false, infoShown: false, warnShown: false},
		{level: "bogus", debugShown: false, infoShown: true, warnShown: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := logger.New(&buf, config.LogConfig{Level: tt.level, Format: "json"})
			require.NoError(t, err)

			log.Debug("debug message")
			log.Info("info message")
			log.Warn("warn message")

			out := buf.String()
			assert.Equal(t, tt.debugShown, strings.Contains(out, "debug message"))
			assert.Equal(t, tt.infoShown, strings.Contains(out, "info message"))
			assert.Equal(t, tt.warnShown, strings.Contains(out, "warn message"))
		})
	}
}

func TestNewFormats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := logger.New(&buf, config.LogConfig{Level: "info", Format: "json"})
		require.NoError(t, err)

		log.Info("hello", "component", "test")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["msg"])
		assert.Equal(t, "test", entry["component"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := logger.New(&buf, config.LogConfig{Level: "info", Format: "text"})
		require.NoError(t, err)

		log.Info("hello", "component", "test")

		assert.Contains(t, buf.String(), "msg=hello")
		assert.Contains(t, buf.String(), "component=test")
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := logger.New(&bytes.Buffer{}, config.LogConfig{Level: "info", Format: "xml"})
		assert.Error(t, err)
	})
}

func TestSetupInstallsDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	log, err := logger.Setup(config.LogConfig{Level: "info", Format: "json"})

	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Same(t, log, slog.Default())
}
