package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}

func TestProductionConfig(t *testing.T) {
	cfg := ProductionConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{"json info", "info", "json"},
		{"console debug", "debug", "console"},
		{"json error", "error", "json"},
		{"unknown level defaults", "bogus", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(&Config{
				Level:      tt.level,
				Format:     tt.format,
				Output:     "stdout",
				TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			})
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestNewForEnvironment(t *testing.T) {
	prod, err := NewForEnvironment("production")
	require.NoError(t, err)
	assert.NotNil(t, prod)

	dev, err := NewForEnvironment("development")
	require.NoError(t, err)
	assert.NotNil(t, dev)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(&Config{
		Level:      "info",
		Format:     "json",
		Output:     path,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	require.NoError(t, err)

	log.Info("order issued", zap.String("po_number", "PO-2026-0001"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "order issued"))
	assert.True(t, strings.Contains(string(data), "PO-2026-0001"))
}

func TestBuildWriterFallsBackOnBadPath(t *testing.T) {
	w := buildWriter(filepath.Join(t.TempDir(), "missing", "nested", "app.log"))
	assert.NotNil(t, w)
}

func TestSync(t *testing.T) {
	assert.NoError(t, Sync(zap.NewNop()))
}
