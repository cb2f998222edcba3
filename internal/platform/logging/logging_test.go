package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWritesJSONWithModule(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "recipebook", "v0.1.0", slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("recipe added", "recipe_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "recipe added", entry["msg"])
	assert.Equal(t, "recipebook", entry["module"])
	assert.Equal(t, "v0.1.0", entry["version"])
	assert.EqualValues(t, 7, entry["recipe_id"])
	assert.NotContains(t, entry, "source")
}
