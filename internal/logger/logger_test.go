package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" INFO ", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.WarnLevel},
		{"verbose", zerolog.WarnLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestNewJSON(t *testing.T) {
	t.Setenv(EnvLevel, "info")
	t.Setenv(EnvMode, "")

	var buf bytes.Buffer
	log := New(&buf)
	log.Debug().Msg("hidden")
	log.Info().Int("comments", 3).Msg("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "loaded", entry["message"])
	assert.Equal(t, "commentary", entry["service"])
	assert.EqualValues(t, 3, entry["comments"])
}

func TestNewDevelopment(t *testing.T) {
	t.Setenv(EnvLevel, "warn")
	t.Setenv(EnvMode, "development")

	var buf bytes.Buffer
	log := New(&buf)
	log.Warn().Msg("parent cycle")

	assert.Contains(t, buf.String(), "parent cycle")
	assert.False(t, json.Valid(buf.Bytes()))
}
