package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
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
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"trace", zerolog.TraceLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("chatty")
	assert.Error(t, err)
}

func TestNew_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: "info", Format: FormatJSON, Writer: &buf})
	require.NoError(t, err)
	defer closer.Close()

	engineLogger := Component(logger, "engine")
	engineLogger.Info().Str("category", "backend").Msg("switched")
	logger.Debug().Msg("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "engine", entry["component"])
	assert.Equal(t, "backend", entry["category"])
	assert.Equal(t, "switched", entry["message"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_ConsoleWithFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "eftwatch.log")

	logger, closer, err := New(Options{Level: "debug", Writer: &buf, File: path, NoColor: true})
	require.NoError(t, err)

	logger.Debug().Str("path", "backend_1.log").Msg("tailing")
	require.NoError(t, closer.Close())

	assert.Contains(t, buf.String(), "tailing")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tailing")
	assert.Contains(t, string(data), "backend_1.log")
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	_, closer, err := New(Options{Format: "xml"})
	require.Error(t, err)
	require.NotNil(t, closer)
}
