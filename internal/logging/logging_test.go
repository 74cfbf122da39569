package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" info ":  zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for in, want := range cases {
		got, ok := ParseLevel(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "loud"} {
		_, ok := ParseLevel(in)
		assert.False(t, ok, in)
	}
}

func TestConfigureJSON(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogJSON, "")
	var buf bytes.Buffer
	logger := Configure(Config{Level: "warn", JSON: true, Out: &buf})

	logger.Info().Msg("hidden")
	logger.Warn().Str("id", "PG").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "PG", line["id"])
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "gnssbin", line["app"])
}

func TestConfigureEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogJSON, "true")
	var buf bytes.Buffer
	logger := Configure(Config{Level: "error", Out: &buf})

	logger.Debug().Msg("resync")
	assert.Contains(t, buf.String(), `"message":"resync"`)
}

func TestConfigureConsole(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogJSON, "")
	var buf bytes.Buffer
	logger := Configure(Config{Level: "info", NoColor: true, Out: &buf})

	logger.Info().Str("protocol", "novatel").Msg("decoding")
	assert.Contains(t, buf.String(), "decoding")
	assert.Contains(t, buf.String(), "protocol=novatel")
}
