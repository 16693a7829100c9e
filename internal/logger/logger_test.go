package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/lessons-api/internal/config"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LoggingConfig{Level: "warn", Format: "json"}, "production", &buf)

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Error().Stack().Err(errors.New("boom")).Msg("failed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "lessons-api", line["service"])
	assert.Equal(t, "production", line["env"])
	assert.Equal(t, "boom", line["error"])
	assert.NotEmpty(t, line["stack"])
}

func TestNewWithWriter_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(config.LoggingConfig{Level: "chatty", Format: "console"}, "development", &buf)

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
