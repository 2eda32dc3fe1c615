package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "warn", "json")
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := WithComponent("orders")
	l.Info().Msg("dropped")
	l.Warn().Str("order", "AB123").Msg("kept")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "orders", line["component"])
	assert.Equal(t, "AB123", line["order"])
	assert.Equal(t, "warn", line["level"])
}

func TestSetupWriterBadLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupWriter(&buf, "loud", "console")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
