package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, DisabledLevel, ParseLevel("disabled"))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	lgr := New(Config{Level: InfoLevel, Output: &buf})

	lgr.Debug().Msg("hidden")
	lgr.Info().Str("walletId", "W-1").Msg("wallet topped up")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "wallet topped up", entry["message"])
	assert.Equal(t, "W-1", entry["walletId"])
	assert.Equal(t, "info", entry["level"])
}
