package common

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("warn", &buf)

	logger.Info().Msg("should be filtered")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestLoggerStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("info", &buf)

	logger.Info().Str("symbol", "AAPL").Float64("price", 101.5).Msg("quote")
	out := buf.String()
	assert.Contains(t, out, `"symbol":"AAPL"`)
	assert.Contains(t, out, `"price":101.5`)
}

func TestSilentLoggerDiscards(t *testing.T) {
	logger := NewSilentLogger()
	// Must not panic and must not write anywhere visible.
	logger.Error().Msg("nothing to see")
}

func TestParseLevelDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("unknown-level", &buf)
	logger.Info().Msg("info passes at default level")
	assert.NotEmpty(t, buf.String())
}
