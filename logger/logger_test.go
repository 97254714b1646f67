package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger(level string) (*ZeroLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return NewWithWriter(level, false, buf), buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestZeroLoggerEmitsJSON(t *testing.T) {
	log, buf := captureLogger("info")

	log.Info().
		Str("method", "GET").
		Int("status", 200).
		Dur("elapsed", 150*time.Millisecond).
		Msg("request completed")

	entry := decodeLine(t, buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "request completed", entry["message"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, float64(200), entry["status"])
	assert.NotEmpty(t, entry["time"])
}

func TestZeroLoggerLevelFiltering(t *testing.T) {
	log, buf := captureLogger("warn")

	log.Debug().Msg("hidden")
	log.Info().Msg("hidden too")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("visible")
	assert.NotZero(t, buf.Len())
}

func TestZeroLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log, buf := captureLogger("not-a-level")

	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Info().Msg("visible")
	assert.NotZero(t, buf.Len())
}

func TestZeroLoggerErrField(t *testing.T) {
	log, buf := captureLogger("info")

	log.Error().Err(errors.New("boom")).Msg("request failed")

	entry := decodeLine(t, buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
}

func TestZeroLoggerRedactsSensitiveStrings(t *testing.T) {
	log, buf := captureLogger("info")

	log.Info().
		Str("authorization", "Bearer token-value").
		Str("url", "https://api.example.com").
		Msg("outbound")

	entry := decodeLine(t, buf)
	assert.Equal(t, DefaultMaskValue, entry["authorization"])
	assert.Equal(t, "https://api.example.com", entry["url"])
}

func TestZeroLoggerRedactsInterfaceMaps(t *testing.T) {
	log, buf := captureLogger("debug")

	log.Debug().
		Interface("headers", map[string]string{
			"Authorization": "Bearer abc",
			"Accept":        "application/json",
		}).
		Msg("payload")

	entry := decodeLine(t, buf)
	headers := entry["headers"].(map[string]any)
	assert.Equal(t, DefaultMaskValue, headers["Authorization"])
	assert.Equal(t, "application/json", headers["Accept"])
}

func TestWithFields(t *testing.T) {
	log, buf := captureLogger("info")

	log.WithFields(map[string]any{
		"component": "httpclient",
		"api_key":   "k-999",
	}).Info().Msg("hello")

	entry := decodeLine(t, buf)
	assert.Equal(t, "httpclient", entry["component"])
	assert.Equal(t, DefaultMaskValue, entry["api_key"])
}

func TestWithContextNonContextValue(t *testing.T) {
	log, _ := captureLogger("info")
	assert.Equal(t, Logger(log), log.WithContext("not a context"))
}

func TestWithRedactorNilDisablesMasking(t *testing.T) {
	log, buf := captureLogger("info")

	log.WithRedactor(nil).Info().Str("authorization", "Bearer abc").Msg("raw")

	entry := decodeLine(t, buf)
	assert.Equal(t, "Bearer abc", entry["authorization"])
}
