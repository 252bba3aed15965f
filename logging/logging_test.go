package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meenmo/cashflowrisk/config"
	"github.com/meenmo/cashflowrisk/logging"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logging.New(config.LoggingConfig{Level: "info", Encoding: "json"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("valued", zap.String("leg", "fixed"))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "valued", entry["msg"])
	assert.Equal(t, "fixed", entry["leg"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_Development(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log, err := logging.New(config.LoggingConfig{Level: "DEBUG", Development: true}, &buf)
	require.NoError(t, err)
	log.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	_, err := logging.New(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = logging.New(config.LoggingConfig{Level: "info", Encoding: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
