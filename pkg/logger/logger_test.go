package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeLevels(t *testing.T) {
	t.Cleanup(func() { std = newLogger() })

	var buf bytes.Buffer
	L().SetOutput(&buf)

	require.NoError(t, Initialize("warn", "text"))
	Info("hidden %d", 1)
	Warn("shown %d", 2)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")
	assert.Equal(t, logrus.WarnLevel, L().GetLevel())
}

func TestInitializeJSON(t *testing.T) {
	t.Cleanup(func() { std = newLogger() })

	var buf bytes.Buffer
	L().SetOutput(&buf)

	require.NoError(t, Initialize("debug", "json"))
	WithFields(logrus.Fields{"delay_ms": 5.2}).Debug("measured")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "measured", entry["msg"])
	assert.Equal(t, 5.2, entry["delay_ms"])
}

func TestInitializeErrors(t *testing.T) {
	t.Cleanup(func() { std = newLogger() })

	assert.Error(t, Initialize("loud", "text"))
	assert.Error(t, Initialize("info", "xml"))
}
