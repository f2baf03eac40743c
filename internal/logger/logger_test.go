package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	out := sanitizeKVs([]interface{}{"api_key", "sk-123", "topic", "fractions", "Authorization", "Bearer x", "dangling"})
	assert.Equal(t, []interface{}{"api_key", "[REDACTED]", "topic", "fractions", "Authorization", "[REDACTED]", "dangling"}, out)
}

func TestLoggerRedactsCredentials(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("apikey", "secret-value").Info("gateway configured", "model", "gemini")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "[REDACTED]", fields["apikey"])
	assert.Equal(t, "gemini", fields["model"])
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode)
		require.NoError(t, err)
		require.NotNil(t, l.SugaredLogger)
	}
	NewNop().Info("discarded")
}
