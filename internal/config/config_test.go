package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("AI_GATEWAY_API_KEY", "")
		t.Setenv("LOVABLE_API_KEY", "")
		t.Setenv("AI_GATEWAY_ENDPOINT", "")
		t.Setenv("GATEWAY_TIMEOUT", "")
		t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "db", "booster.db"))

		cfg := Load()
		assert.Empty(t, cfg.GatewayKey)
		assert.Equal(t, "https://ai.gateway.lovable.dev/v1", cfg.GatewayEndpoint)
		assert.Equal(t, "google/gemini-3-flash-preview", cfg.GatewayModel)
		assert.Equal(t, 60*time.Second, cfg.GatewayTimeout)
		assert.Equal(t, "8080", cfg.Port)
		assert.DirExists(t, filepath.Dir(cfg.Database))
	})

	t.Run("LegacyKeyName", func(t *testing.T) {
		t.Setenv("AI_GATEWAY_API_KEY", "")
		t.Setenv("LOVABLE_API_KEY", "legacy-key")
		t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "booster.db"))

		assert.Equal(t, "legacy-key", Load().GatewayKey)
	})

	t.Run("PreferredKeyWins", func(t *testing.T) {
		t.Setenv("AI_GATEWAY_API_KEY", "primary")
		t.Setenv("LOVABLE_API_KEY", "legacy-key")
		t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "booster.db"))

		assert.Equal(t, "primary", Load().GatewayKey)
	})

	t.Run("InvalidTimeoutFallsBack", func(t *testing.T) {
		t.Setenv("GATEWAY_TIMEOUT", "soon")
		t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "booster.db"))

		assert.Equal(t, 60*time.Second, Load().GatewayTimeout)
	})
}

func TestLoadClient(t *testing.T) {
	t.Setenv("BOOSTER_API_URL", "http://tutor.local:9000")
	t.Setenv("BOOSTER_LANGUAGE", "hinglish")

	cfg := LoadClient()
	assert.Equal(t, "http://tutor.local:9000", cfg.APIURL)
	assert.Equal(t, "hinglish", cfg.Language)
	assert.Equal(t, "student", cfg.Learner)
	assert.NotEmpty(t, cfg.StatePath)
}
