package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	GatewayKey      string
	GatewayEndpoint string
	GatewayModel    string
	GatewayTimeout  time.Duration
	VisionKey       string
	VisionBaseURL   string
	VisionModel     string
	Database        string
	RedisURL        string
	Port            string
	LogMode         string
}

// Load reads configuration from the environment, providing sensible defaults.
func Load() Config {
	// Load .env file if it exists (useful for development)
	_ = godotenv.Load()
	cfg := Config{
		GatewayKey:      firstEnv("AI_GATEWAY_API_KEY", "LOVABLE_API_KEY"),
		GatewayEndpoint: getEnv("AI_GATEWAY_ENDPOINT", "https://ai.gateway.lovable.dev/v1"),
		GatewayModel:    getEnv("AI_GATEWAY_MODEL", "google/gemini-3-flash-preview"),
		GatewayTimeout:  time.Duration(getInt("GATEWAY_TIMEOUT", 60)) * time.Second,
		VisionKey:       os.Getenv("VISION_API_KEY"),
		VisionBaseURL:   getEnv("VISION_BASE_URL", "https://open.bigmodel.cn/api/paas/v4/"),
		VisionModel:     getEnv("VISION_MODEL", "glm-4.5v"),
		Database:        getEnv("DATABASE_PATH", "./data/booster.db"),
		RedisURL:        os.Getenv("REDIS_URL"),
		Port:            getEnv("PORT", "8080"),
		LogMode:         getEnv("LOG_MODE", "dev"),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		log.Fatalf("failed to ensure database dir %s: %v", cfg.Database, err)
	}

	return cfg
}

// ClientConfig is the configuration of the booster terminal client.
type ClientConfig struct {
	APIURL    string
	StatePath string
	Learner   string
	Language  string
	LogMode   string
}

// LoadClient reads the terminal client configuration.
func LoadClient() ClientConfig {
	_ = godotenv.Load()
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return ClientConfig{
		APIURL:    getEnv("BOOSTER_API_URL", "http://localhost:8080"),
		StatePath: getEnv("BOOSTER_STATE_PATH", filepath.Join(home, ".concept-booster", "state.db")),
		Learner:   getEnv("BOOSTER_LEARNER", "student"),
		Language:  getEnv("BOOSTER_LANGUAGE", "english"),
		LogMode:   getEnv("LOG_MODE", "dev"),
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
