package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultEndpoint = "https://models.github.ai/inference"

type Config struct {
	// Server
	Port          string
	Env           string
	AllowedOrigin string

	// Inference gateway
	Provider             string
	APIKey               string
	Endpoint             string
	Model                string
	MaxTokens            int
	Temperature          float64
	GatewayConcurrentReq int
	GatewayTimeout       time.Duration

	// Conversations
	SystemPromptFile string
	HistoryExchanges int
	MaxSessions      int
	SessionTTL       time.Duration
	SessionMode      string
	SessionSecret    string

	// Exchange archive
	ArchiveURL       string
	ArchiveWorkers   int
	ArchiveQueueSize int
}

// Load reads configuration from the environment. envFiles are loaded first
// when present; with none given, ./.env is tried.
func Load(envFiles ...string) *Config {
	// Load .env file if it exists
	godotenv.Load(envFiles...)

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "5000"),
		Env:                  getEnvOrDefault("ENV", "development"),
		AllowedOrigin:        getEnvOrDefault("ALLOWED_ORIGIN", ""),
		Provider:             getEnvOrDefault("GATEWAY_PROVIDER", "openai"),
		APIKey:               firstEnv("INFERENCE_API_KEY", "DEEPSEEK_API_KEY"),
		Endpoint:             getEnvOrDefault("INFERENCE_ENDPOINT", DefaultEndpoint),
		Model:                getEnvOrDefault("INFERENCE_MODEL", "openai/gpt-4o"),
		MaxTokens:            getEnvAsIntOrDefault("MAX_TOKENS", 4096),
		Temperature:          getEnvAsFloatOrDefault("TEMPERATURE", 0.7),
		GatewayConcurrentReq: getEnvAsIntOrDefault("GATEWAY_CONCURRENT_REQUESTS", 5),
		GatewayTimeout:       getEnvAsDurationOrDefault("GATEWAY_TIMEOUT", 60*time.Second),
		SystemPromptFile:     getEnvOrDefault("SYSTEM_PROMPT_FILE", ""),
		HistoryExchanges:     getEnvAsIntOrDefault("HISTORY_EXCHANGES", 5),
		MaxSessions:          getEnvAsIntOrDefault("MAX_SESSIONS", 10000),
		SessionTTL:           getEnvAsDurationOrDefault("SESSION_TTL", 2*time.Hour),
		SessionMode:          getEnvOrDefault("SESSION_MODE", "address"),
		SessionSecret:        getEnvOrDefault("SESSION_SECRET", ""),
		ArchiveURL:           getEnvOrDefault("ARCHIVE_URL", ""),
		ArchiveWorkers:       getEnvAsIntOrDefault("ARCHIVE_WORKERS", 2),
		ArchiveQueueSize:     getEnvAsIntOrDefault("ARCHIVE_QUEUE_SIZE", 256),
	}

	if cfg.APIKey == "" {
		panic("required environment variable INFERENCE_API_KEY is not set")
	}
	if cfg.SessionMode == "token" {
		cfg.SessionSecret = mustGetEnv("SESSION_SECRET")
	}

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

// firstEnv returns the value of the first key that is set.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}
