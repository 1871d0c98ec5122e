package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string

	// Completion service settings. The API key is required: the service
	// refuses to start without a credential rather than falling back to
	// an embedded default.
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float32
	LLMTimeout     time.Duration

	// MaxQuestionCount caps a single generation request to bound
	// downstream cost.
	MaxQuestionCount int
	// GenerateRatePerMinute limits generation requests per IP.
	GenerateRatePerMinute int
}

// Load reads configuration from environment variables with sensible
// defaults. It loads .env file if present but does not fail if missing.
// It fails when the completion-service credential is absent.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error — .env is optional

	cfg := &Config{
		ServerPort:            getEnv("SERVER_PORT", "8080"),
		GinMode:               getEnv("GIN_MODE", "debug"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "pretty"),
		AllowedOrigins:        parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
		LLMBaseURL:            getEnv("LLM_BASE_URL", "https://api.together.xyz/v1"),
		LLMAPIKey:             os.Getenv("LLM_API_KEY"),
		LLMModel:              getEnv("LLM_MODEL", "meta-llama/Llama-3.3-70B-Instruct-Turbo-Free"),
		LLMMaxTokens:          getEnvInt("LLM_MAX_TOKENS", 2000),
		LLMTemperature:        float32(getEnvFloat("LLM_TEMPERATURE", 0.7)),
		LLMTimeout:            time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxQuestionCount:      getEnvInt("MAX_QUESTION_COUNT", 50),
		GenerateRatePerMinute: getEnvInt("GENERATE_RATE_PER_MINUTE", 10),
	}

	if cfg.LLMAPIKey == "" {
		return nil, errors.New("LLM_API_KEY is not set: provide the completion service credential")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

// parseOrigins splits a comma-separated origins string into a trimmed
// slice. Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
