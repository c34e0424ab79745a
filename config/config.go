package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the classification service
type Config struct {
	// Server configuration
	Port string

	// LLM provider selection: "openai", "gemini" or "stub"
	LLMProvider string

	// OpenAI configuration
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIMaxTokens int

	// Gemini configuration
	GeminiAPIKey string
	GeminiModel  string

	// Cache configuration
	CacheTTL time.Duration

	// Upload limits
	MaxImagesPerRequest int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	config := &Config{
		// Server defaults
		Port: getEnv("PORT", "8080"),

		// Provider defaults
		LLMProvider: getEnv("LLM_PROVIDER", "openai"),

		// OpenAI defaults
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIMaxTokens: getIntEnv("OPENAI_MAX_TOKENS", 1000),

		// Gemini defaults
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		// Cache defaults (one hour)
		CacheTTL: getDurationEnv("CACHE_TTL", 3600*time.Second),

		// Upload defaults
		MaxImagesPerRequest: getIntEnv("MAX_IMAGES_PER_REQUEST", 20),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value.
// Accepts either a Go duration string ("30m") or a bare number of seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
