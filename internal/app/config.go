package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIBaseURL string // Required: Murmur API root, e.g. https://api.murmur.example

	DatabaseFile      string        // Optional: path to the credential database (default: ./murmur.db)
	KeyFile           string        // Optional: path to key material for sealing tokens at rest
	HTTPTimeout       time.Duration // Optional: per-request deadline including refresh-and-retry (default: 15s)
	RequestsPerMinute int           // Optional: outbound rate limit, 0 disables (default: 120)
	PageSize          int           // Optional: feed page size (default: 10)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		APIBaseURL:        getEnvOrDefault("MURMUR_API_URL", "http://localhost:8080"),
		DatabaseFile:      getEnvOrDefault("MURMUR_DATABASE_FILE", "murmur.db"),
		KeyFile:           os.Getenv("MURMUR_KEY_FILE"), // Optional: plaintext storage without it
		HTTPTimeout:       getEnvDurationOrDefault("MURMUR_HTTP_TIMEOUT", 15*time.Second),
		RequestsPerMinute: getEnvIntOrDefault("MURMUR_REQUESTS_PER_MINUTE", 120),
		PageSize:          getEnvIntOrDefault("MURMUR_PAGE_SIZE", 10),
		Env:               getEnvOrDefault("ENV", "dev"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are taken as seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
