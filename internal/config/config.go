package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime settings for the API. Collaborator credentials are
// read from the environment so that deployments can swap providers without a
// code change.
type Config struct {
	Host                string
	Port                string
	RequestTimeout      time.Duration
	CollaboratorTimeout time.Duration
	MaxUploadSize       int64

	GeminiAPIKey string
	GeminiModel  string

	OllamaURL   string
	OllamaModel string

	OpenAIAPIKey string
	OpenAIModel  string

	MealClassifierURL string

	// Reference cache policy. Zero values keep the cache unbounded for the
	// process lifetime, which matches the assumption that food-name
	// cardinality stays small.
	CacheMaxEntries int
	CacheTTL        time.Duration
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:                getEnvOrDefault("HOST", "0.0.0.0"),
		Port:                getEnvOrDefault("PORT", "8080"),
		RequestTimeout:      parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		CollaboratorTimeout: parseDurationOrDefault("COLLABORATOR_TIMEOUT", 45*time.Second),
		MaxUploadSize:       parseIntOrDefault("MAX_UPLOAD_SIZE", 10*1024*1024), // 10MB

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),

		OllamaURL:   getEnvOrDefault("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel: getEnvOrDefault("OLLAMA_MODEL", "deepseek-r1:latest"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnvOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),

		MealClassifierURL: os.Getenv("MEAL_CLASSIFIER_URL"),

		CacheMaxEntries: int(parseIntOrDefault("REFERENCE_CACHE_MAX_ENTRIES", 0)),
		CacheTTL:        parseDurationOrDefault("REFERENCE_CACHE_TTL", 0),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_SIZE must be > 0 (got %d)", cfg.MaxUploadSize)
	}
	if cfg.RequestTimeout <= 0 || cfg.CollaboratorTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, collaborator=%s)",
			cfg.RequestTimeout, cfg.CollaboratorTimeout)
	}
	if cfg.CacheMaxEntries < 0 {
		return nil, fmt.Errorf("REFERENCE_CACHE_MAX_ENTRIES must be >= 0 (got %d)", cfg.CacheMaxEntries)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration >= 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
