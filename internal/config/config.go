package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port string `json:"port"`
	Host string `json:"host"`

	// Gemini API settings
	GeminiAPIKey string `json:"-"` // Don't expose in JSON
	GeminiModel  string `json:"gemini_model"`

	// Search API settings
	SerperAPIKey string `json:"-"`
	NewsAPIKey   string `json:"-"`

	// Analysis settings
	MaxClaimsPerArticle   int `json:"max_claims_per_article"`
	MaxConcurrentRequests int `json:"max_concurrent_requests"`
	MaxBatchSize          int `json:"max_batch_size"`

	// Cache settings
	CacheType     string `json:"cache_type"`     // "memory" or "cloud-storage"
	CacheBucket   string `json:"cache_bucket"`   // for cloud-storage
	CacheDuration int    `json:"cache_duration"` // in hours

	// Watch settings: topics analyzed on a schedule
	WatchTopics   []string `json:"watch_topics"`
	WatchSchedule string   `json:"watch_schedule"`

	// Slack settings (optional; watch-topic results are posted when set)
	SlackBotToken string `json:"-"`
	SlackChannel  string `json:"slack_channel"`
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:                  getEnvOrDefault("PORT", "8080"),
		Host:                  getEnvOrDefault("HOST", "0.0.0.0"),
		GeminiAPIKey:          getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		SerperAPIKey:          getEnvOrDefault("SERPER_API_KEY", ""),
		NewsAPIKey:            getEnvOrDefault("NEWS_API_KEY", ""),
		MaxClaimsPerArticle:   getEnvOrDefaultInt("MAX_CLAIMS_PER_ARTICLE", 3),
		MaxConcurrentRequests: getEnvOrDefaultInt("MAX_CONCURRENT_REQUESTS", 5),
		MaxBatchSize:          getEnvOrDefaultInt("MAX_BATCH_SIZE", 10),
		CacheType:             getEnvOrDefault("CACHE_TYPE", "memory"),
		CacheBucket:           getEnvOrDefault("CACHE_BUCKET", "news-analyzer-cache"),
		CacheDuration:         getEnvOrDefaultInt("CACHE_DURATION_HOURS", 24),
		WatchTopics:           parseStringSlice(getEnvOrDefault("WATCH_TOPICS", "")),
		WatchSchedule:         getEnvOrDefault("WATCH_SCHEDULE", "0 * * * *"),
		SlackBotToken:         getEnvOrDefault("SLACK_BOT_TOKEN", ""),
		SlackChannel:          getEnvOrDefault("SLACK_CHANNEL", "#news"),
	}

	return config, config.validate()
}

// validate checks if required configuration values are present
func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return &ConfigError{Field: "GEMINI_API_KEY", Message: "Gemini API key is required"}
	}
	if c.SerperAPIKey == "" {
		return &ConfigError{Field: "SERPER_API_KEY", Message: "Serper API key is required"}
	}
	if c.NewsAPIKey == "" {
		return &ConfigError{Field: "NEWS_API_KEY", Message: "News API key is required"}
	}
	return nil
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseStringSlice parses comma-separated string into slice
func parseStringSlice(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
