package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default OpenRouter models.
const (
	DefaultFallbackModel = "google/gemini-2.0-flash-exp:free"
	DefaultOptionsModel  = "z-ai/glm-4.5-air:free"
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://192.168.1.81:3000",
}

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// Session history. An empty RedisURL disables persistence.
	RedisURL        string
	SessionTTL      time.Duration
	SessionMaxTurns int

	// OpenRouter. An empty APIKey disables the LLM path.
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	Model             string
	FallbackModel     string
	OptionsModel      string
	SiteURL           string
	SiteTitle         string

	InlineOptions bool
	// ContentRating G through PG-13 softens profanity in generated text.
	ContentRating      string
	CORSAllowedOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:          os.Getenv("REDIS_URL"),
		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		Model:             getEnv("OPENROUTER_MODEL", DefaultFallbackModel),
		FallbackModel:     getEnv("OPENROUTER_FALLBACK_MODEL", DefaultFallbackModel),
		OptionsModel:      getEnv("OPENROUTER_OPTIONS_MODEL", DefaultOptionsModel),
		SiteURL:           getEnv("OPENROUTER_SITE_URL", "http://localhost:3000"),
		SiteTitle:         getEnv("OPENROUTER_TITLE", "D&D DM Engine"),
		InlineOptions:     parseBool(os.Getenv("INLINE_OPTIONS")),
		ContentRating:     os.Getenv("CONTENT_RATING"),
	}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	maxTurns, err := strconv.Atoi(getEnv("SESSION_MAX_TURNS", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_TURNS: %w", err)
	}
	if maxTurns <= 0 {
		return nil, fmt.Errorf("invalid SESSION_MAX_TURNS: must be positive, got %d", maxTurns)
	}
	cfg.SessionMaxTurns = maxTurns

	cfg.CORSAllowedOrigins = defaultAllowedOrigins
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		cfg.CORSAllowedOrigins = splitList(raw)
	}

	return cfg, nil
}

// LLMEnabled reports whether an OpenRouter key is configured.
func (c *Config) LLMEnabled() bool {
	return c.OpenRouterAPIKey != ""
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
