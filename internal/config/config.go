package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// NLP analysis service
	NLPServiceURL string
	NLPTimeout    time.Duration

	// Redis (session memory, flow state, transcripts, response cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTLS      bool

	// Realtime session layer
	SessionQueueDepth      int
	ConnectionIdleTimeout  time.Duration
	ConnectionSweepEvery   time.Duration
	TypingStaleAfter       time.Duration
	TypingSweepEvery       time.Duration
	NotificationSweepEvery time.Duration
	AgentAssignDelay       time.Duration

	// Response generation
	ResponseCacheTTL time.Duration

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		NLPServiceURL: getEnv("NLP_SERVICE_URL", "http://localhost:9090"),
		NLPTimeout:    getDuration("NLP_TIMEOUT", 10*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		RedisTLS:      getBool("REDIS_TLS", false),

		SessionQueueDepth:      getInt("SESSION_QUEUE_DEPTH", 16),
		ConnectionIdleTimeout:  getDuration("CONNECTION_IDLE_TIMEOUT", 30*time.Minute),
		ConnectionSweepEvery:   getDuration("CONNECTION_SWEEP_EVERY", 5*time.Minute),
		TypingStaleAfter:       getDuration("TYPING_STALE_AFTER", 5*time.Second),
		TypingSweepEvery:       getDuration("TYPING_SWEEP_EVERY", 30*time.Second),
		NotificationSweepEvery: getDuration("NOTIFICATION_SWEEP_EVERY", time.Minute),
		AgentAssignDelay:       getDuration("AGENT_ASSIGN_DELAY", 3*time.Second),

		ResponseCacheTTL: getDuration("RESPONSE_CACHE_TTL", 5*time.Minute),

		CORSAllowedOrigins: getList("CORS_ALLOWED_ORIGINS"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
