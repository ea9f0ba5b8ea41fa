package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Logging
	LogLevel string

	// Database
	DatabaseDriver string // "postgres" | "sqlite"
	DatabaseURL    string
	SQLitePath     string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// YouTube Data API
	YouTubeAPIKey string

	// Local write-action rate limiting
	RateLimitActions       int
	RateLimitWindowSeconds int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		Env:            getEnvOrDefault("ENV", "development"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		DatabaseDriver: getEnvOrDefault("DATABASE_DRIVER", "postgres"),
		JWTSecret:      mustGetEnv("JWT_SECRET"),
		YouTubeAPIKey:  mustGetEnv("YOUTUBE_API_KEY"),
		RedisURL:       mustGetEnv("REDIS_URL"),

		RateLimitActions:       getEnvAsIntOrDefault("RATE_LIMIT_ACTIONS", 30),
		RateLimitWindowSeconds: getEnvAsIntOrDefault("RATE_LIMIT_WINDOW_SECONDS", 60),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	switch cfg.DatabaseDriver {
	case "postgres":
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	case "sqlite":
		cfg.SQLitePath = getEnvOrDefault("SQLITE_PATH", "./tubedash.db")
	default:
		panic(fmt.Sprintf("unsupported DATABASE_DRIVER %q (want postgres or sqlite)", cfg.DatabaseDriver))
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
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
