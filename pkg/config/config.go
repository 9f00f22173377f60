package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yourorg/phonebook/internal/featureflags"
	"github.com/yourorg/phonebook/pkg/database"
)

// Config holds the application configuration
type Config struct {
	Environment        string
	ServerPort         int
	LogLevel           string
	JWTSecret          string
	TokenTTL           time.Duration
	CORSAllowedOrigins []string
	RateLimitPerMinute int

	// AuthenticatedRead restricts Organization/Worker reads to
	// authenticated identities; by default reads are open.
	AuthenticatedRead bool

	Database *database.Config
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	tokenTTLMinutes, err := strconv.Atoi(getEnv("TOKEN_TTL_MINUTES", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL_MINUTES: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	dbConfig := database.DefaultConfig()
	dbConfig.Host = getEnv("DB_HOST", dbConfig.Host)
	dbConfig.Port = dbPort
	dbConfig.User = getEnv("DB_USER", dbConfig.User)
	dbConfig.Password = getEnv("DB_PASSWORD", dbConfig.Password)
	dbConfig.Database = getEnv("DB_NAME", dbConfig.Database)
	dbConfig.SSLMode = getEnv("DB_SSLMODE", dbConfig.SSLMode)

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    time.Duration(tokenTTLMinutes) * time.Minute,
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
		RateLimitPerMinute: rateLimit,
		AuthenticatedRead:  featureflags.Enabled(featureflags.AuthenticatedRead),
		Database:           dbConfig,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
