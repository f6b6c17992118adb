// Package server provides configuration helpers that define runtime
// defaults and env-driven overrides for the Bloggle service.
package server

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration, including the security settings
// for the websocket handshake.
type Config struct {
	Port           string
	AllowedOrigins []string
	MaxMessageSize int64

	JWTSecret   []byte
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	// DatabaseURL selects the Postgres user store when set; empty means
	// the in-memory store.
	DatabaseURL string
}

func defaultConfig() Config {
	return Config{
		Port: ":8080",
		AllowedOrigins: []string{
			"http://localhost:8080",
		},
		MaxMessageSize: 4096,
		JWTSecret:      []byte("dev-secret-do-not-deploy"),
		JWTIssuer:      "bloggle",
		JWTAudience:    "bloggle-clients",
		TokenTTL:       30 * 24 * time.Hour,
	}
}

// NewConfig creates a Config populated with default values for all settings.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}

// NewConfigFromEnv creates a Config from environment variables, loading a
// .env file first when one is present. Unset variables keep their defaults.
func NewConfigFromEnv() *Config {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if port := os.Getenv("SERVER_PORT"); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Port = port
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = parseOrigins(origins)
	}

	if maxSize := os.Getenv("MAX_MESSAGE_SIZE"); maxSize != "" {
		cfg.MaxMessageSize = parseMaxMessageSize(maxSize, cfg.MaxMessageSize)
	}

	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = []byte(secret)
	}

	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		cfg.JWTIssuer = issuer
	}

	if audience := os.Getenv("JWT_AUDIENCE"); audience != "" {
		cfg.JWTAudience = audience
	}

	if ttl := os.Getenv("TOKEN_TTL_HOURS"); ttl != "" {
		cfg.TokenTTL = parseTTLHours(ttl, cfg.TokenTTL)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	return &cfg
}

func parseOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseMaxMessageSize(value string, defaultValue int64) int64 {
	if size, err := strconv.ParseInt(value, 10, 64); err == nil && size > 0 {
		return size
	}
	return defaultValue
}

func parseTTLHours(value string, defaultValue time.Duration) time.Duration {
	if hours, err := strconv.Atoi(value); err == nil && hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return defaultValue
}
