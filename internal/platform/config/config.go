// Package config builds service configuration from environment variables
// so main stays lean. A .env file in the working directory is loaded
// first when present, matching local development setups.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the token lifecycle. Access tokens are short-lived; refresh
// tokens span a week; reset tokens expire within the hour.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	DefaultResetTokenTTL   = time.Hour
	DefaultBcryptCost      = 10
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	DatabaseURL string
	RedisAddr   string
	RedisDB     int

	KafkaBrokers      string
	NotificationTopic string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	ResetTokenTTL      time.Duration

	BcryptCost      int
	DisableRegister bool
	FrontendURL     string

	CleanupInterval time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := Server{
		Addr:               getEnv("ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		KafkaBrokers:       os.Getenv("KAFKA_BROKERS"),
		NotificationTopic:  getEnv("NOTIFICATION_TOPIC", "auth.notifications"),
		AccessTokenSecret:  os.Getenv("JWT_SECRET"),
		RefreshTokenSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTokenTTL:     getEnvDuration("JWT_EXPIRES_IN", DefaultAccessTokenTTL),
		RefreshTokenTTL:    getEnvDuration("JWT_REFRESH_EXPIRES_IN", DefaultRefreshTokenTTL),
		ResetTokenTTL:      getEnvDuration("RESET_TOKEN_TTL", DefaultResetTokenTTL),
		BcryptCost:         getEnvInt("BCRYPT_COST", DefaultBcryptCost),
		DisableRegister:    os.Getenv("DISABLE_REGISTER") == "true",
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		CleanupInterval:    getEnvDuration("CLEANUP_INTERVAL", time.Hour),
	}

	// Development fallbacks - must be overridden in production.
	if cfg.AccessTokenSecret == "" {
		cfg.AccessTokenSecret = "dev-secret-change-in-production"
	}
	if cfg.RefreshTokenSecret == "" {
		cfg.RefreshTokenSecret = "dev-refresh-secret-change-in-production"
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
