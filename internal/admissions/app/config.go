package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	SSOSecret    string // Required: pre-shared secret the LMS presents on /sso/verify
	LMSBaseURL   string // Required: base URL the browser is redirected to
	CallbackPath string // LMS callback path carrying the token (default: /sso/login)

	DatabaseFile         string        // SQLite database file (default: ./admissions.db)
	PepperFile           string        // Password pepper file (default: ./pepper)
	TokenTTL             time.Duration // Token validity window (default: 1h)
	HousekeepingInterval time.Duration // Expired-token sweep interval (default: 10m)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 4000)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
}

// ErrMissingSecret is returned when SSO_SECRET is unset. There is no safe
// production default for a shared secret.
var ErrMissingSecret = errors.New("SSO_SECRET must be set")

func LoadConfig() (Config, error) {
	cfg := Config{
		SSOSecret:            os.Getenv("SSO_SECRET"),
		LMSBaseURL:           getEnvOrDefault("LMS_BASE_URL", "http://localhost:8080"),
		CallbackPath:         getEnvOrDefault("LMS_CALLBACK_PATH", "/sso/login"),
		DatabaseFile:         getEnvOrDefault("ADMISSIONS_DATABASE_FILE", "admissions.db"),
		PepperFile:           getEnvOrDefault("ADMISSIONS_PEPPER_FILE", "pepper"),
		TokenTTL:             getEnvDurationOrDefault("ADMISSIONS_TOKEN_TTL", time.Hour),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 10*time.Minute),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 4000),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.SSOSecret == "" {
		return Config{}, ErrMissingSecret
	}

	return cfg, nil
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
	return defaultValue
}
