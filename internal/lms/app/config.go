package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	SSOSecret         string // Required: pre-shared secret presented to admissions on verify
	SessionSecret     string // Required: HMAC key for session cookies
	AdmissionsBaseURL string // Base URL of the admissions service (default: http://localhost:4000)

	DatabaseFile        string        // SQLite database file (default: ./lms.db)
	SessionTTL          time.Duration // Session cookie lifetime (default: 12h)
	SecureCookies       bool          // Set the Secure cookie attribute (default: false, local http)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

var (
	// ErrMissingSecret is returned when SSO_SECRET is unset. There is no safe
	// production default for a shared secret.
	ErrMissingSecret = errors.New("SSO_SECRET must be set")

	// ErrMissingSessionSecret is returned when SESSION_SECRET is unset.
	ErrMissingSessionSecret = errors.New("SESSION_SECRET must be set")
)

func LoadConfig() (Config, error) {
	cfg := Config{
		SSOSecret:           os.Getenv("SSO_SECRET"),
		SessionSecret:       os.Getenv("SESSION_SECRET"),
		AdmissionsBaseURL:   getEnvOrDefault("ADMISSIONS_BASE_URL", "http://localhost:4000"),
		DatabaseFile:        getEnvOrDefault("LMS_DATABASE_FILE", "lms.db"),
		SessionTTL:          getEnvDurationOrDefault("LMS_SESSION_TTL", 12*time.Hour),
		SecureCookies:       getEnvBoolOrDefault("LMS_SECURE_COOKIES", false),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.SSOSecret == "" {
		return Config{}, ErrMissingSecret
	}
	if cfg.SessionSecret == "" {
		return Config{}, ErrMissingSessionSecret
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
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
