package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer           string // Required: expected issuer claim on bearer tokens
	JWTPublicKeyFile string // Optional: PEM Ed25519 public key; empty means an ephemeral dev keypair

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./anchor.db)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
	OutboxInterval      time.Duration // Notification outbox delivery interval (default: 30s)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:              os.Getenv("ANCHOR_ISSUER"),
		JWTPublicKeyFile:    os.Getenv("ANCHOR_JWT_PUBLIC_KEY_FILE"),
		DatabaseFile:        getEnvOrDefault("ANCHOR_DATABASE_FILE", "anchor.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		OutboxInterval:      getEnvDurationOrDefault("OUTBOX_INTERVAL", 30*time.Second),
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "anchor"
	}

	return cfg
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
