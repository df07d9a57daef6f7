package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	Port string

	// DatabaseURL is the Postgres connection string.
	DatabaseURL string

	// GeminiAPIKey is the shared model credential used when a user has not
	// configured their own.
	GeminiAPIKey string

	// ClerkWebhookSecret verifies provisioning webhook signatures.
	ClerkWebhookSecret string

	// ClerkJWTPublicKey is the PEM-encoded RSA public key used to verify
	// session tokens issued by the identity provider.
	ClerkJWTPublicKey string

	// GCSBucket stores uploaded receipt images. Empty disables image storage.
	GCSBucket string

	// ParseWorkers is the number of concurrent receipt parse workers for
	// batch uploads. The default of 1 processes batch items sequentially.
	ParseWorkers int

	LogLevel string
}

// New loads configuration from environment variables. Missing required
// values are reported together so a misconfigured deployment fails fast at
// startup with the full list.
func New() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		ClerkWebhookSecret: os.Getenv("CLERK_WEBHOOK_SECRET"),
		ClerkJWTPublicKey:  os.Getenv("CLERK_JWT_PUBLIC_KEY"),
		GCSBucket:          os.Getenv("GCS_BUCKET"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ParseWorkers:       1,
	}

	if v := os.Getenv("PARSE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("PARSE_WORKERS must be a positive integer, got %q", v)
		}
		cfg.ParseWorkers = n
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if cfg.ClerkWebhookSecret == "" {
		missing = append(missing, "CLERK_WEBHOOK_SECRET")
	}
	if cfg.ClerkJWTPublicKey == "" {
		missing = append(missing, "CLERK_JWT_PUBLIC_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
