package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests.
// If variables are not set, sensible test defaults are used so tests can run against a temporary database.
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{}

	// Database path: empty means the test picks a temporary file itself
	cfg.Database.Path = os.Getenv("TEST_DB_PATH")

	// JWT configuration
	jwtSecret := os.Getenv("TEST_JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "test-secret-key-for-integration-tests"
	}
	cfg.JWT.Secret = jwtSecret

	// Access token expiry (default: 30 minutes)
	accessExpiryStr := os.Getenv("TEST_JWT_ACCESS_TOKEN_EXPIRY")
	if accessExpiryStr == "" {
		accessExpiryStr = "30m"
	}
	accessExpiry, err := time.ParseDuration(accessExpiryStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_JWT_ACCESS_TOKEN_EXPIRY: %w", err)
	}
	cfg.JWT.AccessTokenExpiry = accessExpiry

	cfg.Logging.Level = "debug"
	cfg.CORS.AllowedOrigins = []string{"*"}

	return cfg, nil
}
