package config

import (
	"fmt"
	"os"
	"time"
)

// Config is the environment configuration for the server. Load it after
// godotenv has populated the process environment.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string

	// CheckInSecret signs the HS256 check-in tokens; CheckInTokenTTL is
	// how long a minted token stays scannable.
	CheckInSecret   string
	CheckInTokenTTL time.Duration

	Auth0Domain    string
	Auth0Audience  string
	Auth0Namespace string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            getenv("PORT", "3000"),
		MongoURI:        os.Getenv("MONGODB_URI"),
		MongoDatabase:   getenv("MONGODB_DATABASE", "ams"),
		CheckInSecret:   os.Getenv("JWT_SECRET"),
		CheckInTokenTTL: 50 * time.Minute,
		Auth0Domain:     os.Getenv("AUTH0_DOMAIN"),
		Auth0Audience:   os.Getenv("AUTH0_AUDIENCE"),
		Auth0Namespace:  os.Getenv("AUTH0_NAMESPACE"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.CheckInSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Auth0Domain == "" {
		return nil, fmt.Errorf("AUTH0_DOMAIN is required")
	}

	if ttl := os.Getenv("CHECKIN_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid CHECKIN_TOKEN_TTL: %w", err)
		}
		cfg.CheckInTokenTTL = d
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
