// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	Port           string
	DBPath         string
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string
}

// Load reads configuration from the environment. A missing .env file is not
// an error; a missing JWT_SECRET is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBPath:    getEnv("DB_PATH", "./data/divvy.db"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  24 * time.Hour,
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, err
		}
		cfg.TokenTTL = d
	}
	if origin := os.Getenv("ALLOWED_ORIGIN"); origin != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
