// Package config loads the server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendMongo     = "mongo"
)

// Config is the process configuration.
type Config struct {
	Port               string
	StoreBackend       string
	ProjectID          string // GOOGLE_CLOUD_PROJECT, firestore only
	MongoURI           string
	MongoDBName        string
	FetchTimeout       time.Duration
	AllowedOrigins     []string
	CompanyProfilePath string
	DefaultAccount     string // used when a request has no X-Account-ID header
	LogLevel           string
	LogFormat          string
}

var defaultOrigins = []string{"http://localhost:1234", "http://127.0.0.1:1234"}

// Load reads .env from the working directory when present, then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:               envOr("PORT", "8111"),
		StoreBackend:       strings.ToLower(envOr("STORE_BACKEND", BackendMemory)),
		ProjectID:          strings.TrimSpace(os.Getenv("GOOGLE_CLOUD_PROJECT")),
		MongoURI:           strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDBName:        envOr("MONGO_DB_NAME", "bizpulse"),
		FetchTimeout:       10 * time.Second,
		AllowedOrigins:     defaultOrigins,
		CompanyProfilePath: strings.TrimSpace(os.Getenv("COMPANY_PROFILE_PATH")),
		DefaultAccount:     strings.TrimSpace(os.Getenv("DEFAULT_ACCOUNT")),
		LogLevel:           strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		LogFormat:          strings.TrimSpace(os.Getenv("LOG_FORMAT")),
	}

	if timeoutStr := strings.TrimSpace(os.Getenv("FETCH_TIMEOUT_SECONDS")); timeoutStr != "" {
		seconds, err := strconv.Atoi(timeoutStr)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid FETCH_TIMEOUT_SECONDS: %s", timeoutStr)
		}
		cfg.FetchTimeout = time.Duration(seconds) * time.Second
	}

	if origins := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); origins != "" {
		cfg.AllowedOrigins = parseList(origins)
	}

	// Local mode serves the seeded demo account without a header.
	if cfg.StoreBackend == BackendMemory && cfg.DefaultAccount == "" {
		cfg.DefaultAccount = "demo"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	switch c.StoreBackend {
	case BackendMemory:
	case BackendFirestore:
		if c.ProjectID == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the %s backend", BackendFirestore)
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the %s backend", BackendMongo)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %s, %s or %s)", c.StoreBackend, BackendMemory, BackendFirestore, BackendMongo)
	}
	if len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_ORIGINS must name at least one origin")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// parseList splits a comma-separated value, dropping empty parts.
func parseList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
