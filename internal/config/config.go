package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is used when JWT_SECRET_KEY is not set. Never rely on it outside development.
const DefaultJWTSecret = "THIS_IS_A_JWT_SECRET_KEY"

type Backend string

const (
	BackendMongo    Backend = "mongodb"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

type Config struct {
	// Server
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURI  string
	DatabaseName string

	// JWT
	JWTSecret          string
	JWTExpirationHours int
}

// Load reads configuration from the environment, after loading .env if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "5000"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURI:        getEnv("DB_URI", ""),
		DatabaseName:       getEnv("DB_NAME", "chatApp"),
		JWTSecret:          getEnv("JWT_SECRET_KEY", DefaultJWTSecret),
		JWTExpirationHours: getEnvInt("JWT_EXPIRATION_HOURS", 24*30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURI == "" {
		return fmt.Errorf("DB_URI environment variable is required")
	}
	if _, err := c.Backend(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY must not be empty")
	}
	if c.JWTExpirationHours <= 0 {
		return fmt.Errorf("JWT_EXPIRATION_HOURS must be positive, got %d", c.JWTExpirationHours)
	}
	return nil
}

// Backend derives the storage backend from the DB_URI scheme.
func (c *Config) Backend() (Backend, error) {
	uri := strings.ToLower(c.DatabaseURI)
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return BackendMongo, nil
	case strings.HasPrefix(uri, "postgres://"), strings.HasPrefix(uri, "postgresql://"):
		return BackendPostgres, nil
	case strings.HasPrefix(uri, "sqlite:"):
		return BackendSQLite, nil
	}
	return "", fmt.Errorf("unsupported DB_URI scheme: %q", schemeOf(c.DatabaseURI))
}

// SQLitePath strips the sqlite scheme: "sqlite://chat.db" -> "chat.db", "sqlite::memory:" -> ":memory:".
func (c *Config) SQLitePath() string {
	path := strings.TrimPrefix(c.DatabaseURI, "sqlite://")
	return strings.TrimPrefix(path, "sqlite:")
}

func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func schemeOf(uri string) string {
	if i := strings.Index(uri, ":"); i >= 0 {
		return uri[:i]
	}
	return uri
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
