package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Default token lifetime: 24 hours, matching the original deployment.
const defaultTokenExpiry = 1440 * time.Minute

// devSecret is only ever used outside production. Validate rejects an empty
// secret when APP_ENV=production.
const devSecret = "gestao-escolar-dev-secret"

// Config holds all application configuration. It is built once at startup and
// treated as immutable afterwards.
type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "escola"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Expiry: getDurationEnv("JWT_EXPIRY_MINUTES", defaultTokenExpiry),
			Issuer: getEnv("JWT_ISSUER", "gestao-escolar"),
		},
	}
}

// ErrMissingSecret is returned by Validate when production is started without
// a signing secret configured.
var ErrMissingSecret = errors.New("JWT_SECRET must be set when APP_ENV=production")

// IsProduction reports whether the process runs in a production-like
// environment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "staging"
}

// Validate checks the configuration for fatal misconfiguration. Outside
// production a missing signing secret falls back to a development-only
// default; UsedDevSecret reports whether that happened so the caller can log
// a warning.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		if c.IsProduction() {
			return ErrMissingSecret
		}
		c.JWT.Secret = devSecret
	}
	if c.JWT.Expiry <= 0 {
		return errors.New("JWT_EXPIRY_MINUTES must be positive")
	}
	return nil
}

// UsedDevSecret reports whether the insecure development fallback secret is
// in use.
func (c *Config) UsedDevSecret() bool {
	return c.JWT.Secret == devSecret
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" port=" + d.Port +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.DBName +
		" sslmode=" + d.SSLMode
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv reads a duration in minutes from an environment variable
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
