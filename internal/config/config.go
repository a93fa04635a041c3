// Package config provides centralized configuration management for
// the import service. Settings load from environment variables with
// sensible defaults and are validated on startup to fail fast on
// misconfiguration.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request body
	// (default: 30s; uploads go through this path)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response
	// (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown
	// (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests
	// (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL settings. The URL is optional: when
// unset, the service runs on the in-memory store and ledger.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (optional)
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of pooled connections (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of pooled connections (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// ImportConfig holds import pipeline settings.
type ImportConfig struct {
	// MaxFileSize is the upload cap in bytes (default: 20MB)
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	// SessionTTL is how long an uncommitted dry run stays committable
	// (default: 1h)
	SessionTTL time.Duration `env:"IMPORT_SESSION_TTL" default:"1h"`

	// PreviewRows caps the rows returned in a dry-run response
	// (default: 100); the full report stays cached for commit.
	PreviewRows int `env:"IMPORT_PREVIEW_ROWS" default:"100"`

	// CrossRefPolicy decides how a cross-reference to a nonexistent
	// record is reported: off, warn, or error (default: warn)
	CrossRefPolicy string `env:"IMPORT_CROSSREF_POLICY" default:"warn"`
}

// RateLimitConfig holds per-IP request throttling settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	// (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// Validate checks that the configuration is consistent. All failures
// are reported together.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if c.Database.URL != "" {
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
	}

	if c.Import.MaxFileSize <= 0 {
		errs = append(errs, "IMPORT_MAX_FILE_SIZE must be positive")
	}
	if c.Import.SessionTTL <= 0 {
		errs = append(errs, "IMPORT_SESSION_TTL must be positive")
	}
	if c.Import.PreviewRows <= 0 {
		errs = append(errs, "IMPORT_PREVIEW_ROWS must be positive")
	}
	switch c.Import.CrossRefPolicy {
	case "off", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("IMPORT_CROSSREF_POLICY (%q) must be one of: off, warn, error", c.Import.CrossRefPolicy))
	}

	if c.Rate.Enabled && c.Rate.RequestsPerMinute <= 0 {
		errs = append(errs, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a safe representation for logging; the database URL
// is masked.
func (c *Config) String() string {
	db := "none (in-memory)"
	if c.Database.URL != "" {
		db = "[MASKED]"
	}
	return fmt.Sprintf(
		"Config{Server: {Host: %q, Port: %d}, Database: {URL: %s, MaxConns: %d}, Import: {MaxFileSize: %d, SessionTTL: %s, CrossRefPolicy: %q}, Rate: {Enabled: %v, RequestsPerMinute: %d}, Logging: {Level: %q, Format: %q}}",
		c.Server.Host, c.Server.Port,
		db, c.Database.MaxConns,
		c.Import.MaxFileSize, c.Import.SessionTTL, c.Import.CrossRefPolicy,
		c.Rate.Enabled, c.Rate.RequestsPerMinute,
		c.Logging.Level, c.Logging.Format,
	)
}
