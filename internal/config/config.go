// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL). Empty keeps the waitlist in memory.
	DatabaseURL         string `env:"DATABASE_URL"`
	DatabaseAutoMigrate bool   `env:"DATABASE_AUTO_MIGRATE" envDefault:"true"`

	// Cache (Redis). Empty disables the event stream and the shared rate limiter.
	RedisURL string `env:"REDIS_URL"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting for POST /api/subscribe (per client IP)
	RateLimitSubscribeEnabled   bool `env:"RATE_LIMIT_SUBSCRIBE_ENABLED" envDefault:"false"`
	RateLimitSubscribePerMinute int  `env:"RATE_LIMIT_SUBSCRIBE_PER_MINUTE" envDefault:"10"`
	RateLimitSubscribeBurst     int  `env:"RATE_LIMIT_SUBSCRIBE_BURST" envDefault:"5"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 64KB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`

	// Directory holding the built landing page. Empty disables static serving.
	StaticDir string `env:"STATIC_DIR"`

	// Welcome mail (SMTP). Empty host disables mail.
	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	SMTPFrom      string `env:"SMTP_FROM" envDefault:"Party Games <hello@partygames.app>"`
	SMTPTLSPolicy string `env:"SMTP_TLS_POLICY" envDefault:"mandatory"`

	// Error reporting. Empty disables Sentry.
	SentryDSN string `env:"SENTRY_DSN"`

	// Bearer token required by GET /api/subscribers. Empty leaves the route open.
	AdminToken string `env:"ADMIN_TOKEN"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesPostgres reports whether subscribers are stored in PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// UsesRedis reports whether a Redis instance is configured.
func (c *Config) UsesRedis() bool {
	return c.RedisURL != ""
}

// MailEnabled reports whether welcome mail should be sent.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load reads an optional .env file, then parses environment variables and
// returns a Config. Variables already present in the environment win over
// the .env file.
func Load() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.RateLimitSubscribeEnabled && cfg.RateLimitSubscribePerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_SUBSCRIBE_PER_MINUTE must be positive, got %d", cfg.RateLimitSubscribePerMinute)
	}

	return cfg, nil
}
