// internal/config/config.go

// Package config loads service settings from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all runtime settings for the service.
type Config struct {
	// --- Application ---
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// --- Database ---
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"convince"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"require"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// --- Identity provider ---
	AuthBaseURL    string `envconfig:"AUTH_BASE_URL" required:"true"`
	AuthServiceKey string `envconfig:"AUTH_SERVICE_ROLE_KEY" required:"true"`

	// --- Frontend ---
	FrontendProdURL string `envconfig:"FRONTEND_PROD_URL"`

	// --- Game ---
	PayoutCacheTTL time.Duration `envconfig:"PAYOUT_CACHE_TTL" default:"1s"`
}

// Load reads environment variables into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS: %d/%d", c.DBMinConns, c.DBMaxConns)
	}
	if c.PayoutCacheTTL <= 0 {
		return fmt.Errorf("PAYOUT_CACHE_TTL must be positive, got %s", c.PayoutCacheTTL)
	}
	if c.IsProduction() && c.FrontendProdURL == "" {
		return fmt.Errorf("FRONTEND_PROD_URL is required in production")
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// CORSOrigins returns the browser origins allowed to call the API.
// Production only allows the deployed frontend.
func (c *Config) CORSOrigins() []string {
	if c.IsProduction() {
		return []string{c.FrontendProdURL}
	}
	return []string{
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	}
}
