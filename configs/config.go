package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Accounts AccountsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"8080"`
	Env            string   `env:"GO_ENV" envDefault:"development"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL"`
}

// RedisConfig holds Redis configuration. An empty URL selects the in-process broker.
type RedisConfig struct {
	URL string `env:"REDIS_URL"`
}

// AuthConfig holds signing secrets and token policy
type AuthConfig struct {
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev-session-secret"`
	JWTSecret     string        `env:"JWT_SECRET" envDefault:"dev-jwt-secret"`
	TokenMaxAge   time.Duration `env:"TOKEN_MAX_AGE" envDefault:"720h"`
}

// AccountsConfig holds terminal account settings
type AccountsConfig struct {
	IdleAfter       time.Duration `env:"ACCOUNT_IDLE_AFTER" envDefault:"24h"`
	SweepSchedule   string        `env:"ACCOUNT_SWEEP_SCHEDULE" envDefault:"*/5 * * * *"`
	DefaultTerminal string        `env:"DEFAULT_TERMINAL" envDefault:"MetaTrader"`
}

const (
	devSessionSecret = "dev-session-secret"
	devJWTSecret     = "dev-jwt-secret"
)

// IsProduction reports whether GO_ENV selects production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Env, "production")
}

// Load reads an optional .env file and parses the environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the current environment without reading .env.
func Parse() (*Config, error) {
	return ParseEnvironment(nil)
}

// ParseEnvironment builds a Config from environ instead of the process
// environment. A nil map falls back to the process environment.
func ParseEnvironment(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects development secrets in production.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	var errs []error
	if c.Auth.SessionSecret == "" || c.Auth.SessionSecret == devSessionSecret {
		errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
	}
	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == devJWTSecret {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL must be set in production"))
	}
	return errors.Join(errs...)
}
