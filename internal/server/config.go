package server

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the service settings, read from the environment.
type Config struct {
	Port            string        `env:"PORT" envDefault:"9000"`
	AllowedOrigins  []string      `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	Copywriter      string        `env:"COPYWRITER" envDefault:"fallback"`
	TemplatesDir    string        `env:"COPY_TEMPLATES_DIR"`
	RateLimit       float64       `env:"RATE_LIMIT" envDefault:"5"`
	RateBurst       int           `env:"RATE_BURST" envDefault:"10"`
	WorkflowTimeout time.Duration `env:"WORKFLOW_TIMEOUT" envDefault:"90s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig parses Config from environment variables with the given prefix
// (e.g. "CAMPAIGNMGR_SERVE_").
func LoadConfig(prefix string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: prefix}); err != nil {
		return Config{}, fmt.Errorf("server: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server: port is required")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("server: rate limit must not be negative")
	}
	if c.RateLimit > 0 && c.RateBurst == 0 {
		return fmt.Errorf("server: rate burst must be positive when rate limit is set")
	}
	if c.WorkflowTimeout <= 0 {
		return fmt.Errorf("server: workflow timeout must be positive")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel (debug, info, warn, error).
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("server: invalid log level %q", c.LogLevel)
	}
	return l, nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
