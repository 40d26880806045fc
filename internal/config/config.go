// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all campaignmgr client configuration.
type Config struct {
	Service Service `yaml:"service"`
	Log     Log     `yaml:"log"`
}

// Service holds the generation service endpoint and call limits.
type Service struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`       // Campaign generation call
	ProbeTimeout time.Duration `yaml:"probe_timeout"` // Status check call
}

// Log holds logging settings.
type Log struct {
	Level string `yaml:"level"` // debug | info | warn | error
	File  string `yaml:"file"`  // Dashboard log destination; empty discards
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Service: Service{
			BaseURL:      "http://localhost:9000",
			Timeout:      2 * time.Minute,
			ProbeTimeout: 10 * time.Second,
		},
		Log: Log{
			Level: "info",
		},
	}
}

// DefaultPaths returns the user and project config paths, lowest priority first.
func DefaultPaths() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "campaignmgr", "config.yaml"))
	}
	return append(paths, filepath.Join(".campaignmgr", "config.yaml"))
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: service.base_url must be an absolute http(s) URL, got %q", c.Service.BaseURL)
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("config: service.timeout must be positive, got %v", c.Service.Timeout)
	}
	if c.Service.ProbeTimeout <= 0 {
		return fmt.Errorf("config: service.probe_timeout must be positive, got %v", c.Service.ProbeTimeout)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return lvl, nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CAMPAIGNMGR_API_URL, CAMPAIGNMGR_TIMEOUT,
// CAMPAIGNMGR_PROBE_TIMEOUT, CAMPAIGNMGR_LOG_LEVEL, CAMPAIGNMGR_LOG_FILE.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CAMPAIGNMGR_API_URL"); v != "" {
		c.Service.BaseURL = v
	}
	if v := os.Getenv("CAMPAIGNMGR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid CAMPAIGNMGR_TIMEOUT %q: %w", v, err)
		}
		c.Service.Timeout = d
	}
	if v := os.Getenv("CAMPAIGNMGR_PROBE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid CAMPAIGNMGR_PROBE_TIMEOUT %q: %w", v, err)
		}
		c.Service.ProbeTimeout = d
	}
	if v := os.Getenv("CAMPAIGNMGR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CAMPAIGNMGR_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Service *rawService `yaml:"service"`
	Log     *rawLog     `yaml:"log"`
}

type rawService struct {
	BaseURL      *string        `yaml:"base_url"`
	Timeout      *time.Duration `yaml:"timeout"`
	ProbeTimeout *time.Duration `yaml:"probe_timeout"`
}

type rawLog struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if s := layer.Service; s != nil {
		if s.BaseURL != nil {
			c.Service.BaseURL = *s.BaseURL
		}
		if s.Timeout != nil {
			c.Service.Timeout = *s.Timeout
		}
		if s.ProbeTimeout != nil {
			c.Service.ProbeTimeout = *s.ProbeTimeout
		}
	}
	if l := layer.Log; l != nil {
		if l.Level != nil {
			c.Log.Level = *l.Level
		}
		if l.File != nil {
			c.Log.File = *l.File
		}
	}
}
