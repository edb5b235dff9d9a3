// Package config loads server settings from defaults, an optional YAML file
// and environment variables, in that order of precedence (last wins).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stevemurr/simple-item-server/schema"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	Backend        string   `yaml:"store_backend"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	SeedFile       string   `yaml:"seed_file"`
	LogLevel       string   `yaml:"log_level"`

	// StrictUpdate makes PUT on an absent id answer 404 instead of inserting.
	StrictUpdate bool `yaml:"strict_update"`

	// Schema replaces the built-in resource payload schema when set.
	Schema map[string]any `yaml:"schema"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           8080,
		Backend:        "memory",
		AllowedOrigins: []string{"*"},
		LogLevel:       "info",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (c *Config) applyEnv() error {
	c.Host = env("HOST", c.Host)
	c.Backend = env("STORE_BACKEND", c.Backend)
	c.SeedFile = env("SEED_FILE", c.SeedFile)
	c.LogLevel = env("LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = p
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = strings.Split(v, ",")
	}
	if v := os.Getenv("STRICT_UPDATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid STRICT_UPDATE %q: %w", v, err)
		}
		c.StrictUpdate = b
	}
	return nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	switch c.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown store backend: %q (supported: memory, sqlite)", c.Backend)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Level maps LogLevel onto a slog level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// ResourceSchema returns the configured payload schema, or the built-in one.
func (c *Config) ResourceSchema() map[string]any {
	if c.Schema != nil {
		return c.Schema
	}
	return schema.Resource
}
