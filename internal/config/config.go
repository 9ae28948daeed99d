// Package config loads the server configuration. Defaults are defined
// in code, an optional YAML file overlays them, and LICENSEGATE_*
// environment variables win over both.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Database  DatabaseConfig  `yaml:"database" envconfig:"DATABASE"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Admin     AdminConfig     `yaml:"admin" envconfig:"ADMIN"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// DatabaseConfig contains the Postgres connection settings.
type DatabaseConfig struct {
	URL      string `yaml:"url" envconfig:"URL"`
	MaxConns int    `yaml:"max_conns" envconfig:"MAX_CONNS"`
}

// RateLimitConfig controls the per-IP limiter on the validation
// endpoint.
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64       `yaml:"rps" envconfig:"RPS"`
	Burst   int           `yaml:"burst" envconfig:"BURST"`
	TTL     time.Duration `yaml:"ttl" envconfig:"TTL"`
}

// AdminConfig guards the admin surface. TokenHash is a bcrypt hash of
// the bearer token; Token is the plaintext fallback for local setups.
type AdminConfig struct {
	TokenHash string `yaml:"token_hash" envconfig:"TOKEN_HASH"`
	Token     string `yaml:"token" envconfig:"TOKEN"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns: 25,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			RPS:     10,
			Burst:   20,
			TTL:     10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/licensegate.log",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// when it exists, then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := envconfig.Process("LICENSEGATE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database max_conns must be positive, got %d", c.Database.MaxConns)
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.RPS <= 0 {
			return fmt.Errorf("rate limit rps must be positive, got %v", c.RateLimit.RPS)
		}
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("rate limit burst must be positive, got %d", c.RateLimit.Burst)
		}
	}
	return nil
}
