package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LICENSEGATE_DATABASE_URL", "postgres://localhost/licensegate")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database url")
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
database:
  url: postgres://filehost/licensegate
rate_limit:
  enabled: true
  rps: 5
  burst: 10
  ttl: 5m
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres://filehost/licensegate", cfg.Database.URL)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\ndatabase:\n  url: postgres://filehost/licensegate\n"), 0644))

	t.Setenv("LICENSEGATE_SERVER_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "postgres://filehost/licensegate", cfg.Database.URL)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"zero max conns", func(c *Config) { c.Database.MaxConns = 0 }},
		{"zero rps with limiter on", func(c *Config) { c.RateLimit.RPS = 0 }},
		{"zero burst with limiter on", func(c *Config) { c.RateLimit.Burst = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Database.URL = "postgres://localhost/licensegate"
			tt.mutate(&cfg)
			assert.Error(t, cfg.validate())
		})
	}
}

func TestValidateIgnoresLimitsWhenDisabled(t *testing.T) {
	cfg := Default()
	cfg.Database.URL = "postgres://localhost/licensegate"
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.RPS = 0
	assert.NoError(t, cfg.validate())
}
