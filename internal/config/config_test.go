package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(APIURLEnv, "")
	t.Setenv("FARSHA_REDIS_ADDR", "127.0.0.1:6379")

	path := writeConfig(t, `
app:
  name: farsha-web
backend:
  base_url: "https://api.farsha.ir/api/"
  timeout_seconds: 5
session:
  storage: redis
redis:
  address: "${FARSHA_REDIS_ADDR}"
http:
  guard_timeout_ms: 1500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.farsha.ir/api", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Address)
	assert.Equal(t, StorageRedis, cfg.Session.Storage)
	assert.Equal(t, 1500*time.Millisecond, cfg.HTTP.GuardWait())
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, "farsha_vid", cfg.HTTP.CookieName)
	assert.Equal(t, 14, cfg.Booking.DaysAhead)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv(APIURLEnv, "http://backend:9000/api")
	path := writeConfig(t, "app:\n  name: x\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://backend:9000/api", cfg.Backend.BaseURL)
	assert.Equal(t, StorageMemory, cfg.Session.Storage)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	base := func() Config {
		c := Config{}
		c.applyDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "bad scheme", mutate: func(c *Config) { c.Backend.BaseURL = "ftp://x" }, wantErr: true},
		{name: "no host", mutate: func(c *Config) { c.Backend.BaseURL = "http://" }, wantErr: true},
		{name: "redis without address", mutate: func(c *Config) { c.Session.Storage = StorageRedis }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Session.Storage = StorageSQLite }, wantErr: true},
		{
			name: "sqlite with path",
			mutate: func(c *Config) {
				c.Session.Storage = StorageSQLite
				c.Session.SQLitePath = "sessions.db"
			},
		},
		{name: "unknown storage", mutate: func(c *Config) { c.Session.Storage = "etcd" }, wantErr: true},
		{name: "negative guard timeout", mutate: func(c *Config) { c.HTTP.GuardTimeout = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(APIURLEnv, "")
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
