package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 1100*time.Millisecond, cfg.Geocoding.GetRequestDelay())
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := `
server:
  port: "8080"
database:
  type: sqlite
  url: "file:test.db"
geocoding:
  request_delay_millis: 250
cache:
  ttl_seconds: 60
`
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, 250*time.Millisecond, cfg.Geocoding.GetRequestDelay())
	assert.Equal(t, time.Minute, cfg.Cache.GetTTL())
	// untouched sections keep defaults
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoding.BaseURL)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")
	t.Setenv("PORT", "9999")
	t.Setenv("GEOCODING_ENABLED", "false")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "postgres://u:p@localhost/db", cfg.Database.URL)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.False(t, cfg.Geocoding.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "missing url")

	cfg.Database.URL = "x"
	cfg.Database.Type = "oracle"
	assert.Error(t, cfg.Validate())
}

func TestLoadConfig_SampleFileMatchesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join("..", "..", "config", "backoffice.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 30*time.Minute, cfg.Geocoding.GetBreakerReset())
}
