package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Geocoding GeocodingConfig `yaml:"geocoding"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Port         string   `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Type         string `yaml:"type"` // postgres, mysql or sqlite
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// GeocodingConfig contains settings for the external geocoding service
type GeocodingConfig struct {
	Enabled            bool   `yaml:"enabled"`
	BaseURL            string `yaml:"base_url"`
	UserAgent          string `yaml:"user_agent"`
	RequestDelayMillis int    `yaml:"request_delay_millis"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
	MaxRequestsPerDay  int    `yaml:"max_requests_per_day"`
	BatchLimit         int    `yaml:"batch_limit"`
	ScheduleEnabled    bool   `yaml:"schedule_enabled"`
	Schedule           string `yaml:"schedule"` // cron spec
	BreakerThreshold   int    `yaml:"breaker_threshold"`
	BreakerResetMins   int    `yaml:"breaker_reset_minutes"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// CacheConfig contains Redis cache settings
type CacheConfig struct {
	RedisAddr  string `yaml:"redis_addr"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// CleanupConfig controls pruning of old delete log entries.
// RetentionDays <= 0 keeps entries forever.
type CleanupConfig struct {
	RetentionDays    int    `yaml:"retention_days"`
	MaxDeletionCount int    `yaml:"max_deletion_count"`
	ScheduleEnabled  bool   `yaml:"schedule_enabled"`
	Schedule         string `yaml:"schedule"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	LogRequests bool   `yaml:"log_requests"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "3000",
			AllowOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Type:         "postgres",
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Geocoding: GeocodingConfig{
			Enabled:            true,
			BaseURL:            "https://nominatim.openstreetmap.org",
			UserAgent:          "property-backoffice/1.0",
			RequestDelayMillis: 1100,
			TimeoutSeconds:     10,
			MaxRequestsPerDay:  2000,
			BatchLimit:         100,
			ScheduleEnabled:    false,
			Schedule:           "0 3 * * *",
			BreakerThreshold:   5,
			BreakerResetMins:   30,
		},
		Cache: CacheConfig{
			TTLSeconds: 300,
		},
		Cleanup: CleanupConfig{
			RetentionDays:    365,
			MaxDeletionCount: 10000,
			ScheduleEnabled:  false,
			Schedule:         "30 4 * * 0",
		},
		Logging: LoggingConfig{
			Level:       "warn",
			LogRequests: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides file values with environment variables when they are set.
// DATABASE_URL and PORT are the two values deployments are expected to provide.
func (c *Config) ApplyEnv() {
	c.Database.URL = getEnvOrConfig("DATABASE_URL", c.Database.URL)
	c.Database.Type = getEnvOrConfig("DB_TYPE", c.Database.Type)
	c.Server.Port = getEnvOrConfig("PORT", c.Server.Port)
	c.Cache.RedisAddr = getEnvOrConfig("REDIS_ADDR", c.Cache.RedisAddr)
	c.Search.Meilisearch.Host = getEnvOrConfig("MEILISEARCH_HOST", c.Search.Meilisearch.Host)
	c.Search.Meilisearch.APIKey = getEnvOrConfig("MEILISEARCH_KEY", c.Search.Meilisearch.APIKey)
	if v := os.Getenv("GEOCODING_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Geocoding.Enabled = enabled
		}
	}
}

// Validate checks the values the server cannot start without
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database type %q", c.Database.Type)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database url is required (set DATABASE_URL)")
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	return nil
}

// GetRequestDelay returns the delay between geocoding requests
func (c *GeocodingConfig) GetRequestDelay() time.Duration {
	return time.Duration(c.RequestDelayMillis) * time.Millisecond
}

// GetTimeout returns the per-request timeout as a duration
func (c *GeocodingConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetBreakerReset returns how long an open circuit breaker stays open
func (c *GeocodingConfig) GetBreakerReset() time.Duration {
	return time.Duration(c.BreakerResetMins) * time.Minute
}

// GetTTL returns the cache TTL as a duration
func (c *CacheConfig) GetTTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// getEnvOrConfig returns the environment value if set, otherwise the config value
func getEnvOrConfig(envKey, configValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return configValue
}
