// Package config defines the service configuration: a YAML file mapped to a
// clean struct, then environment overrides, then validation.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// APNSConfig holds the credentials and addressing for the push gateway.
type APNSConfig struct {
	KeyID  string
	TeamID string
	Topic  string
	Host   string
	// P8KeyPath points at the .p8 signing key; P8KeyContent overrides it
	// when set (useful for secret mounts that inject the key directly).
	P8KeyPath    string
	P8KeyContent string
	// RefreshThreshold is how long a minted provider token is reused.
	RefreshThreshold time.Duration
}

// Config defines the single, authoritative configuration.
type Config struct {
	ListenAddr    string
	DatabaseURL   string
	QueueCapacity int
	UserCacheTTL  time.Duration

	Redis RedisConfig
	APNS  APNSConfig
}

// UpdateConfigWithEnvOverrides applies environment variables and final
// validation.
func UpdateConfigWithEnvOverrides(cfg *Config, logger *slog.Logger) (*Config, error) {
	logger.Debug("Applying environment variable overrides...")

	if val := os.Getenv("PORT"); val != "" {
		logger.Debug("Overriding config value", "key", "PORT", "source", "env")
		cfg.ListenAddr = ":" + val
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		logger.Debug("Overriding config value", "key", "DATABASE_URL", "source", "env")
		cfg.DatabaseURL = val
	}
	if val := os.Getenv("QUEUE_CAPACITY"); val != "" {
		if capacity, err := strconv.Atoi(val); err == nil && capacity > 0 {
			logger.Debug("Overriding config value", "key", "QUEUE_CAPACITY", "source", "env")
			cfg.QueueCapacity = capacity
		}
	}

	// Redis overrides
	if val := os.Getenv("REDIS_ADDR"); val != "" {
		cfg.Redis.Addr = val
		cfg.Redis.Enabled = true
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("REDIS_DB"); val != "" {
		if db, err := strconv.Atoi(val); err == nil {
			cfg.Redis.DB = db
		}
	}
	if val := os.Getenv("REDIS_ENABLED"); val != "" {
		enabled, _ := strconv.ParseBool(val)
		cfg.Redis.Enabled = enabled
	}

	// APNs overrides
	if val := os.Getenv("APNS_KEY_ID"); val != "" {
		cfg.APNS.KeyID = val
	}
	if val := os.Getenv("APNS_TEAM_ID"); val != "" {
		cfg.APNS.TeamID = val
	}
	if val := os.Getenv("APNS_TOPIC"); val != "" {
		cfg.APNS.Topic = val
	}
	if val := os.Getenv("APNS_HOST"); val != "" {
		cfg.APNS.Host = val
	}
	if val := os.Getenv("APNS_P8_KEY_PATH"); val != "" {
		cfg.APNS.P8KeyPath = val
	}
	if val := os.Getenv("APNS_P8_KEY"); val != "" {
		cfg.APNS.P8KeyContent = val
	}

	// Final validation and defaults
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url is required (set via YAML or DATABASE_URL env var)")
	}
	if cfg.APNS.KeyID == "" || cfg.APNS.TeamID == "" || cfg.APNS.Topic == "" {
		return nil, fmt.Errorf("apns key_id, team_id and topic are required")
	}
	if cfg.APNS.P8KeyPath == "" && cfg.APNS.P8KeyContent == "" {
		return nil, fmt.Errorf("an APNs signing key is required (p8_key_path or APNS_P8_KEY)")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 1024
	}
	if cfg.UserCacheTTL <= 0 {
		cfg.UserCacheTTL = 5 * time.Minute
	}
	if cfg.APNS.RefreshThreshold <= 0 {
		cfg.APNS.RefreshThreshold = 45 * time.Minute
	}

	logger.Debug("Configuration finalized and validated successfully")
	return cfg, nil
}
