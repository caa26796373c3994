package config

import (
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"
)

type YamlRedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
}

type YamlAPNSConfig struct {
	KeyID            string `yaml:"key_id"`
	TeamID           string `yaml:"team_id"`
	Topic            string `yaml:"topic"`
	Host             string `yaml:"host"`
	P8KeyPath        string `yaml:"p8_key_path"`
	RefreshThreshold string `yaml:"refresh_threshold"`
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ListenAddr    string          `yaml:"listen_addr"`
	DatabaseURL   string          `yaml:"database_url"`
	QueueCapacity int             `yaml:"queue_capacity"`
	UserCacheTTL  string          `yaml:"user_cache_ttl"`
	RedisConfig   YamlRedisConfig `yaml:"redis"`
	APNSConfig    YamlAPNSConfig  `yaml:"apns"`
}

// ParseYamlConfig unmarshals the raw config file contents.
func ParseYamlConfig(data []byte) (*YamlConfig, error) {
	var cfg YamlConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	return &cfg, nil
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	cfg := &Config{
		ListenAddr:    baseCfg.ListenAddr,
		DatabaseURL:   baseCfg.DatabaseURL,
		QueueCapacity: baseCfg.QueueCapacity,
		Redis: RedisConfig{
			Addr:     baseCfg.RedisConfig.Addr,
			Password: baseCfg.RedisConfig.Password,
			DB:       baseCfg.RedisConfig.DB,
			Enabled:  baseCfg.RedisConfig.Enabled,
		},
		APNS: APNSConfig{
			KeyID:     baseCfg.APNSConfig.KeyID,
			TeamID:    baseCfg.APNSConfig.TeamID,
			Topic:     baseCfg.APNSConfig.Topic,
			Host:      baseCfg.APNSConfig.Host,
			P8KeyPath: baseCfg.APNSConfig.P8KeyPath,
		},
	}

	if baseCfg.UserCacheTTL != "" {
		ttl, err := time.ParseDuration(baseCfg.UserCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid user_cache_ttl: %w", err)
		}
		cfg.UserCacheTTL = ttl
	}
	if baseCfg.APNSConfig.RefreshThreshold != "" {
		threshold, err := time.ParseDuration(baseCfg.APNSConfig.RefreshThreshold)
		if err != nil {
			return nil, fmt.Errorf("invalid apns refresh_threshold: %w", err)
		}
		cfg.APNS.RefreshThreshold = threshold
	}

	logger.Debug("YAML config mapping complete",
		"listen_addr", cfg.ListenAddr,
		"queue_capacity", cfg.QueueCapacity,
	)

	return cfg, nil
}
