package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/review-with-friends/reviewwithfriends-backend/internal/platform/apns"
	"github.com/review-with-friends/reviewwithfriends-backend/internal/storage/cache"
	"github.com/review-with-friends/reviewwithfriends-backend/internal/storage/postgres"
	"github.com/review-with-friends/reviewwithfriends-backend/pkg/push"
	"github.com/review-with-friends/reviewwithfriends-backend/pushservice"
	"github.com/review-with-friends/reviewwithfriends-backend/pushservice/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := loadConfig(*configPath, logger)
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		logger.Error("failed to apply schema", "err", err)
		os.Exit(1)
	}

	var directory push.UserDirectory = postgres.NewUserDirectory(pool)
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error("failed to connect to redis", "err", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		directory = cache.NewCachedUserDirectory(directory, redisClient, cfg.UserCacheTTL)
		logger.Info("user directory cache enabled", "ttl", cfg.UserCacheTTL)
	}

	store := postgres.NewNotificationStore(pool)

	// A signing key that cannot mint is a startup failure, never a runtime one.
	tokenSource, err := apns.NewTokenSource(apns.TokenConfig{
		KeyID:            cfg.APNS.KeyID,
		TeamID:           cfg.APNS.TeamID,
		P8KeyContent:     cfg.APNS.P8KeyContent,
		RefreshThreshold: cfg.APNS.RefreshThreshold,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize APNs credentials", "err", err)
		os.Exit(1)
	}

	gateway := apns.NewClient(apns.Config{
		Host:  cfg.APNS.Host,
		Topic: cfg.APNS.Topic,
	}, tokenSource, logger)

	service := pushservice.New(cfg, directory, store, gateway, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := service.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	if err := service.Start(ctx); err != nil {
		logger.Error("service failed", "err", err)
		os.Exit(1)
	}
}

func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	yamlCfg, err := config.ParseYamlConfig(raw)
	if err != nil {
		return nil, err
	}

	cfg, err := config.NewConfigFromYaml(yamlCfg, logger)
	if err != nil {
		return nil, err
	}

	cfg, err = config.UpdateConfigWithEnvOverrides(cfg, logger)
	if err != nil {
		return nil, err
	}

	// The key file is read here so the rest of the process only ever sees
	// the key content.
	if cfg.APNS.P8KeyContent == "" {
		keyBytes, err := os.ReadFile(cfg.APNS.P8KeyPath)
		if err != nil {
			return nil, err
		}
		cfg.APNS.P8KeyContent = string(keyBytes)
	}

	return cfg, nil
}
