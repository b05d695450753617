package redis

import (
	"context"
	"fmt"

	"album-service/internal/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis returns nil, nil when no address is configured.
func InitRedis(ctx context.Context, cfg *config.RedisConfig, log *zap.Logger) (*redis.Client, error) {
	if cfg.Address == "" {
		log.Warn("Redis address is empty, OAuth state checking is disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error connecting to Redis: %w", err)
	}

	log.Info("Successfully connected to Redis", zap.String("address", cfg.Address))
	return client, nil
}
