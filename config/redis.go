package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/dino-reserve/utils"
)

// NewRedisClient connects to REDIS_URL. It returns nil when caching is
// disabled or the server cannot be reached, and callers run without a cache.
func NewRedisClient(cfg Config) *redis.Client {
	if !cfg.CacheEnabled || cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		utils.ErrorLogger.Warnf("Invalid REDIS_URL, caching disabled: %v", err)
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		utils.ErrorLogger.Warnf("Redis unreachable, caching disabled: %v", err)
		return nil
	}
	utils.InfoLogger.Printf("Response cache enabled (ttl %s)", cfg.CacheTTL)
	return client
}
