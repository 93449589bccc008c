package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/daroutes-wiki/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheClientName = "daroutes-wiki-cache"

// Redis is the connection behind the public read-model cache.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedis(cfg *config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: cacheClientName,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis cache at %s: %w", client.Options().Addr, err)
	}

	logger = logger.With(zap.String("redis_client", cacheClientName))
	logger.Info("Redis cache connected",
		zap.String("addr", client.Options().Addr),
		zap.Int("db", cfg.DB),
	)

	return &Redis{client: client, logger: logger}, nil
}

// NewRedisForTest wraps an existing client.
func NewRedisForTest(client *redis.Client, logger *zap.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

// Close reports how well the pool served route and stop lookups before
// closing it.
func (r *Redis) Close() error {
	stats := r.client.PoolStats()
	r.logger.Info("Closing Redis cache connection",
		zap.Uint32("pool_hits", stats.Hits),
		zap.Uint32("pool_misses", stats.Misses),
		zap.Uint32("pool_timeouts", stats.Timeouts),
	)
	return r.client.Close()
}

func (r *Redis) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis cache: %w", err)
	}
	return nil
}

func (r *Redis) Client() *redis.Client {
	return r.client
}
