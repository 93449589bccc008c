package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// statsKey holds the serialised dashboard counters.
const statsKey = "stats:current"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository returns the Redis backed read model cache.
func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, errors.ErrCacheError.Wrap(err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return errors.ErrCacheError.Wrap(err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.logger.Error("Failed to delete from cache", zap.Strings("keys", keys), zap.Error(err))
		return errors.ErrCacheError.Wrap(err)
	}

	r.logger.Debug("Cache deleted", zap.Strings("keys", keys))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, errors.ErrCacheError.Wrap(err)
	}
	return n > 0, nil
}

func (r *cacheRepository) GetStats(ctx context.Context) (*domain.Statistics, error) {
	return getStats(ctx, r, r.logger)
}

func (r *cacheRepository) SetStats(ctx context.Context, stats *domain.Statistics, ttl time.Duration) error {
	return setStats(ctx, r, stats, ttl, r.logger)
}

// getStats and setStats are shared by both cache drivers.
func getStats(ctx context.Context, c repository.CacheRepository, logger *zap.Logger) (*domain.Statistics, error) {
	data, err := c.Get(ctx, statsKey)
	if err != nil || data == nil {
		return nil, err
	}

	var stats domain.Statistics
	if err := json.Unmarshal(data, &stats); err != nil {
		logger.Error("Failed to unmarshal stats from cache", zap.Error(err))
		return nil, errors.ErrCacheError.Wrap(err)
	}
	return &stats, nil
}

func setStats(ctx context.Context, c repository.CacheRepository, stats *domain.Statistics, ttl time.Duration, logger *zap.Logger) error {
	data, err := json.Marshal(stats)
	if err != nil {
		logger.Error("Failed to marshal stats", zap.Error(err))
		return errors.ErrCacheError.Wrap(err)
	}
	return c.Set(ctx, statsKey, data, ttl)
}
