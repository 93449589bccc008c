package cache

import (
	"context"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// memoryCache keeps read models in process. Used with CACHE_DRIVER=memory
// and by the memory store in development.
type memoryCache struct {
	c      *gocache.Cache
	logger *zap.Logger
}

// NewMemoryCache creates an in-process cache. Entries without a ttl live
// for defaultTTL.
func NewMemoryCache(defaultTTL time.Duration, logger *zap.Logger) repository.CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &memoryCache{
		c:      gocache.New(defaultTTL, 2*defaultTTL),
		logger: logger,
	}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, nil
	}
	data, _ := v.([]byte)
	return data, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	// copy so callers may reuse their buffer
	buf := make([]byte, len(value))
	copy(buf, value)
	m.c.Set(key, buf, ttl)
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}

func (m *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.c.Get(key)
	return ok, nil
}

func (m *memoryCache) GetStats(ctx context.Context) (*domain.Statistics, error) {
	return getStats(ctx, m, m.logger)
}

func (m *memoryCache) SetStats(ctx context.Context, stats *domain.Statistics, ttl time.Duration) error {
	return setStats(ctx, m, stats, ttl, m.logger)
}
