package usecase

import (
	"context"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/pkg/metrics"
	"go.uber.org/zap"
)

// InvalidationUseCase drops cached public views made stale by a content
// change.
type InvalidationUseCase struct {
	cache   repository.CacheRepository
	metrics *metrics.Registry
	logger  *zap.Logger
}

func NewInvalidationUseCase(cache repository.CacheRepository, metrics *metrics.Registry, logger *zap.Logger) *InvalidationUseCase {
	return &InvalidationUseCase{cache: cache, metrics: metrics, logger: logger}
}

// HandleChange deletes the keys named by the event. Changes invisible to
// the public only refresh the counters.
func (uc *InvalidationUseCase) HandleChange(ctx context.Context, event domain.ContentChangedEvent) error {
	keys := []string{StatsKey}
	if event.AffectsPublicViews() {
		keys = KeysForChange(event)
	}

	err := uc.cache.Delete(ctx, keys...)
	uc.metrics.ObserveInvalidation(string(event.EntityType), err)
	if err != nil {
		uc.logger.Error("Failed to invalidate cached views",
			zap.String("entity_type", string(event.EntityType)),
			zap.String("slug", event.Slug),
			zap.Strings("keys", keys),
			zap.Error(err),
		)
		return errors.ErrCacheError.Wrap(err)
	}

	uc.logger.Debug("Cached views invalidated",
		zap.String("kind", event.Kind),
		zap.String("entity_type", string(event.EntityType)),
		zap.String("slug", event.Slug),
		zap.Int("keys", len(keys)),
	)
	return nil
}

// NotifyChange invalidates in process, for deployments without the worker.
func (uc *InvalidationUseCase) NotifyChange(ctx context.Context, event domain.ContentChangedEvent) error {
	return uc.HandleChange(ctx, event)
}

var _ repository.ChangeNotifier = (*InvalidationUseCase)(nil)
