package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/usecase/dto"
	"go.uber.org/zap"
)

// StatsUseCase serves content counters, cached for the public endpoint.
type StatsUseCase struct {
	store     repository.Store
	cacheRepo repository.CacheRepository
	ttl       time.Duration
	logger    *zap.Logger
}

func NewStatsUseCase(
	store repository.Store,
	cacheRepo repository.CacheRepository,
	ttl time.Duration,
	logger *zap.Logger,
) *StatsUseCase {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatsUseCase{
		store:     store,
		cacheRepo: cacheRepo,
		ttl:       ttl,
		logger:    logger,
	}
}

// GetStatistics returns the public counters, from the cache when possible.
func (uc *StatsUseCase) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	cached, err := uc.cacheRepo.GetStats(ctx)
	if err == nil && cached != nil {
		uc.logger.Debug("Statistics fetched from cache")
		return cached, nil
	}
	if err != nil {
		uc.logger.Warn("Failed to get stats from cache", zap.Error(err))
	}

	return uc.RefreshStatistics(ctx)
}

// RefreshStatistics recounts and replaces the cached counters.
func (uc *StatsUseCase) RefreshStatistics(ctx context.Context) (*domain.Statistics, error) {
	stats, err := uc.count(ctx, domain.Anonymous())
	if err != nil {
		return nil, fmt.Errorf("refresh statistics: %w", err)
	}

	if err := uc.cacheRepo.SetStats(ctx, stats, uc.ttl); err != nil {
		uc.logger.Warn("Failed to cache stats", zap.Error(err))
	}
	return stats, nil
}

// DashboardCounters counts what the editor can see, every status included.
// Never cached: editors expect their last save to show.
func (uc *StatsUseCase) DashboardCounters(ctx context.Context, actor domain.Actor) (*dto.DashboardCounters, error) {
	stats, err := uc.count(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("dashboard counters: %w", err)
	}
	return &dto.DashboardCounters{
		RoutesTotal:     stats.Routes.Total,
		RoutesPublished: stats.Routes.Published(),
		RoutesInReview:  stats.Routes.ByStatus[domain.StatusInReview],
		StopsTotal:      stats.Stops.Total,
		TerminalsTotal:  stats.Terminals.Total,
		LastUpdated:     stats.LastUpdated,
	}, nil
}

func (uc *StatsUseCase) count(ctx context.Context, actor domain.Actor) (*domain.Statistics, error) {
	var stats *domain.Statistics
	err := uc.store.View(ctx, actor, func(tx repository.Tx) error {
		var err error
		stats, err = tx.Stats().GetStatistics(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
