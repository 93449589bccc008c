package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/repository/cache"
	"github.com/daroutes-wiki/internal/usecase"
)

func TestStatsUseCase(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	a := env.createStop(t, "kimara", "Kimara", -6.79, 39.17)
	b := env.createStop(t, "posta", "Posta", -6.82, 39.29)
	env.publish(t, domain.EntityStop, a)
	id := env.save(t, nil, draftWith("kimara-posta", a, b))
	_, err := env.workflow.Transition(ctx, editor, domain.EntityRoute, id, usecase.TransitionInput{To: domain.StatusInReview})
	require.NoError(t, err)

	cacheRepo := cache.NewMemoryCache(time.Minute, zap.NewNop())
	stats := usecase.NewStatsUseCase(env.store, cacheRepo, time.Minute, zap.NewNop())

	t.Run("public counters are cached", func(t *testing.T) {
		got, err := stats.GetStatistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Routes.Total)
		assert.Equal(t, 0, got.Routes.Published())
		assert.Equal(t, 2, got.Stops.Total)
		assert.Equal(t, 1, got.Stops.Published())

		stored, err := cacheRepo.GetStats(ctx)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, got.Stops.Total, stored.Stops.Total)
	})

	t.Run("dashboard counters", func(t *testing.T) {
		env.createTerminal(t, "ubungo-terminal", "Ubungo Terminal")

		got, err := stats.DashboardCounters(ctx, editor)
		require.NoError(t, err)
		assert.Equal(t, 1, got.RoutesTotal)
		assert.Equal(t, 1, got.RoutesInReview)
		assert.Equal(t, 0, got.RoutesPublished)
		assert.Equal(t, 2, got.StopsTotal)
		assert.Equal(t, 1, got.TerminalsTotal)
		assert.False(t, got.LastUpdated.IsZero())
	})
}
