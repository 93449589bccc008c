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

func TestInvalidationUseCase_HandleChange(t *testing.T) {
	ctx := context.Background()
	draft, published := domain.StatusDraft, domain.StatusPublished

	seed := func(t *testing.T) (*usecase.InvalidationUseCase, func(key string) bool) {
		c := cache.NewMemoryCache(time.Minute, zap.NewNop())
		for _, key := range []string{
			usecase.RouteListKey,
			usecase.RouteDetailKey("kimara-posta"),
			usecase.RouteDetailKey("mbezi-posta"),
			usecase.StopDetailKey("kimara"),
			usecase.StopListKey,
			usecase.StatsKey,
		} {
			require.NoError(t, c.Set(ctx, key, []byte(`{}`), time.Minute))
		}
		exists := func(key string) bool {
			ok, err := c.Exists(ctx, key)
			require.NoError(t, err)
			return ok
		}
		return usecase.NewInvalidationUseCase(c, nil, zap.NewNop()), exists
	}

	t.Run("published route save", func(t *testing.T) {
		uc, exists := seed(t)
		require.NoError(t, uc.HandleChange(ctx, domain.ContentChangedEvent{
			Kind:       domain.ChangeSaved,
			EntityType: domain.EntityRoute,
			Slug:       "kimara-posta",
			Related:    []string{"kimara"},
			ToStatus:   &published,
		}))
		assert.False(t, exists(usecase.RouteDetailKey("kimara-posta")))
		assert.False(t, exists(usecase.RouteListKey))
		assert.False(t, exists(usecase.StopDetailKey("kimara")))
		assert.False(t, exists(usecase.StatsKey))
		assert.True(t, exists(usecase.RouteDetailKey("mbezi-posta")))
		assert.True(t, exists(usecase.StopListKey))
	})

	t.Run("draft save only refreshes stats", func(t *testing.T) {
		uc, exists := seed(t)
		require.NoError(t, uc.HandleChange(ctx, domain.ContentChangedEvent{
			Kind:       domain.ChangeSaved,
			EntityType: domain.EntityRoute,
			Slug:       "kimara-posta",
			ToStatus:   &draft,
		}))
		assert.False(t, exists(usecase.StatsKey))
		assert.True(t, exists(usecase.RouteDetailKey("kimara-posta")))
		assert.True(t, exists(usecase.RouteListKey))
	})

	t.Run("stop unpublished", func(t *testing.T) {
		uc, exists := seed(t)
		require.NoError(t, uc.NotifyChange(ctx, domain.ContentChangedEvent{
			Kind:       domain.ChangeTransition,
			EntityType: domain.EntityStop,
			Slug:       "kimara",
			Related:    []string{"kimara-posta"},
			FromStatus: &published,
			ToStatus:   &draft,
		}))
		assert.False(t, exists(usecase.StopDetailKey("kimara")))
		assert.False(t, exists(usecase.StopListKey))
		assert.False(t, exists(usecase.RouteDetailKey("kimara-posta")))
		assert.True(t, exists(usecase.RouteDetailKey("mbezi-posta")))
	})
}
