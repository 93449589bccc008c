package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/pkg/errors"
	"github.com/daroutes-wiki/internal/usecase"
)

func TestCreateStop_GeneratesSlugAndRecordsCreation(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()

	id, err := env.editor.CreateStop(ctx, editor, "", domain.StopAttrs{
		Name: "Mwenge Stendi",
		Lat:  floatPtr(-6.768),
		Lng:  floatPtr(39.23),
	})
	require.NoError(t, err)

	view, err := env.editor.GetStop(ctx, editor, id)
	require.NoError(t, err)
	assert.Regexp(t, `^mwenge-stendi-[0-9a-f]+$`, view.Stop.Slug)
	assert.Equal(t, domain.StatusDraft, view.Stop.Status)
	assert.Equal(t, []domain.Status{domain.StatusInReview}, view.NextStatuses)
	assert.Empty(t, view.Routes)

	history, err := env.workflow.History(ctx, editor, domain.EntityStop, id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)

	change := env.notifier.last(t)
	assert.Equal(t, domain.EntityStop, change.EntityType)
	assert.False(t, change.AffectsPublicViews())
}

func TestCreateStop_DuplicateSlug(t *testing.T) {
	env := newEnv(t)
	env.createStop(t, "posta", "Posta", -6.82, 39.29)

	_, err := env.editor.CreateStop(context.Background(), editor, "posta", domain.StopAttrs{Name: "Posta"})
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestUpdateStop_RoutedStopKeepsCoordinates(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	a := env.createStop(t, "kimara", "Kimara", -6.79, 39.17)
	b := env.createStop(t, "posta", "Posta", -6.82, 39.29)
	loose := env.createStop(t, "fire", "Fire", -6.81, 39.27)
	env.save(t, nil, draftWith("kimara-posta", a, b))

	err := env.editor.UpdateStop(ctx, editor, a, domain.StopAttrs{Name: "Kimara Mwisho"})
	assert.True(t, errors.Is(err, errors.ErrValidationFailed))

	require.NoError(t, env.editor.UpdateStop(ctx, editor, loose, domain.StopAttrs{Name: "Fire Station"}))

	ward := "Kimara"
	require.NoError(t, env.editor.UpdateStop(ctx, editor, a, domain.StopAttrs{
		Name: "Kimara Mwisho",
		Lat:  floatPtr(-6.79),
		Lng:  floatPtr(39.17),
		Ward: &ward,
	}))
	change := env.notifier.last(t)
	assert.Equal(t, []string{"kimara-posta"}, change.Related)

	view, err := env.editor.GetStop(ctx, editor, a)
	require.NoError(t, err)
	assert.Equal(t, "Kimara Mwisho", view.Stop.Name)
	assert.Equal(t, "kimara", view.Stop.Slug, "renaming keeps the slug")
	require.Len(t, view.Routes, 1)
}

func TestUpdateTerminal_PublishedKeepsCoordinates(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	id := env.createTerminal(t, "ubungo-terminal", "Ubungo Terminal")
	env.publish(t, domain.EntityTerminal, id)

	err := env.editor.UpdateTerminal(ctx, editor, id, domain.TerminalAttrs{StopAttrs: domain.StopAttrs{Name: "Ubungo"}})
	assert.True(t, errors.Is(err, errors.ErrValidationFailed))

	require.NoError(t, env.editor.UpdateTerminal(ctx, editor, id, domain.TerminalAttrs{
		StopAttrs: domain.StopAttrs{Name: "Ubungo Bus Terminal", Lat: floatPtr(-6.79), Lng: floatPtr(39.21)},
		Amenities: []string{"toilets", "ticket office"},
	}))

	view, err := env.editor.GetTerminal(ctx, editor, id)
	require.NoError(t, err)
	assert.Equal(t, "Ubungo Bus Terminal", view.Terminal.Name)
	assert.Equal(t, []string{"toilets", "ticket office"}, view.Terminal.Amenities)
	assert.Equal(t, domain.StatusPublished, view.Terminal.Status)
}

func TestSearchStops(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.createStop(t, "mbezi-mwisho", "Mbezi Mwisho", -6.72, 39.10)
	env.createStop(t, "kimara-mwisho", "Kimara Mwisho", -6.79, 39.17)
	env.createStop(t, "posta", "Posta", -6.82, 39.29)

	found, err := env.editor.SearchStops(ctx, editor, "mwisho", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Kimara Mwisho", found[0].Name)
	assert.Equal(t, "Mbezi Mwisho", found[1].Name)

	limited, err := env.editor.SearchStops(ctx, editor, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGetRouteEditorView(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	a := env.createStop(t, "kimara", "Kimara", -6.79, 39.17)
	b := env.createStop(t, "posta", "Posta", -6.82, 39.29)
	operatorID := "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	env.store.SeedOperators(domain.Operator{ID: operatorID, Name: "UDA-RT"})

	draft := draftWith("kimara-posta", a, b)
	draft.OperatorIDs = []string{operatorID}
	id := env.save(t, nil, draft)

	view, err := env.editor.GetRouteEditorView(ctx, editor, id)
	require.NoError(t, err)
	assert.Equal(t, "kimara-posta", view.Route.Slug)
	require.Len(t, view.Stops, 2)
	assert.Equal(t, "Kimara", view.Stops[0].Stop.Name)
	require.Len(t, view.Operators, 1)
	assert.Equal(t, "UDA-RT", view.Operators[0].Name)
	assert.NotNil(t, view.Fares)
	assert.NotNil(t, view.Attachments)
	assert.Equal(t, []domain.Status{domain.StatusInReview}, view.NextStatuses)

	mine, err := env.editor.ListRoutes(ctx, editor, repository.ContentFilter{CreatedBy: editor.UserID})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = env.editor.GetRouteEditorView(ctx, editor, "3c2b1a09-8f7e-4d6c-9b5a-4c3d2e1f0a9b")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestCreateStop_FillsWardFromGeocoder(t *testing.T) {
	env := newEnv(t)
	geocoder := new(MockGeocoder)
	geocoder.On("ReverseGeocode", mock.Anything, domain.Point{Lat: -6.768, Lng: 39.23}).
		Return(&domain.Place{Ward: "Mikocheni"}, nil).Once()

	logger := zap.NewNop()
	editorUC := usecase.NewEditorUseCase(env.store, usecase.NewWardResolver(geocoder, time.Second, logger), nil, logger)

	id, err := editorUC.CreateStop(context.Background(), editor, "mwenge", domain.StopAttrs{
		Name: "Mwenge",
		Lat:  floatPtr(-6.768),
		Lng:  floatPtr(39.23),
	})
	require.NoError(t, err)

	view, err := editorUC.GetStop(context.Background(), editor, id)
	require.NoError(t, err)
	assert.Equal(t, "Mikocheni", domain.Deref(view.Stop.Ward))
	geocoder.AssertExpectations(t)
}
