package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/repository/memory"
	"github.com/daroutes-wiki/internal/usecase"
)

var (
	editor    = domain.Actor{UserID: "5f0c1a52-7d43-4a5e-9a0d-2b7c3f8e1a01", Role: domain.RoleEditor}
	viewer    = domain.Actor{UserID: "5f0c1a52-7d43-4a5e-9a0d-2b7c3f8e1a02", Role: domain.RoleViewer}
	anonymous = domain.Anonymous()
)

func floatPtr(f float64) *float64 { return &f }

// recordingNotifier keeps every published change.
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.ContentChangedEvent
	err    error
}

func (n *recordingNotifier) NotifyChange(ctx context.Context, e domain.ContentChangedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) last(t *testing.T) domain.ContentChangedEvent {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.events, "no change was published")
	return n.events[len(n.events)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

// MockGeocoder - mock of repository.GeocodingRepository
type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, p domain.Point) (*domain.Place, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Place), args.Error(1)
}

type testEnv struct {
	store    *memory.Store
	notifier *recordingNotifier
	composer *usecase.RouteComposer
	workflow *usecase.WorkflowUseCase
	editor   *usecase.EditorUseCase
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	store := memory.New(logger)
	var clockMu sync.Mutex
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		now = now.Add(time.Second)
		return now
	})
	notifier := &recordingNotifier{}
	return &testEnv{
		store:    store,
		notifier: notifier,
		composer: usecase.NewRouteComposer(store, nil, notifier, nil, logger),
		workflow: usecase.NewWorkflowUseCase(store, notifier, nil, logger),
		editor:   usecase.NewEditorUseCase(store, nil, notifier, logger),
	}
}

// createStop stores a draft stop with coordinates through the editor.
func (e *testEnv) createStop(t *testing.T, slug, name string, lat, lng float64) string {
	t.Helper()
	id, err := e.editor.CreateStop(context.Background(), editor, slug, domain.StopAttrs{
		Name: name,
		Lat:  floatPtr(lat),
		Lng:  floatPtr(lng),
	})
	require.NoError(t, err)
	return id
}

func (e *testEnv) createTerminal(t *testing.T, slug, name string) string {
	t.Helper()
	id, err := e.editor.CreateTerminal(context.Background(), editor, slug, domain.TerminalAttrs{
		StopAttrs: domain.StopAttrs{Name: name, Lat: floatPtr(-6.82), Lng: floatPtr(39.27)},
	})
	require.NoError(t, err)
	return id
}

// publish walks an entity through review into published.
func (e *testEnv) publish(t *testing.T, entityType domain.EntityType, id string) {
	t.Helper()
	ctx := context.Background()
	_, err := e.workflow.Transition(ctx, editor, entityType, id, usecase.TransitionInput{To: domain.StatusInReview})
	require.NoError(t, err)
	_, err = e.workflow.Transition(ctx, editor, entityType, id, usecase.TransitionInput{To: domain.StatusPublished})
	require.NoError(t, err)
}

// draftWith builds a valid draft over persisted stop ids.
func draftWith(slug string, stopIDs ...string) domain.RouteDraft {
	d := domain.RouteDraft{
		Slug:        slug,
		DisplayName: "Kimara - Posta",
		Color:       "1f77b4",
		Corridors:   []string{"Morogoro Road"},
	}
	for _, id := range stopIDs {
		d.Stops = append(d.Stops, domain.PersistedStopRef("", id))
	}
	return d
}

func (e *testEnv) save(t *testing.T, existingID *string, d domain.RouteDraft) string {
	t.Helper()
	id, err := e.composer.SaveRoute(context.Background(), editor, existingID, d)
	require.NoError(t, err)
	return id
}

func (e *testEnv) read(t *testing.T, fn func(tx repository.Tx) error) {
	t.Helper()
	require.NoError(t, e.store.View(context.Background(), editor, fn))
}
