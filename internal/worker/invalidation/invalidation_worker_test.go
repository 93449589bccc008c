package invalidation_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/worker"
	"github.com/daroutes-wiki/internal/worker/invalidation"
)

// MockStreamRepository - mock of repository.StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockChangeHandler - mock of invalidation.ChangeHandler
type MockChangeHandler struct {
	mock.Mock
}

func (m *MockChangeHandler) HandleChange(ctx context.Context, event domain.ContentChangedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

const group = "cache-invalidators"

func message(t *testing.T, id string, event domain.ContentChangedEvent) domain.StreamMessage {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

// run feeds msgs through a worker and returns it once the stream is drained.
func run(t *testing.T, streams *MockStreamRepository, handler *MockChangeHandler, maxRetries int, msgs ...domain.StreamMessage) *invalidation.CacheInvalidationWorker {
	t.Helper()
	ch := make(chan domain.StreamMessage, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	close(ch)

	streams.On("CreateConsumerGroup", mock.Anything, domain.StreamContentChanged, group).Return(nil).Once()
	streams.On("ConsumeStream", mock.Anything, domain.StreamContentChanged, group, mock.Anything).
		Return((<-chan domain.StreamMessage)(ch), nil).Once()

	w := invalidation.NewCacheInvalidationWorker(streams, handler, group, maxRetries, zap.NewNop())
	w.SetRetryDelay(time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, w.Start(ctx))
	return w
}

func TestWorker_HandlesAndAcks(t *testing.T) {
	streams := new(MockStreamRepository)
	handler := new(MockChangeHandler)
	published := domain.StatusPublished
	event := domain.ContentChangedEvent{
		Kind:       domain.ChangeSaved,
		EntityType: domain.EntityRoute,
		Slug:       "kimara-posta",
		ToStatus:   &published,
		OccurredAt: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	handler.On("HandleChange", mock.Anything, mock.MatchedBy(func(e domain.ContentChangedEvent) bool {
		return e.Slug == "kimara-posta" && e.EntityType == domain.EntityRoute
	})).Return(nil).Once()
	streams.On("AckMessage", mock.Anything, domain.StreamContentChanged, group, "1-0").Return(nil).Once()

	w := run(t, streams, handler, 3, message(t, "1-0", event))

	streams.AssertExpectations(t)
	handler.AssertExpectations(t)
	handled, dropped := w.Counts()
	assert.Equal(t, int64(1), handled)
	assert.Zero(t, dropped)
}

func TestWorker_MalformedMessageIsAckedAndSkipped(t *testing.T) {
	streams := new(MockStreamRepository)
	handler := new(MockChangeHandler)
	streams.On("AckMessage", mock.Anything, domain.StreamContentChanged, group, "2-0").Return(nil).Once()

	w := run(t, streams, handler, 3, domain.StreamMessage{ID: "2-0", Data: "{not json"})
	_, dropped := w.Counts()
	assert.Equal(t, int64(1), dropped)

	streams.AssertExpectations(t)
	handler.AssertNotCalled(t, "HandleChange", mock.Anything, mock.Anything)
}

func TestWorker_RetriesThenAcks(t *testing.T) {
	streams := new(MockStreamRepository)
	handler := new(MockChangeHandler)
	event := domain.ContentChangedEvent{Kind: domain.ChangeDeleted, EntityType: domain.EntityRoute, Slug: "gone"}

	handler.On("HandleChange", mock.Anything, mock.Anything).Return(errors.New("redis down")).Twice()
	handler.On("HandleChange", mock.Anything, mock.Anything).Return(nil).Once()
	streams.On("AckMessage", mock.Anything, domain.StreamContentChanged, group, "3-0").Return(nil).Once()

	run(t, streams, handler, 3, message(t, "3-0", event))

	handler.AssertNumberOfCalls(t, "HandleChange", 3)
	streams.AssertExpectations(t)
}

func TestWorker_GivesUpAfterMaxRetries(t *testing.T) {
	streams := new(MockStreamRepository)
	handler := new(MockChangeHandler)
	event := domain.ContentChangedEvent{Kind: domain.ChangeDeleted, EntityType: domain.EntityStop, Slug: "posta"}

	handler.On("HandleChange", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	streams.On("AckMessage", mock.Anything, domain.StreamContentChanged, group, "4-0").Return(nil).Once()

	w := run(t, streams, handler, 2, message(t, "4-0", event))

	handler.AssertNumberOfCalls(t, "HandleChange", 2)
	handled, dropped := w.Counts()
	assert.Zero(t, handled)
	assert.Equal(t, int64(1), dropped)
	streams.AssertExpectations(t)
}

func TestWorker_ConsumerGroupFailure(t *testing.T) {
	streams := new(MockStreamRepository)
	streams.On("CreateConsumerGroup", mock.Anything, domain.StreamContentChanged, group).Return(errors.New("NOAUTH")).Once()

	w := invalidation.NewCacheInvalidationWorker(streams, new(MockChangeHandler), group, 1, zap.NewNop())
	err := w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consumer group")
}

func TestManager_StopsWorkers(t *testing.T) {
	streams := new(MockStreamRepository)
	ch := make(chan domain.StreamMessage)
	streams.On("CreateConsumerGroup", mock.Anything, domain.StreamContentChanged, group).Return(nil).Once()
	streams.On("ConsumeStream", mock.Anything, domain.StreamContentChanged, group, mock.Anything).
		Return((<-chan domain.StreamMessage)(ch), nil).Once()

	w := invalidation.NewCacheInvalidationWorker(streams, new(MockChangeHandler), group, 1, zap.NewNop())
	assert.Equal(t, "cache-invalidation", w.Name())

	m := worker.NewWorkerManager(zap.NewNop())
	m.Register(w)
	require.NoError(t, m.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Stop(ctx))
	assert.True(t, w.IsStopped())

	select {
	case <-m.Done():
	default:
		t.Fatal("manager should be done after Stop returned")
	}
}
