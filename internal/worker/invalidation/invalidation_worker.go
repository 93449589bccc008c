package invalidation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	"github.com/daroutes-wiki/internal/worker"
	"go.uber.org/zap"
)

const defaultRetryDelay = 200 * time.Millisecond

// ChangeHandler applies one content change; usecase.InvalidationUseCase in production.
type ChangeHandler interface {
	HandleChange(ctx context.Context, event domain.ContentChangedEvent) error
}

// CacheInvalidationWorker consumes content-change events and drops the
// cached public views they make stale.
type CacheInvalidationWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	handler      ChangeHandler
	stream       string
	consumerName string
	maxRetries   int
	retryDelay   time.Duration
}

func NewCacheInvalidationWorker(
	streamRepo repository.StreamRepository,
	handler ChangeHandler,
	consumerGroup string,
	maxRetries int,
	logger *zap.Logger,
) *CacheInvalidationWorker {
	hostname, _ := os.Hostname()
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &CacheInvalidationWorker{
		BaseWorker:   worker.NewBaseWorker("cache-invalidation", consumerGroup, logger),
		streamRepo:   streamRepo,
		handler:      handler,
		stream:       domain.StreamContentChanged,
		consumerName: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		maxRetries:   maxRetries,
		retryDelay:   defaultRetryDelay,
	}
}

// SetRetryDelay changes the pause between attempts.
func (w *CacheInvalidationWorker) SetRetryDelay(d time.Duration) {
	w.retryDelay = d
}

// Start reads the stream until Stop, ctx cancellation or the stream
// closing.
func (w *CacheInvalidationWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting cache invalidation worker",
		zap.String("stream", w.stream),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, w.stream, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(ctx, w.stream, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				logger.Info("Stream closed")
				return nil
			}
			w.process(ctx, msg)
		}
	}
}

// process applies one message and acks it. Malformed messages are acked
// and dropped. A change that still fails after maxRetries attempts is also
// acked: the cache TTL bounds how long the stale view can live.
func (w *CacheInvalidationWorker) process(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger().With(zap.String("message_id", msg.ID))

	var event domain.ContentChangedEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		logger.Warn("Failed to parse message, skipping", zap.Error(err))
		w.MarkDropped()
		w.ack(ctx, msg.ID)
		return
	}

	var err error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		if err = w.handler.HandleChange(ctx, event); err == nil {
			break
		}
		logger.Warn("Invalidation attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", w.maxRetries),
			zap.Error(err))
		if attempt < w.maxRetries && !w.sleep(ctx) {
			return
		}
	}
	if err != nil {
		logger.Error("Giving up on content change",
			zap.String("entity_type", string(event.EntityType)),
			zap.String("slug", event.Slug),
			zap.Error(err))
		w.MarkDropped()
	} else {
		w.MarkHandled()
	}
	w.ack(ctx, msg.ID)
}

func (w *CacheInvalidationWorker) ack(ctx context.Context, id string) {
	if err := w.streamRepo.AckMessage(ctx, w.stream, w.ConsumerGroup(), id); err != nil {
		// unacked messages stay pending for this group
		w.Logger().Warn("Failed to ack message", zap.String("message_id", id), zap.Error(err))
	}
}

// sleep waits retryDelay and reports false when ctx ended or the worker was stopped first.
func (w *CacheInvalidationWorker) sleep(ctx context.Context) bool {
	t := time.NewTimer(w.retryDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-w.StopChan():
		return false
	}
}
