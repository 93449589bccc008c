package worker

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// BaseWorker carries what every content-change consumer shares: its name,
// consumer group, a logger scoped to both, the stop signal and message
// tallies reported when it stops.
type BaseWorker struct {
	name          string
	consumerGroup string
	logger        *zap.Logger

	mu       sync.Mutex
	stopChan chan struct{}
	stopped  bool

	handled atomic.Int64
	dropped atomic.Int64
}

func NewBaseWorker(name, consumerGroup string, logger *zap.Logger) *BaseWorker {
	return &BaseWorker{
		name:          name,
		consumerGroup: consumerGroup,
		logger:        logger.With(zap.String("worker", name), zap.String("consumer_group", consumerGroup)),
		stopChan:      make(chan struct{}),
	}
}

func (w *BaseWorker) Name() string {
	return w.name
}

// Stop signals the worker loop to return. Safe to call more than once.
func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopChan)

	handled, dropped := w.Counts()
	w.logger.Info("Stopping worker",
		zap.Int64("changes_handled", handled),
		zap.Int64("changes_dropped", dropped),
	)
	return nil
}

func (w *BaseWorker) IsStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// StopChan is closed by Stop.
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stopChan
}

func (w *BaseWorker) ConsumerGroup() string {
	return w.consumerGroup
}

// Logger already carries the worker and consumer group fields.
func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}

// MarkHandled counts a change that was applied.
func (w *BaseWorker) MarkHandled() {
	w.handled.Add(1)
}

// MarkDropped counts a change that was acked without being applied.
func (w *BaseWorker) MarkDropped() {
	w.dropped.Add(1)
}

// Counts returns the handled and dropped tallies.
func (w *BaseWorker) Counts() (handled, dropped int64) {
	return w.handled.Load(), w.dropped.Load()
}
