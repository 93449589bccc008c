package worker

import (
	"context"
)

// Worker - long-running consumer managed by WorkerManager
type Worker interface {
	// Start blocks until the worker is stopped or ctx is done
	Start(ctx context.Context) error

	Stop() error

	Name() string
}
