package redis

import (
	"context"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
)

type streamNotifier struct {
	streams repository.StreamRepository
	stream  string
}

// NewStreamNotifier publishes content changes to stream for the cache
// invalidation worker.
func NewStreamNotifier(streams repository.StreamRepository, stream string) repository.ChangeNotifier {
	if stream == "" {
		stream = domain.StreamContentChanged
	}
	return &streamNotifier{streams: streams, stream: stream}
}

func (n *streamNotifier) NotifyChange(ctx context.Context, event domain.ContentChangedEvent) error {
	return n.streams.PublishToStream(ctx, n.stream, event)
}
