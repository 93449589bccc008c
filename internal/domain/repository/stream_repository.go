package repository

import (
	"context"

	"github.com/daroutes-wiki/internal/domain"
)

// StreamRepository - Redis Streams access for content-change notifications
type StreamRepository interface {
	// ConsumeStream reads messages for consumer until ctx is done
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	// AckMessage acknowledges a processed message
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// CreateConsumerGroup creates the group, an existing group is not an error
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream publishes data as JSON in the "data" field
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}

// ChangeNotifier - announces committed content changes. Callers treat a
// failure as best effort: the write it describes is already durable.
type ChangeNotifier interface {
	NotifyChange(ctx context.Context, event domain.ContentChangedEvent) error
}
