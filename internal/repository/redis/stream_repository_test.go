package redis_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/daroutes-wiki/internal/domain"
	"github.com/daroutes-wiki/internal/domain/repository"
	redisRepo "github.com/daroutes-wiki/internal/repository/redis"
)

const testStream = "test:stream:content:changed"

func getTestRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	client.Del(ctx, testStream)
	t.Cleanup(func() { client.Del(context.Background(), testStream) })
	return client
}

func newRepo(client *redis.Client) repository.StreamRepository {
	return redisRepo.NewStreamRepository(client, 200*time.Millisecond, zap.NewNop())
}

func TestStreamRepository_CreateConsumerGroup(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := newRepo(client)
	ctx := context.Background()

	require.NoError(t, repo.CreateConsumerGroup(ctx, testStream, "test-group"))

	groups, err := client.XInfoGroups(ctx, testStream).Result()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "test-group", groups[0].Name)

	// BUSYGROUP is not an error
	assert.NoError(t, repo.CreateConsumerGroup(ctx, testStream, "test-group"))
}

func TestStreamNotifier_PublishesContentChange(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	notifier := redisRepo.NewStreamNotifier(newRepo(client), testStream)
	ctx := context.Background()

	published := domain.StatusPublished
	event := domain.ContentChangedEvent{
		Kind:       domain.ChangeSaved,
		EntityType: domain.EntityRoute,
		EntityID:   uuid.NewString(),
		Slug:       "kimara-posta",
		Related:    []string{"kimara", "posta"},
		ToStatus:   &published,
		OccurredAt: time.Now().UTC(),
	}
	require.NoError(t, notifier.NotifyChange(ctx, event))

	messages, err := client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{testStream, "0"},
		Count:   1,
	}).Result()
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Len(t, messages[0].Messages, 1)

	data, ok := messages[0].Messages[0].Values["data"].(string)
	require.True(t, ok)

	var got domain.ContentChangedEvent
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, event.EntityID, got.EntityID)
	assert.Equal(t, []string{"kimara", "posta"}, got.Related)
	require.NotNil(t, got.ToStatus)
	assert.Equal(t, domain.StatusPublished, *got.ToStatus)
}

func TestStreamRepository_ConsumeAndAck(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := newRepo(client)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	const group = "test-consume-group"
	require.NoError(t, repo.CreateConsumerGroup(ctx, testStream, group))

	event := domain.ContentChangedEvent{Kind: domain.ChangeDeleted, EntityType: domain.EntityStop, Slug: "ubungo"}
	require.NoError(t, repo.PublishToStream(ctx, testStream, event))

	msgChan, err := repo.ConsumeStream(ctx, testStream, group, "test-consumer")
	require.NoError(t, err)

	var msg domain.StreamMessage
	select {
	case msg = <-msgChan:
	case <-time.After(3 * time.Second):
		t.Fatal("Timeout waiting for message")
	}

	var got domain.ContentChangedEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Data), &got))
	assert.Equal(t, "ubungo", got.Slug)

	pending, err := client.XPending(ctx, testStream, group).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending.Count)

	require.NoError(t, repo.AckMessage(ctx, testStream, group, msg.ID))

	pending, err = client.XPending(ctx, testStream, group).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

func TestStreamRepository_ConsumeStream_ClosesOnCancel(t *testing.T) {
	client := getTestRedisClient(t)
	defer client.Close()

	repo := newRepo(client)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, repo.CreateConsumerGroup(ctx, testStream, "test-cancel-group"))

	msgChan, err := repo.ConsumeStream(ctx, testStream, "test-cancel-group", "test-consumer")
	require.NoError(t, err)

	time.AfterFunc(100*time.Millisecond, cancel)

	select {
	case _, ok := <-msgChan:
		assert.False(t, ok, "channel should close without messages")
	case <-time.After(3 * time.Second):
		t.Fatal("channel not closed after context cancellation")
	}
}
