//go:build ignore

// Publishes one content-change event so the invalidation worker can be
// checked by hand:
//
//	go run scripts/test_publish.go -slug kimara-posta -entity route
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type contentChangedEvent struct {
	Kind       string    `json:"kind"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id,omitempty"`
	Slug       string    `json:"slug"`
	Related    []string  `json:"related,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	stream := flag.String("stream", "stream:content:changed", "stream name")
	entity := flag.String("entity", "route", "route, stop or terminal")
	slug := flag.String("slug", "kimara-posta", "slug of the changed entity")
	status := flag.String("status", "published", "status after the change")
	flag.Parse()

	client := redis.NewClient(&redis.Options{Addr: *redisAddr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := contentChangedEvent{
		Kind:       "content.saved",
		EntityType: *entity,
		Slug:       *slug,
		ToStatus:   *status,
		OccurredAt: time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	id, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: *stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", *stream)
	fmt.Printf("   Message ID: %s\n", id)
	fmt.Printf("   %s %s -> %s\n", *entity, *slug, *status)

	// Pending count drops to zero once the worker has acked.
	time.Sleep(2 * time.Second)
	groups, err := client.XInfoGroups(ctx, *stream).Result()
	if err != nil {
		log.Printf("No consumer groups yet: %v", err)
		return
	}
	for _, g := range groups {
		fmt.Printf("   group %s: pending=%d consumers=%d\n", g.Name, g.Pending, g.Consumers)
	}
}
