//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type DatasetUpdatedEvent struct {
	ID          uuid.UUID `json:"id"`
	Version     string    `json:"version"`
	SizeBytes   int64     `json:"size_bytes"`
	SHA256      string    `json:"sha256"`
	Summits     int       `json:"summits"`
	PublishedAt time.Time `json:"published_at"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	stream := flag.String("stream", "stream:summits:dataset", "dataset update stream")
	group := flag.String("group", "summit-dataset-refresh", "consumer group of the refresh worker")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	now := time.Now().UTC()
	event := DatasetUpdatedEvent{
		ID:          uuid.New(),
		Version:     now.Format("20060102T150405Z"),
		PublishedAt: now,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	messageID, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: *stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", *stream)
	fmt.Printf("   Message ID: %s\n", messageID)
	fmt.Printf("   Version: %s\n", event.Version)

	// Ждём, пока воркер прочитает и подтвердит сообщение
	fmt.Printf("\nWaiting for %s to ack the message...\n", *group)

	timeout := time.After(30 * time.Second)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			fmt.Println("Timeout waiting for ack")
			return
		case <-ticker.C:
			groups, err := client.XInfoGroups(ctx, *stream).Result()
			if err != nil {
				continue
			}
			for _, g := range groups {
				if g.Name != *group {
					continue
				}
				if g.Pending == 0 && g.LastDeliveredID >= messageID {
					fmt.Printf("Message acked, last delivered: %s\n", g.LastDeliveredID)
					return
				}
			}
		}
	}
}
