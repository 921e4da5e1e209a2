package domain

import (
	"time"

	"github.com/google/uuid"
)

// StreamDatasetUpdates - стрим, в который публикуется событие о новой сборке базы
const StreamDatasetUpdates = "stream:summits:dataset"

// DatasetUpdatedEvent - новая сборка DatabaseBlob опубликована
type DatasetUpdatedEvent struct {
	ID          uuid.UUID `json:"id"`
	Version     string    `json:"version"`
	SizeBytes   int64     `json:"size_bytes"`
	SHA256      string    `json:"sha256"`
	Summits     int       `json:"summits"`
	PublishedAt time.Time `json:"published_at"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
