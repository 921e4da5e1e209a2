package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/summit-locator/internal/domain"
	"github.com/summit-locator/internal/domain/repository"
	"github.com/summit-locator/internal/pkg/metrics"
	"github.com/summit-locator/internal/store"
	"github.com/summit-locator/internal/worker"
	"go.uber.org/zap"
)

const (
	maxBatchSize = 10
	retryBackoff = time.Second
)

// Refresher перезагружает базу вершин из источника
type Refresher interface {
	Refresh(ctx context.Context) (*store.Store, error)
}

// RefreshWorker слушает события о новой сборке базы и перезагружает Store.
// Несколько событий в одной пачке дают одну перезагрузку.
type RefreshWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	refresher    Refresher
	stream       string
	consumerName string
	maxRetries   int
	pollInterval time.Duration
}

// NewRefreshWorker создает новый RefreshWorker
func NewRefreshWorker(
	streamRepo repository.StreamRepository,
	refresher Refresher,
	stream string,
	consumerGroup string,
	maxRetries int,
	pollInterval time.Duration,
	logger *zap.Logger,
) *RefreshWorker {
	hostname, _ := os.Hostname()
	if stream == "" {
		stream = domain.StreamDatasetUpdates
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	return &RefreshWorker{
		BaseWorker:   worker.NewBaseWorker("dataset-refresh", consumerGroup, logger),
		streamRepo:   streamRepo,
		refresher:    refresher,
		stream:       stream,
		consumerName: fmt.Sprintf("%s-%d", hostname, os.Getpid()),
		maxRetries:   maxRetries,
		pollInterval: pollInterval,
	}
}

// Start запускает воркер
func (w *RefreshWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting RefreshWorker",
		zap.String("stream", w.stream),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	if err := w.streamRepo.CreateConsumerGroup(ctx, w.stream, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil
		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()
		default:
		}

		processed, err := w.processBatch(ctx)
		if err != nil {
			logger.Error("Failed to process batch", zap.Error(err))
		}

		if processed == 0 || err != nil {
			w.Wait(ctx, w.pollInterval)
		}
	}
}

// processBatch читает пачку событий и перезагружает базу, если среди них есть валидные.
// Возвращает количество прочитанных сообщений.
func (w *RefreshWorker) processBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(ctx, w.stream, w.ConsumerGroup(), w.consumerName, maxBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	var latest *domain.DatasetUpdatedEvent
	for _, msg := range messages {
		event, err := parseMessage(msg)
		if err != nil {
			metrics.DatasetEventsTotal.WithLabelValues("invalid").Inc()
			logger.Warn("Failed to parse message, skipping",
				zap.String("message_id", msg.ID),
				zap.Error(err))
			continue
		}
		if latest == nil || event.PublishedAt.After(latest.PublishedAt) {
			latest = event
		}
	}

	if latest != nil {
		logger.Info("Dataset update received",
			zap.String("version", latest.Version),
			zap.Int("summits", latest.Summits),
			zap.Int64("size_bytes", latest.SizeBytes),
			zap.Int("events", len(messages)))

		if err := w.refresh(ctx); err != nil {
			metrics.DatasetEventsTotal.WithLabelValues("failed").Inc()
			// прежняя база продолжает обслуживать запросы
			logger.Error("Dataset refresh failed, keeping current store",
				zap.String("version", latest.Version),
				zap.Error(err))
		} else {
			metrics.DatasetEventsTotal.WithLabelValues("applied").Inc()
		}
	}

	for _, msg := range messages {
		if err := w.streamRepo.AckMessage(ctx, w.stream, w.ConsumerGroup(), msg.ID); err != nil {
			logger.Error("Failed to ack message",
				zap.String("message_id", msg.ID),
				zap.Error(err))
		}
	}

	return len(messages), nil
}

func (w *RefreshWorker) refresh(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		st, err := w.refresher.Refresh(ctx)
		if err == nil {
			w.Logger().Info("Dataset refreshed",
				zap.Int("summits", st.Count()),
				zap.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		w.Logger().Warn("Dataset refresh attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", w.maxRetries),
			zap.Error(err))

		if attempt < w.maxRetries && !w.Wait(ctx, retryBackoff*time.Duration(attempt)) {
			return lastErr
		}
	}
	return lastErr
}

func parseMessage(msg domain.StreamMessage) (*domain.DatasetUpdatedEvent, error) {
	var event domain.DatasetUpdatedEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Version == "" {
		return nil, fmt.Errorf("event has no version")
	}
	return &event, nil
}
