package dataset_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/summit-locator/internal/domain"
	"github.com/summit-locator/internal/repository/sqlite/testhelpers"
	"github.com/summit-locator/internal/store"
	"github.com/summit-locator/internal/worker/dataset"
)

const (
	testStream = "stream:test:dataset"
	testGroup  = "test-group"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock

	mu    sync.Mutex
	acked []string
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	m.mu.Lock()
	m.acked = append(m.acked, messageID)
	m.mu.Unlock()
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

type fakeRefresher struct {
	st    *store.Store
	err   error
	calls atomic.Int32
}

func (f *fakeRefresher) Refresh(ctx context.Context) (*store.Store, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.st, nil
}

func newRefresher(t *testing.T) *fakeRefresher {
	t.Helper()
	st, err := store.Load(context.Background(), testhelpers.BuildBlob(t, testhelpers.SampleSummits()), zap.NewNop())
	require.NoError(t, err)
	return &fakeRefresher{st: st}
}

func eventMessage(t *testing.T, id, version string, publishedAt time.Time) domain.StreamMessage {
	t.Helper()
	data, err := json.Marshal(domain.DatasetUpdatedEvent{
		ID:          uuid.New(),
		Version:     version,
		SizeBytes:   4096,
		Summits:     8,
		PublishedAt: publishedAt,
	})
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

func runWorker(t *testing.T, w *dataset.RefreshWorker) (stop func()) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	return func() {
		require.NoError(t, w.Stop())
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not stop")
		}
	}
}

func TestRefreshWorker_Name(t *testing.T) {
	w := dataset.NewRefreshWorker(&MockStreamRepository{}, &fakeRefresher{}, testStream, testGroup, 3, 0, zap.NewNop())
	assert.Equal(t, "dataset-refresh", w.Name())
}

func TestRefreshWorker_StopIsIdempotent(t *testing.T) {
	w := dataset.NewRefreshWorker(&MockStreamRepository{}, &fakeRefresher{}, testStream, testGroup, 3, 0, zap.NewNop())
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
	assert.True(t, w.IsStopped())
}

func TestRefreshWorker_CoalescesBatchIntoOneRefresh(t *testing.T) {
	now := time.Now()
	messages := []domain.StreamMessage{
		eventMessage(t, "1-0", "20260101T000000Z", now.Add(-time.Hour)),
		eventMessage(t, "2-0", "20260101T010000Z", now),
		{ID: "3-0", Data: "not json"},
	}

	repo := &MockStreamRepository{}
	repo.On("CreateConsumerGroup", mock.Anything, testStream, testGroup).Return(nil)
	repo.On("ConsumeBatch", mock.Anything, testStream, testGroup, mock.Anything, 10).Return(messages, nil).Once()
	repo.On("ConsumeBatch", mock.Anything, testStream, testGroup, mock.Anything, 10).Return([]domain.StreamMessage{}, nil)
	repo.On("AckMessage", mock.Anything, testStream, testGroup, mock.Anything).Return(nil)

	refresher := newRefresher(t)
	w := dataset.NewRefreshWorker(repo, refresher, testStream, testGroup, 3, 10*time.Millisecond, zap.NewNop())
	stop := runWorker(t, w)

	require.Eventually(t, func() bool {
		return refresher.calls.Load() == 1 && len(ackedIDs(repo)) == 3
	}, 2*time.Second, 10*time.Millisecond)
	stop()

	assert.Equal(t, int32(1), refresher.calls.Load())
	assert.ElementsMatch(t, []string{"1-0", "2-0", "3-0"}, ackedIDs(repo))
}

func TestRefreshWorker_OnlyInvalidMessages(t *testing.T) {
	repo := &MockStreamRepository{}
	repo.On("CreateConsumerGroup", mock.Anything, testStream, testGroup).Return(nil)
	repo.On("ConsumeBatch", mock.Anything, testStream, testGroup, mock.Anything, 10).
		Return([]domain.StreamMessage{{ID: "1-0", Data: `{"summits": 3}`}}, nil).Once()
	repo.On("ConsumeBatch", mock.Anything, testStream, testGroup, mock.Anything, 10).Return([]domain.StreamMessage{}, nil)
	repo.On("AckMessage", mock.Anything, testStream, testGroup, "1-0").Return(nil)

	refresher := newRefresher(t)
	w := dataset.NewRefreshWorker(repo, refresher, testStream, testGroup, 3, 10*time.Millisecond, zap.NewNop())
	stop := runWorker(t, w)

	require.Eventually(t, func() bool {
		return len(ackedIDs(repo)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	stop()

	assert.Equal(t, int32(0), refresher.calls.Load())
}

func TestRefreshWorker_RefreshFailureStillAcks(t *testing.T) {
	repo := &MockStreamRepository{}
	repo.On("CreateConsumerGroup", mock.Anything, testStream, testGroup).Return(nil)
	repo.On("ConsumeBatch", mock.Anything, testStream, testGroup, mock.Anything, 10).
		Return([]domain.StreamMessage{eventMessage(t, "1-0", "20260101T000000Z", time.Now())}, nil).Once()
	repo.On("ConsumeBatch", mock.Anything, testStream, testGroup, mock.Anything, 10).Return([]domain.StreamMessage{}, nil)
	repo.On("AckMessage", mock.Anything, testStream, testGroup, "1-0").Return(nil)

	refresher := &fakeRefresher{err: errors.New("download failed")}
	w := dataset.NewRefreshWorker(repo, refresher, testStream, testGroup, 1, 10*time.Millisecond, zap.NewNop())
	stop := runWorker(t, w)

	require.Eventually(t, func() bool {
		return len(ackedIDs(repo)) == 1
	}, 2*time.Second, 10*time.Millisecond)
	stop()

	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestRefreshWorker_ConsumerGroupError(t *testing.T) {
	repo := &MockStreamRepository{}
	repo.On("CreateConsumerGroup", mock.Anything, testStream, testGroup).Return(errors.New("redis down"))

	w := dataset.NewRefreshWorker(repo, &fakeRefresher{}, testStream, testGroup, 1, 0, zap.NewNop())
	err := w.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "consumer group")
}

func TestRefreshWorker_ContextCancellation(t *testing.T) {
	repo := &MockStreamRepository{}
	repo.On("CreateConsumerGroup", mock.Anything, testStream, testGroup).Return(nil)
	repo.On("ConsumeBatch", mock.Anything, testStream, testGroup, mock.Anything, 10).Return([]domain.StreamMessage{}, nil)

	w := dataset.NewRefreshWorker(repo, &fakeRefresher{}, testStream, testGroup, 1, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}

// ackedIDs - копия идентификаторов подтверждённых сообщений
func ackedIDs(repo *MockStreamRepository) []string {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	return append([]string(nil), repo.acked...)
}
