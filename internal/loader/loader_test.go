package loader_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/summit-locator/internal/domain/repository"
	"github.com/summit-locator/internal/loader"
	"github.com/summit-locator/internal/repository/filecache"
	"github.com/summit-locator/internal/repository/sqlite/testhelpers"
	"github.com/summit-locator/internal/store"
)

// MockBlobCache is a mock of BlobCache
type MockBlobCache struct {
	mock.Mock
}

func (m *MockBlobCache) TryLoad(ctx context.Context) ([]byte, bool) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]byte), args.Bool(1)
}

func (m *MockBlobCache) Store(ctx context.Context, blob []byte) {
	m.Called(ctx, blob)
}

func (m *MockBlobCache) Clear(ctx context.Context) {
	m.Called(ctx)
}

// MockBlobFetcher is a mock of BlobFetcher
type MockBlobFetcher struct {
	mock.Mock
}

func (m *MockBlobFetcher) Fetch(ctx context.Context, progress repository.ProgressFunc) ([]byte, error) {
	args := m.Called(ctx, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestLoader_CacheHit(t *testing.T) {
	blob := testhelpers.BuildBlob(t, testhelpers.SampleSummits())

	cache := new(MockBlobCache)
	fetcher := new(MockBlobFetcher)
	cache.On("TryLoad", mock.Anything).Return(blob, true).Once()

	l := loader.New(cache, fetcher, zap.NewNop())
	assert.Nil(t, l.Current())

	st, err := l.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, st.Count())

	// повторный вызов не трогает ни кеш, ни сеть
	again, err := l.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Same(t, st, again)

	status := l.Status()
	assert.True(t, status.Loaded)
	assert.True(t, status.FromCache)
	assert.Equal(t, 8, status.Summits)

	cache.AssertExpectations(t)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestLoader_CacheMissFetchesAndPopulatesCache(t *testing.T) {
	blob := testhelpers.BuildBlob(t, testhelpers.SampleSummits())

	cache := new(MockBlobCache)
	fetcher := new(MockBlobFetcher)
	cache.On("TryLoad", mock.Anything).Return(nil, false)
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(blob, nil).Once()
	cache.On("Store", mock.Anything, blob).Once()

	l := loader.New(cache, fetcher, zap.NewNop())
	st, err := l.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, st.Count())
	assert.False(t, l.Status().FromCache)

	cache.AssertExpectations(t)
	fetcher.AssertExpectations(t)
}

func TestLoader_CorruptCacheIsClearedAndRefetched(t *testing.T) {
	blob := testhelpers.BuildBlob(t, testhelpers.SampleSummits())

	cache := new(MockBlobCache)
	fetcher := new(MockBlobFetcher)
	cache.On("TryLoad", mock.Anything).Return([]byte("definitely not sqlite"), true)
	cache.On("Clear", mock.Anything).Once()
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(blob, nil).Once()
	cache.On("Store", mock.Anything, blob).Once()

	l := loader.New(cache, fetcher, zap.NewNop())
	_, err := l.EnsureLoaded(context.Background())
	require.NoError(t, err)

	cache.AssertExpectations(t)
	fetcher.AssertExpectations(t)
}

func TestLoader_FetchFailureIsUnavailableAndRetried(t *testing.T) {
	blob := testhelpers.BuildBlob(t, testhelpers.SampleSummits())

	cache := new(MockBlobCache)
	fetcher := new(MockBlobFetcher)
	cache.On("TryLoad", mock.Anything).Return(nil, false)
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("network down")).Once()
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(blob, nil).Once()
	cache.On("Store", mock.Anything, blob).Once()

	l := loader.New(cache, fetcher, zap.NewNop())

	st, err := l.EnsureLoaded(context.Background())
	require.Error(t, err)
	assert.Nil(t, st)
	assert.ErrorIs(t, err, loader.ErrStoreUnavailable)
	assert.Contains(t, l.Status().LastError, "network down")
	assert.False(t, l.Status().Loaded)

	st, err = l.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, st.Count())
	assert.Empty(t, l.Status().LastError)

	fetcher.AssertExpectations(t)
}

func TestLoader_CorruptDownloadIsNotCached(t *testing.T) {
	cache := new(MockBlobCache)
	fetcher := new(MockBlobFetcher)
	cache.On("TryLoad", mock.Anything).Return(nil, false)
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return([]byte("<html>captive portal</html>"), nil)

	l := loader.New(cache, fetcher, zap.NewNop())
	_, err := l.EnsureLoaded(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, loader.ErrStoreUnavailable)
	assert.ErrorIs(t, err, store.ErrCorruptBlob)

	cache.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

// gatedFetcher блокирует Fetch до закрытия release
type gatedFetcher struct {
	blob    []byte
	calls   atomic.Int32
	release chan struct{}
}

func (f *gatedFetcher) Fetch(ctx context.Context, progress repository.ProgressFunc) ([]byte, error) {
	f.calls.Add(1)
	<-f.release
	if progress != nil {
		progress(int64(len(f.blob)), int64(len(f.blob)))
	}
	return f.blob, nil
}

func TestLoader_ConcurrentCallersShareOneLoad(t *testing.T) {
	blob := testhelpers.BuildBlob(t, testhelpers.SampleSummits())

	cache := new(MockBlobCache)
	cache.On("TryLoad", mock.Anything).Return(nil, false)
	cache.On("Store", mock.Anything, blob)

	fetcher := &gatedFetcher{blob: blob, release: make(chan struct{})}

	var progressCalls atomic.Int32
	l := loader.New(cache, fetcher, zap.NewNop(), loader.WithProgress(func(loaded, total int64) {
		progressCalls.Add(1)
	}))

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*store.Store, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = l.EnsureLoaded(context.Background())
		}(i)
	}

	// ждём, пока первый вызов дойдёт до сети
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, timeout, tick)
	close(fetcher.release)
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Equal(t, int32(1), progressCalls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, results[0], results[i])
	}
}

func TestLoader_Refresh(t *testing.T) {
	first := testhelpers.BuildBlob(t, testhelpers.SampleSummits())
	second := testhelpers.BuildBlob(t, testhelpers.SampleSummits()[:3])

	cache := new(MockBlobCache)
	fetcher := new(MockBlobFetcher)
	cache.On("TryLoad", mock.Anything).Return(first, true).Once()
	cache.On("Store", mock.Anything, second).Once()
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(second, nil).Once()
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("upstream 500")).Once()

	l := loader.New(cache, fetcher, zap.NewNop())

	st, err := l.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, st.Count())

	st, err = l.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, st.Count())
	assert.Same(t, st, l.Current())

	// неудачное обновление оставляет прежние данные
	_, err = l.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, loader.ErrStoreUnavailable)
	require.NotNil(t, l.Current())
	assert.Equal(t, 3, l.Current().Count())

	cache.AssertNotCalled(t, "Clear", mock.Anything)
	cache.AssertNumberOfCalls(t, "Store", 1)
	fetcher.AssertExpectations(t)
}

func TestLoader_FailedRefreshKeepsOfflineCopy(t *testing.T) {
	blob := testhelpers.BuildBlob(t, testhelpers.SampleSummits())
	cache := filecache.NewBlobCache(t.TempDir(), "summits.db", zap.NewNop())

	fetcher := new(MockBlobFetcher)
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(blob, nil).Once()
	fetcher.On("Fetch", mock.Anything, mock.Anything).Return(nil, errors.New("network down")).Once()

	l := loader.New(cache, fetcher, zap.NewNop())
	_, err := l.EnsureLoaded(context.Background())
	require.NoError(t, err)

	_, err = l.Refresh(context.Background())
	require.Error(t, err)

	cached, ok := cache.TryLoad(context.Background())
	require.True(t, ok)
	assert.Equal(t, blob, cached)

	// перезапуск без сети поднимается из кеша
	offline := new(MockBlobFetcher)
	restarted := loader.New(cache, offline, zap.NewNop())
	st, err := restarted.EnsureLoaded(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, st.Count())
	assert.True(t, restarted.Status().FromCache)
	offline.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	fetcher.AssertExpectations(t)
}
