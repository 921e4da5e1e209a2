package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/summit-locator/internal/domain/repository"
	"github.com/summit-locator/internal/pkg/metrics"
	"github.com/summit-locator/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrStoreUnavailable - ни кеш, ни сеть не дали пригодного блоба
var ErrStoreUnavailable = errors.New("summit store unavailable")

// Status - состояние загрузчика для health-проверок
type Status struct {
	Loaded    bool
	Summits   int
	LoadedAt  time.Time
	FromCache bool
	LastError string
}

// Loader владеет текущим Store: кеш -> сеть -> декодирование -> запись в кеш.
// Создаётся один раз на процесс и передаётся тем, кому нужны данные.
type Loader struct {
	cache    repository.BlobCache
	fetcher  repository.BlobFetcher
	logger   *zap.Logger
	progress repository.ProgressFunc

	group   singleflight.Group
	current atomic.Pointer[store.Store]

	mu        sync.Mutex
	fromCache bool
	lastErr   error
}

// Option настраивает Loader
type Option func(*Loader)

// WithProgress подключает обработчик прогресса загрузки
func WithProgress(fn repository.ProgressFunc) Option {
	return func(l *Loader) {
		l.progress = fn
	}
}

// New создает Loader; ничего не загружает до первого EnsureLoaded
func New(cache repository.BlobCache, fetcher repository.BlobFetcher, logger *zap.Logger, opts ...Option) *Loader {
	l := &Loader{
		cache:   cache,
		fetcher: fetcher,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// EnsureLoaded возвращает загруженный Store, при необходимости загружая его.
// Одновременные вызовы разделяют одну попытку; неудача не запоминается, следующий вызов пробует снова.
func (l *Loader) EnsureLoaded(ctx context.Context) (*store.Store, error) {
	if st := l.current.Load(); st != nil {
		return st, nil
	}

	v, err, _ := l.group.Do("load", func() (interface{}, error) {
		if st := l.current.Load(); st != nil {
			return st, nil
		}
		// общая попытка не должна обрываться, если первый из ожидающих ушёл
		return l.load(context.WithoutCancel(ctx), true)
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.Store), nil
}

// Refresh загружает блоб заново из сети, минуя кеш.
// Кеш перезаписывается только проверенным блобом; при неудаче остаются прежние Store и кеш.
func (l *Loader) Refresh(ctx context.Context) (*store.Store, error) {
	v, err, _ := l.group.Do("refresh", func() (interface{}, error) {
		return l.load(context.WithoutCancel(ctx), false)
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.Store), nil
}

// Current возвращает загруженный Store или nil
func (l *Loader) Current() *store.Store {
	return l.current.Load()
}

// Status возвращает снимок состояния
func (l *Loader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Status{FromCache: l.fromCache}
	if l.lastErr != nil {
		s.LastError = l.lastErr.Error()
	}
	if st := l.current.Load(); st != nil {
		s.Loaded = true
		s.Summits = st.Count()
		s.LoadedAt = st.LoadedAt()
	}
	return s
}

func (l *Loader) load(ctx context.Context, useCache bool) (*store.Store, error) {
	if useCache {
		if st, ok := l.loadFromCache(ctx); ok {
			l.publish(st, true, nil)
			return st, nil
		}
	}

	blob, err := l.fetcher.Fetch(ctx, l.progress)
	if err != nil {
		err = fmt.Errorf("%w: fetch: %w", ErrStoreUnavailable, err)
		l.publish(nil, false, err)
		return nil, err
	}

	metrics.BlobDownloadedBytesTotal.Add(float64(len(blob)))

	st, err := store.Load(ctx, blob, l.logger)
	if err != nil {
		// битый блоб из сети в кеш не попадает
		err = fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		l.publish(nil, false, err)
		return nil, err
	}

	l.cache.Store(ctx, blob)
	l.publish(st, false, nil)
	return st, nil
}

func (l *Loader) loadFromCache(ctx context.Context) (*store.Store, bool) {
	blob, ok := l.cache.TryLoad(ctx)
	if !ok {
		l.logger.Info("Blob cache miss, downloading")
		return nil, false
	}

	st, err := store.Load(ctx, blob, l.logger)
	if err != nil {
		l.logger.Warn("Cached blob is unusable, downloading again", zap.Error(err))
		if errors.Is(err, store.ErrCorruptBlob) {
			l.cache.Clear(ctx)
		}
		return nil, false
	}

	l.logger.Info("Summit store loaded from cache", zap.Int("summits", st.Count()))
	return st, true
}

func (l *Loader) publish(st *store.Store, fromCache bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastErr = err
	if st == nil {
		metrics.StoreLoadFailuresTotal.Inc()
		return
	}

	l.current.Store(st)
	l.fromCache = fromCache

	source := metrics.SourceNetwork
	if fromCache {
		source = metrics.SourceCache
	}
	metrics.StoreLoadsTotal.WithLabelValues(source).Inc()
	metrics.StoreSummits.Set(float64(st.Count()))
}
