package cache

import (
	"context"

	"github.com/summit-locator/internal/domain/repository"
	"go.uber.org/zap"
)

// blobCache держит блоб под одним ключом Redis без TTL: одно поколение одного набора данных
type blobCache struct {
	repo   repository.CacheRepository
	key    string
	logger *zap.Logger
}

// NewBlobCache создает кеш блоба поверх CacheRepository
func NewBlobCache(repo repository.CacheRepository, key string, logger *zap.Logger) repository.BlobCache {
	return &blobCache{
		repo:   repo,
		key:    key,
		logger: logger,
	}
}

func (c *blobCache) TryLoad(ctx context.Context) ([]byte, bool) {
	data, err := c.repo.Get(ctx, c.key)
	if err != nil {
		c.logger.Warn("Blob cache read failed, treating as miss", zap.String("key", c.key), zap.Error(err))
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (c *blobCache) Store(ctx context.Context, blob []byte) {
	if err := c.repo.Set(ctx, c.key, blob, 0); err != nil {
		c.logger.Warn("Blob cache write failed", zap.String("key", c.key), zap.Error(err))
		return
	}
	c.logger.Info("Blob cached", zap.String("key", c.key), zap.Int("bytes", len(blob)))
}

func (c *blobCache) Clear(ctx context.Context) {
	if err := c.repo.Delete(ctx, c.key); err != nil {
		c.logger.Warn("Blob cache clear failed", zap.String("key", c.key), zap.Error(err))
		return
	}
	c.logger.Info("Blob cache cleared", zap.String("key", c.key))
}

// noopBlobCache - кеш, который всегда промахивается (CACHE_BACKEND=none)
type noopBlobCache struct{}

// NewNoopBlobCache возвращает кеш без хранения
func NewNoopBlobCache() repository.BlobCache {
	return noopBlobCache{}
}

func (noopBlobCache) TryLoad(context.Context) ([]byte, bool) { return nil, false }
func (noopBlobCache) Store(context.Context, []byte)          {}
func (noopBlobCache) Clear(context.Context)                  {}
