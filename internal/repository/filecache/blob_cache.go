package filecache

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/summit-locator/internal/domain/repository"
	"go.uber.org/zap"
)

// blobCache хранит один именованный блоб в каталоге кеша пользователя
type blobCache struct {
	dir    string
	name   string
	logger *zap.Logger
}

// NewBlobCache создает файловый кеш блоба dir/name
func NewBlobCache(dir, name string, logger *zap.Logger) repository.BlobCache {
	return &blobCache{
		dir:    dir,
		name:   name,
		logger: logger,
	}
}

func (c *blobCache) path() string {
	return filepath.Join(c.dir, c.name)
}

func (c *blobCache) TryLoad(ctx context.Context) ([]byte, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	data, err := os.ReadFile(c.path())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warn("Failed to read cached blob, treating as miss",
				zap.String("path", c.path()),
				zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	c.logger.Debug("Blob cache hit", zap.String("path", c.path()), zap.Int("bytes", len(data)))
	return data, true
}

// Store пишет во временный файл и переименовывает его: читатель видит либо старый блоб, либо новый целиком
func (c *blobCache) Store(ctx context.Context, blob []byte) {
	if ctx.Err() != nil {
		return
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.logger.Warn("Failed to create cache dir", zap.String("dir", c.dir), zap.Error(err))
		return
	}

	tmp, err := os.CreateTemp(c.dir, c.name+".*.tmp")
	if err != nil {
		c.logger.Warn("Failed to create temp cache file", zap.Error(err))
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		c.logger.Warn("Failed to write cache file", zap.Error(err))
		return
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		c.logger.Warn("Failed to sync cache file", zap.Error(err))
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		c.logger.Warn("Failed to close cache file", zap.Error(err))
		return
	}

	if err := os.Rename(tmpName, c.path()); err != nil {
		_ = os.Remove(tmpName)
		c.logger.Warn("Failed to move cache file into place", zap.Error(err))
		return
	}

	c.logger.Info("Blob cached", zap.String("path", c.path()), zap.Int("bytes", len(blob)))
}

func (c *blobCache) Clear(ctx context.Context) {
	if err := os.Remove(c.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("Failed to clear blob cache", zap.String("path", c.path()), zap.Error(err))
		return
	}
	c.logger.Info("Blob cache cleared", zap.String("path", c.path()))
}
