package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp переходит в пустой каталог, чтобы локальный .env не влиял на тест
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.GetServerAddr())
	assert.Equal(t, "/data/summits.db", cfg.Loader.BlobPath)
	assert.Equal(t, 120*time.Second, cfg.Loader.RequestTimeout)
	assert.Equal(t, CacheBackendFile, cfg.Cache.Backend)
	assert.Equal(t, "summits.db", cfg.Cache.BlobName)
	assert.NotEmpty(t, cfg.Cache.Dir)
	assert.Equal(t, 50, cfg.Search.PageSize)
	assert.Equal(t, 20, cfg.Search.NearbyDefaultLimit)
	assert.Equal(t, 500.0, cfg.Search.MaxRadiusKm)
	assert.Equal(t, 1000, cfg.Ingest.BatchSize)
	assert.Equal(t, 10, cfg.Ingest.TopGroups)
	assert.False(t, cfg.Worker.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Worker.StreamReadTimeout)
	assert.Equal(t, "localhost:6379", cfg.GetRedisAddr())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("BLOB_BASE_URL", "https://cdn.example.org")
	t.Setenv("CACHE_BACKEND", CacheBackendRedis)
	t.Setenv("SEARCH_PAGE_SIZE", "25")
	t.Setenv("NEARBY_MAX_RADIUS_KM", "150.5")
	t.Setenv("WORKER_ENABLED", "true")
	t.Setenv("WORKER_STREAM_READ_TIMEOUT", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://cdn.example.org", cfg.Loader.BaseURL)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 25, cfg.Search.PageSize)
	assert.Equal(t, 150.5, cfg.Search.MaxRadiusKm)
	assert.True(t, cfg.Worker.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Worker.StreamReadTimeout)
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("LOG_LEVEL=debug\nINGEST_BATCH_SIZE=200\n"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 200, cfg.Ingest.BatchSize)
}
