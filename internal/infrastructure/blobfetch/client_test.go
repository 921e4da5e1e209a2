package blobfetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/summit-locator/internal/config"
	"go.uber.org/zap"
)

type progressCall struct {
	loaded, total int64
}

func newTestClient(t *testing.T, baseURL string) *client {
	t.Helper()
	f, err := NewClient(&config.LoaderConfig{
		BaseURL:        baseURL,
		BlobPath:       "/data/summits.db",
		RequestTimeout: 5 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return f.(*client)
}

func TestClient_Fetch(t *testing.T) {
	blob := bytes.Repeat([]byte("summit"), 50000) // 300000 байт

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/summits.db", r.URL.Path)
		http.ServeContent(w, r, "summits.db", time.Time{}, bytes.NewReader(blob))
	}))
	defer server.Close()

	var calls []progressCall
	data, err := newTestClient(t, server.URL).Fetch(context.Background(), func(loaded, total int64) {
		calls = append(calls, progressCall{loaded, total})
	})
	require.NoError(t, err)
	assert.Equal(t, blob, data)

	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	assert.Equal(t, int64(len(blob)), last.loaded)
	assert.Equal(t, int64(len(blob)), last.total)
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i].loaded, calls[i-1].loaded)
	}
	// порог 64 KiB: для 300 КБ вызовов немного
	assert.LessOrEqual(t, len(calls), 6)
}

func TestClient_Fetch_UnknownLength(t *testing.T) {
	blob := []byte("SQLite format 3\x00 small")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(blob)
		w.(http.Flusher).Flush() // chunked: Content-Length не отправляется
	}))
	defer server.Close()

	var calls []progressCall
	data, err := newTestClient(t, server.URL).Fetch(context.Background(), func(loaded, total int64) {
		calls = append(calls, progressCall{loaded, total})
	})
	require.NoError(t, err)
	assert.Equal(t, blob, data)
	require.Len(t, calls, 1)
	assert.Equal(t, progressCall{loaded: int64(len(blob)), total: 0}, calls[0])
}

func TestClient_Fetch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Fetch(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestClient_Fetch_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url).Fetch(context.Background(), nil)
	assert.Error(t, err)
}

func TestClient_Fetch_FileURL(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "data"), 0o755))
	blob := []byte("local blob bytes")
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "summits.db"), blob, 0o644))

	data, err := newTestClient(t, "file://"+filepath.ToSlash(root)).Fetch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, blob, data)
}
