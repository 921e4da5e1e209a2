package repository

import "context"

// ProgressFunc получает (загружено, всего) байт; total == 0, если размер неизвестен
type ProgressFunc func(loaded, total int64)

// BlobFetcher скачивает DatabaseBlob по фиксированному пути целиком.
// Частичная загрузка отбрасывается, докачки нет.
type BlobFetcher interface {
	Fetch(ctx context.Context, progress ProgressFunc) ([]byte, error)
}
