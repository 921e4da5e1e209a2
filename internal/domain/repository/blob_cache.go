package repository

import "context"

// BlobCache хранит ровно один именованный DatabaseBlob.
// Ошибки кеша никогда не фатальны: чтение деградирует до промаха, запись и очистка - best-effort.
type BlobCache interface {
	// TryLoad возвращает блоб и true, либо nil и false при любом промахе или сбое
	TryLoad(ctx context.Context) ([]byte, bool)

	// Store сохраняет блоб; сбой логируется и проглатывается
	Store(ctx context.Context, blob []byte)

	// Clear удаляет блоб; сбой логируется и проглатывается
	Clear(ctx context.Context)
}
