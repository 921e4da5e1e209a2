package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/summit-locator/internal/domain"
	"go.uber.org/zap"
)

// DefaultBatchSize - число строк в одной транзакции
const DefaultBatchSize = 1000

// RowError - сбой вставки одной строки; соседние строки пакета не теряются
type RowError struct {
	Ref string
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("insert summit %q: %v", e.Ref, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// SummitWriter пакетно пишет вершины и их записи R*Tree индекса
type SummitWriter struct {
	db        *DB
	logger    *zap.Logger
	batchSize int

	tx         *sqlx.Tx
	summitStmt *sqlx.NamedStmt
	indexStmt  *sqlx.NamedStmt
	pending    int

	nextID  int64
	written int
	batches int
}

// NewSummitWriter создаёт схему и готовит писателя
func NewSummitWriter(ctx context.Context, db *DB, batchSize int, logger *zap.Logger) (*SummitWriter, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	var maxID int64
	if err := db.GetContext(ctx, &maxID, `SELECT COALESCE(MAX(id), 0) FROM summits`); err != nil {
		return nil, fmt.Errorf("read max id: %w", err)
	}

	return &SummitWriter{
		db:        db,
		logger:    logger,
		batchSize: batchSize,
		nextID:    maxID + 1,
	}, nil
}

// Write вставляет вершину, присваивая ей следующий плотный id.
// Ошибка конкретной строки возвращается как *RowError, любая другая ошибка фатальна.
func (w *SummitWriter) Write(ctx context.Context, s *domain.Summit) error {
	if w.tx == nil {
		if err := w.begin(ctx); err != nil {
			return err
		}
	}

	if _, err := w.tx.ExecContext(ctx, `SAVEPOINT summit_row`); err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}

	s.ID = w.nextID
	if err := w.insertRow(ctx, s); err != nil {
		s.ID = 0
		if _, rbErr := w.tx.ExecContext(ctx, `ROLLBACK TO summit_row`); rbErr != nil {
			return fmt.Errorf("rollback to savepoint: %w", rbErr)
		}
		if _, relErr := w.tx.ExecContext(ctx, `RELEASE summit_row`); relErr != nil {
			return fmt.Errorf("release savepoint: %w", relErr)
		}
		return &RowError{Ref: s.Ref, Err: err}
	}

	if _, err := w.tx.ExecContext(ctx, `RELEASE summit_row`); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}

	w.nextID++
	w.written++
	w.pending++

	if w.pending >= w.batchSize {
		return w.Flush(ctx)
	}
	return nil
}

func (w *SummitWriter) insertRow(ctx context.Context, s *domain.Summit) error {
	if _, err := w.summitStmt.ExecContext(ctx, s); err != nil {
		return err
	}
	entry := domain.NewSpatialIndexEntry(s)
	if _, err := w.indexStmt.ExecContext(ctx, entry); err != nil {
		return fmt.Errorf("spatial index: %w", err)
	}
	return nil
}

func (w *SummitWriter) begin(ctx context.Context) error {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}

	summitStmt, err := tx.PrepareNamedContext(ctx, insertSummitSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare summit insert: %w", err)
	}
	indexStmt, err := tx.PrepareNamedContext(ctx, insertIndexSQL)
	if err != nil {
		_ = summitStmt.Close()
		_ = tx.Rollback()
		return fmt.Errorf("prepare index insert: %w", err)
	}

	w.tx = tx
	w.summitStmt = summitStmt
	w.indexStmt = indexStmt
	w.pending = 0
	return nil
}

// Flush фиксирует текущий пакет
func (w *SummitWriter) Flush(ctx context.Context) error {
	if w.tx == nil {
		return nil
	}

	_ = w.summitStmt.Close()
	_ = w.indexStmt.Close()

	pending := w.pending
	err := w.tx.Commit()
	w.tx, w.summitStmt, w.indexStmt, w.pending = nil, nil, nil, 0
	if err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	w.batches++
	w.logger.Debug("Batch committed",
		zap.Int("rows", pending),
		zap.Int("batches", w.batches),
		zap.Int("written", w.written))
	return nil
}

// Abort откатывает незафиксированный пакет
func (w *SummitWriter) Abort() {
	if w.tx == nil {
		return
	}
	_ = w.summitStmt.Close()
	_ = w.indexStmt.Close()
	_ = w.tx.Rollback()
	w.tx, w.summitStmt, w.indexStmt, w.pending = nil, nil, nil, 0
}

// Written возвращает число успешно записанных вершин
func (w *SummitWriter) Written() int {
	return w.written
}

// Finish фиксирует последний пакет, пишет meta и обновляет статистику планировщика
func (w *SummitWriter) Finish(ctx context.Context, sourceName string, builtAt time.Time) error {
	if err := w.Flush(ctx); err != nil {
		return err
	}

	var rows int
	if err := w.db.GetContext(ctx, &rows, `SELECT COUNT(*) FROM summits`); err != nil {
		return fmt.Errorf("count summits: %w", err)
	}

	meta := [][2]string{
		{MetaSchemaVersion, strconv.Itoa(SchemaVersion)},
		{MetaRowCount, strconv.Itoa(rows)},
		{MetaBuiltAt, builtAt.UTC().Format(time.RFC3339)},
		{MetaSourceName, sourceName},
	}
	for _, kv := range meta {
		if _, err := w.db.ExecContext(ctx, upsertMetaSQL, kv[0], kv[1]); err != nil {
			return fmt.Errorf("write meta %s: %w", kv[0], err)
		}
	}

	if _, err := w.db.ExecContext(ctx, `ANALYZE`); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	if _, err := w.db.ExecContext(ctx, `PRAGMA optimize`); err != nil {
		return fmt.Errorf("optimize: %w", err)
	}

	w.logger.Info("Summit table finalized",
		zap.Int("rows", rows),
		zap.Int("batches", w.batches))
	return nil
}

// AssociationCounts возвращает число вершин по ассоциациям, по убыванию
func (db *DB) AssociationCounts(ctx context.Context) ([]domain.AssociationCount, error) {
	var counts []domain.AssociationCount
	err := db.SelectContext(ctx, &counts, `
		SELECT association, COUNT(*) AS count
		FROM summits
		GROUP BY association
		ORDER BY count DESC, association ASC`)
	if err != nil {
		return nil, fmt.Errorf("association counts: %w", err)
	}
	return counts, nil
}

// ExportBlob пишет компактную однофайловую копию базы в outPath.
// Запись идёт во временный файл рядом и атомарно переименовывается.
func (db *DB) ExportBlob(ctx context.Context, outPath string) (int64, error) {
	tmp := outPath + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return 0, fmt.Errorf("remove stale temp file: %w", err)
	}

	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, tmp); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("vacuum into %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, outPath); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("rename blob: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat blob: %w", err)
	}
	return info.Size(), nil
}
