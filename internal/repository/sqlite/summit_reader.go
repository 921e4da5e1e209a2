package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/summit-locator/internal/domain"
)

// ErrSchemaMismatch - в блобе нет обязательных таблиц или колонок
var ErrSchemaMismatch = errors.New("blob schema mismatch")

// BlobMeta - содержимое таблицы meta
type BlobMeta struct {
	SchemaVersion int
	RowCount      int
	BuiltAt       *time.Time
	SourceName    string
}

// Snapshot - полное содержимое блоба, прочитанное в память
type Snapshot struct {
	Meta    BlobMeta
	Summits []domain.Summit
	Index   []domain.SpatialIndexEntry
}

type columnInfo struct {
	CID     int     `db:"cid"`
	Name    string  `db:"name"`
	Type    string  `db:"type"`
	NotNull int     `db:"notnull"`
	Default *string `db:"dflt_value"`
	PK      int     `db:"pk"`
}

// ReadSnapshot проверяет схему и читает обе таблицы целиком
func ReadSnapshot(ctx context.Context, db *DB) (*Snapshot, error) {
	if err := checkSchema(ctx, db); err != nil {
		return nil, err
	}

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, err
	}

	var summits []domain.Summit
	if err := db.SelectContext(ctx, &summits, `
		SELECT id, ref, name, lat, lon, altitude, points, activations,
		       bonus, association, region, valid_from, valid_to
		FROM summits
		ORDER BY id`); err != nil {
		return nil, fmt.Errorf("read summits: %w", err)
	}

	var index []domain.SpatialIndexEntry
	if err := db.SelectContext(ctx, &index, `
		SELECT id, min_lat, max_lat, min_lon, max_lon
		FROM summits_rtree
		ORDER BY id`); err != nil {
		return nil, fmt.Errorf("read spatial index: %w", err)
	}

	return &Snapshot{Meta: *meta, Summits: summits, Index: index}, nil
}

func checkSchema(ctx context.Context, db *DB) error {
	var tables []string
	if err := db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table'`); err != nil {
		return fmt.Errorf("list tables: %w", err)
	}

	present := make(map[string]bool, len(tables))
	for _, t := range tables {
		present[t] = true
	}
	for _, t := range []string{TableSummits, TableIndex, TableMeta} {
		if !present[t] {
			return fmt.Errorf("%w: table %s is missing", ErrSchemaMismatch, t)
		}
	}

	var columns []columnInfo
	if err := db.SelectContext(ctx, &columns, `PRAGMA table_info(summits)`); err != nil {
		return fmt.Errorf("describe summits: %w", err)
	}

	have := make(map[string]bool, len(columns))
	for _, c := range columns {
		have[c.Name] = true
	}
	for _, c := range RequiredSummitColumns {
		if !have[c] {
			return fmt.Errorf("%w: column summits.%s is missing", ErrSchemaMismatch, c)
		}
	}
	return nil
}

func readMeta(ctx context.Context, db *DB) (*BlobMeta, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.SelectContext(ctx, &rows, `SELECT key, value FROM meta`); err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Key] = r.Value
	}

	meta := &BlobMeta{SourceName: values[MetaSourceName]}

	version, err := strconv.Atoi(values[MetaSchemaVersion])
	if err != nil {
		return nil, fmt.Errorf("%w: bad schema_version %q", ErrSchemaMismatch, values[MetaSchemaVersion])
	}
	if version != SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported schema_version %d", ErrSchemaMismatch, version)
	}
	meta.SchemaVersion = version

	rowCount, err := strconv.Atoi(values[MetaRowCount])
	if err != nil {
		return nil, fmt.Errorf("%w: bad row_count %q", ErrSchemaMismatch, values[MetaRowCount])
	}
	meta.RowCount = rowCount

	if raw, ok := values[MetaBuiltAt]; ok {
		if builtAt, err := time.Parse(time.RFC3339, raw); err == nil {
			meta.BuiltAt = &builtAt
		}
	}

	return meta, nil
}
