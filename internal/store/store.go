package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/summit-locator/internal/domain"
	"github.com/summit-locator/internal/repository/sqlite"
	"go.uber.org/zap"
)

// sqliteHeader - первые 16 байт любого файла SQLite
var sqliteHeader = []byte("SQLite format 3\x00")

// Store - неизменяемая таблица вершин и пространственный индекс над ней.
// После Load ничего не изменяется, поэтому конкурентное чтение безопасно без блокировок.
type Store struct {
	summits  []domain.Summit
	byRef    map[string]int
	byID     map[int64]int
	index    *SpatialIndex
	meta     sqlite.BlobMeta
	stats    domain.Statistics
	loadedAt time.Time
}

// Predicate отбирает вершины при сканировании
type Predicate func(s *domain.Summit) bool

// Load декодирует DatabaseBlob. Ошибки формата возвращаются как *CorruptBlobError.
func Load(ctx context.Context, blob []byte, logger *zap.Logger) (*Store, error) {
	if len(blob) < len(sqliteHeader) || !bytes.Equal(blob[:len(sqliteHeader)], sqliteHeader) {
		return nil, corrupt("not a database file", nil)
	}

	// модуль SQLite читает только файлы, поэтому блоб временно кладётся на диск
	f, err := os.CreateTemp("", "summits-*.db")
	if err != nil {
		return nil, fmt.Errorf("create temp blob: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(blob); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write temp blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close temp blob: %w", err)
	}

	db, err := sqlite.Open(ctx, path, logger)
	if err != nil {
		return nil, corrupt("open", err)
	}
	defer db.Close()

	snap, err := sqlite.ReadSnapshot(ctx, db)
	if err != nil {
		return nil, corrupt("decode", err)
	}

	st, err := FromSnapshot(snap)
	if err != nil {
		return nil, err
	}

	logger.Info("Summit store loaded",
		zap.Int("summits", st.Count()),
		zap.Int("blob_bytes", len(blob)),
		zap.String("source", snap.Meta.SourceName))

	return st, nil
}

// FromSnapshot строит Store из прочитанного блоба и проверяет его согласованность
func FromSnapshot(snap *sqlite.Snapshot) (*Store, error) {
	if snap.Meta.RowCount != len(snap.Summits) {
		return nil, corrupt(fmt.Sprintf("row count mismatch: declared %d, decoded %d",
			snap.Meta.RowCount, len(snap.Summits)), nil)
	}
	if len(snap.Index) != len(snap.Summits) {
		return nil, corrupt(fmt.Sprintf("index size mismatch: %d entries for %d summits",
			len(snap.Index), len(snap.Summits)), nil)
	}

	st := &Store{
		summits:  snap.Summits,
		byRef:    make(map[string]int, len(snap.Summits)),
		byID:     make(map[int64]int, len(snap.Summits)),
		meta:     snap.Meta,
		loadedAt: time.Now(),
	}

	for i := range st.summits {
		s := &st.summits[i]
		if _, dup := st.byRef[s.Ref]; dup {
			return nil, corrupt(fmt.Sprintf("duplicate ref %s", s.Ref), nil)
		}
		st.byRef[s.Ref] = i
		st.byID[s.ID] = i
	}
	for _, e := range snap.Index {
		if _, ok := st.byID[e.ID]; !ok {
			return nil, corrupt(fmt.Sprintf("index entry %d has no summit", e.ID), nil)
		}
	}

	st.index = NewSpatialIndex(snap.Index)
	st.stats = computeStats(st.summits, snap.Meta, st.loadedAt)

	return st, nil
}

// FindByRef - точное совпадение по каноническому коду
func (st *Store) FindByRef(ref string) (*domain.Summit, bool) {
	i, ok := st.byRef[ref]
	if !ok {
		return nil, false
	}
	s := st.summits[i]
	return &s, true
}

// FindByID - поиск по внутреннему id; используется при соединении с индексом
func (st *Store) FindByID(id int64) (*domain.Summit, bool) {
	i, ok := st.byID[id]
	if !ok {
		return nil, false
	}
	s := st.summits[i]
	return &s, true
}

// Count возвращает число вершин
func (st *Store) Count() int {
	return len(st.summits)
}

// Meta возвращает метаданные блоба
func (st *Store) Meta() sqlite.BlobMeta {
	return st.meta
}

// LoadedAt - момент декодирования блоба
func (st *Store) LoadedAt() time.Time {
	return st.loadedAt
}

// Intersecting возвращает вершины, чьи прямоугольники пересекают хотя бы один из bounds.
// Каждая вершина встречается не более одного раза.
func (st *Store) Intersecting(bounds ...orb.Bound) []domain.Summit {
	seen := make(map[int64]struct{})
	var out []domain.Summit

	for _, b := range bounds {
		st.index.Search(b, func(id int64) {
			if _, dup := seen[id]; dup {
				return
			}
			seen[id] = struct{}{}
			out = append(out, st.summits[st.byID[id]])
		})
	}
	return out
}

// Scan фильтрует, сортирует и режет таблицу на страницу.
// total - число совпадений до пагинации; limit <= 0 означает "все".
// При равенстве ключа порядок определяется ref, поэтому страницы стабильны.
func (st *Store) Scan(pred Predicate, key domain.SortKey, dir domain.SortDirection, offset, limit int) ([]domain.Summit, int) {
	matched := make([]int, 0, 64)
	for i := range st.summits {
		if pred == nil || pred(&st.summits[i]) {
			matched = append(matched, i)
		}
	}

	less := lessFunc(key)
	desc := dir == domain.SortDesc
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := &st.summits[matched[i]], &st.summits[matched[j]]
		if c := less(a, b); c != 0 {
			if desc {
				return c > 0
			}
			return c < 0
		}
		return a.Ref < b.Ref
	})

	total := len(matched)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Summit{}, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	page := make([]domain.Summit, 0, end-offset)
	for _, i := range matched[offset:end] {
		page = append(page, st.summits[i])
	}
	return page, total
}

// Stats - агрегаты, посчитанные при загрузке
func (st *Store) Stats() domain.Statistics {
	stats := st.stats
	stats.PerAssociation = make(map[string]int, len(st.stats.PerAssociation))
	for k, v := range st.stats.PerAssociation {
		stats.PerAssociation[k] = v
	}
	stats.TopAssociation = append([]domain.AssociationCount(nil), st.stats.TopAssociation...)
	return stats
}

func lessFunc(key domain.SortKey) func(a, b *domain.Summit) int {
	switch key {
	case domain.SortByAltitude:
		return func(a, b *domain.Summit) int { return a.Altitude - b.Altitude }
	case domain.SortByPoints:
		return func(a, b *domain.Summit) int { return a.Points - b.Points }
	case domain.SortByActivations:
		return func(a, b *domain.Summit) int { return a.Activations - b.Activations }
	case domain.SortByRef:
		return func(a, b *domain.Summit) int { return strings.Compare(a.Ref, b.Ref) }
	default:
		return func(a, b *domain.Summit) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	}
}

func computeStats(summits []domain.Summit, meta sqlite.BlobMeta, loadedAt time.Time) domain.Statistics {
	per := make(map[string]int)
	for i := range summits {
		per[summits[i].Association]++
	}

	top := make([]domain.AssociationCount, 0, len(per))
	for assoc, n := range per {
		top = append(top, domain.AssociationCount{Association: assoc, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Association < top[j].Association
	})

	return domain.Statistics{
		TotalSummits:   len(summits),
		PerAssociation: per,
		TopAssociation: top,
		SchemaVersion:  meta.SchemaVersion,
		BuiltAt:        meta.BuiltAt,
		LoadedAt:       loadedAt,
	}
}
