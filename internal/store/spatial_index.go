package store

import (
	"sort"

	"github.com/paulmach/orb"
	"github.com/summit-locator/internal/domain"
)

// SpatialIndex - грубый индекс прямоугольников в памяти.
// Записи отсортированы по MinLat; запрос бинарным поиском находит полосу широт
// и проверяет пересечение только внутри неё.
type SpatialIndex struct {
	entries    []indexedBound
	maxLatSpan float64
}

type indexedBound struct {
	id    int64
	bound orb.Bound
}

// NewSpatialIndex строит индекс из записей блоба
func NewSpatialIndex(entries []domain.SpatialIndexEntry) *SpatialIndex {
	idx := &SpatialIndex{entries: make([]indexedBound, 0, len(entries))}
	for _, e := range entries {
		b := e.Bound()
		if span := b.Max.Lat() - b.Min.Lat(); span > idx.maxLatSpan {
			idx.maxLatSpan = span
		}
		idx.entries = append(idx.entries, indexedBound{id: e.ID, bound: b})
	}

	sort.Slice(idx.entries, func(i, j int) bool {
		a, b := idx.entries[i], idx.entries[j]
		if a.bound.Min.Lat() != b.bound.Min.Lat() {
			return a.bound.Min.Lat() < b.bound.Min.Lat()
		}
		return a.id < b.id
	})

	return idx
}

// Len возвращает число записей индекса
func (idx *SpatialIndex) Len() int {
	return len(idx.entries)
}

// Search вызывает fn для id каждой записи, пересекающей query (границы включительно)
func (idx *SpatialIndex) Search(query orb.Bound, fn func(id int64)) {
	lower := query.Min.Lat() - idx.maxLatSpan
	start := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].bound.Min.Lat() >= lower
	})

	for i := start; i < len(idx.entries); i++ {
		e := idx.entries[i]
		if e.bound.Min.Lat() > query.Max.Lat() {
			break
		}
		if e.bound.Intersects(query) {
			fn(e.id)
		}
	}
}
