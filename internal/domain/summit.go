package domain

import (
	"strings"

	"github.com/paulmach/orb"
)

// Summit - одна неизменяемая запись базы вершин
type Summit struct {
	ID          int64   `json:"id" db:"id"`
	Ref         string  `json:"ref" db:"ref"`
	Name        string  `json:"name" db:"name"`
	Lat         float64 `json:"lat" db:"lat"`
	Lon         float64 `json:"lon" db:"lon"`
	Altitude    int     `json:"altitude" db:"altitude"`
	Points      int     `json:"points" db:"points"`
	Activations int     `json:"activations" db:"activations"`
	Bonus       *int    `json:"bonus,omitempty" db:"bonus"`
	Association string  `json:"association" db:"association"`
	Region      string  `json:"region" db:"region"`
	ValidFrom   *string `json:"valid_from,omitempty" db:"valid_from"`
	ValidTo     *string `json:"valid_to,omitempty" db:"valid_to"`
}

// SpatialIndexEntry - вырожденный прямоугольник вершины (min == max), строка R*Tree индекса
type SpatialIndexEntry struct {
	ID     int64   `json:"id" db:"id"`
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MinLon float64 `json:"min_lon" db:"min_lon"`
	MaxLon float64 `json:"max_lon" db:"max_lon"`
}

// NewSpatialIndexEntry строит запись индекса для вершины
func NewSpatialIndexEntry(s *Summit) SpatialIndexEntry {
	return SpatialIndexEntry{
		ID:     s.ID,
		MinLat: s.Lat,
		MaxLat: s.Lat,
		MinLon: s.Lon,
		MaxLon: s.Lon,
	}
}

// Bound возвращает прямоугольник записи в координатах orb (lon, lat)
func (e SpatialIndexEntry) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{e.MinLon, e.MinLat},
		Max: orb.Point{e.MaxLon, e.MaxLat},
	}
}

// DistanceUnit - единица расстояния, которую выбирает вызывающий
type DistanceUnit string

const (
	UnitMeters     DistanceUnit = "m"
	UnitKilometers DistanceUnit = "km"
)

// Convert переводит метры в выбранную единицу
func (u DistanceUnit) Convert(meters float64) float64 {
	if u == UnitKilometers {
		return meters / 1000.0
	}
	return meters
}

// SummitWithDistance - результат поиска рядом; существует только во время запроса
type SummitWithDistance struct {
	Summit
	Distance         float64      `json:"distance"`
	DistanceUnit     DistanceUnit `json:"distance_unit"`
	Bearing          float64      `json:"bearing"`
	CardinalBearing  string       `json:"cardinal_bearing"`
	IsActivationZone bool         `json:"is_activation_zone"`
}

// SortKey - поле сортировки для постраничного поиска
type SortKey string

const (
	SortByName        SortKey = "name"
	SortByAltitude    SortKey = "altitude"
	SortByPoints      SortKey = "points"
	SortByActivations SortKey = "activations"
	SortByRef         SortKey = "ref"
)

// IsValid проверяет, что ключ сортировки поддерживается
func (k SortKey) IsValid() bool {
	switch k {
	case SortByName, SortByAltitude, SortByPoints, SortByActivations, SortByRef:
		return true
	}
	return false
}

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SummitFilter - независимые фильтры поиска, объединяемые через AND.
// Region учитывается только вместе с Association.
type SummitFilter struct {
	Association    string
	Region         string
	MinAltitude    *int
	MaxAltitude    *int
	MinPoints      *int
	MaxPoints      *int
	MinActivations *int
	Text           string
}

// Match проверяет вершину на соответствие фильтру
func (f SummitFilter) Match(s *Summit) bool {
	if f.Association != "" {
		if s.Association != f.Association {
			return false
		}
		if f.Region != "" && s.Region != f.Region {
			return false
		}
	}
	if f.MinAltitude != nil && s.Altitude < *f.MinAltitude {
		return false
	}
	if f.MaxAltitude != nil && s.Altitude > *f.MaxAltitude {
		return false
	}
	if f.MinPoints != nil && s.Points < *f.MinPoints {
		return false
	}
	if f.MaxPoints != nil && s.Points > *f.MaxPoints {
		return false
	}
	if f.MinActivations != nil && s.Activations < *f.MinActivations {
		return false
	}
	if f.Text != "" {
		text := strings.ToLower(f.Text)
		if !strings.Contains(strings.ToLower(s.Name), text) &&
			!strings.Contains(strings.ToLower(s.Ref), text) {
			return false
		}
	}
	return true
}

// NormalizeRef приводит пользовательский ввод к каноническому виду AA/BB-NNN
func NormalizeRef(ref string) string {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	ref = strings.NewReplacer("_", "/", "\\", "/", " ", "").Replace(ref)
	return ref
}
