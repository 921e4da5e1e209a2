package dto

import "github.com/summit-locator/internal/domain"

// NearbyRequest - поиск вершин в радиусе от точки
type NearbyRequest struct {
	Lat      float64  `query:"lat"`
	Lon      float64  `query:"lon"`
	RadiusKm float64  `query:"radius_km"`
	Limit    int      `query:"limit" validate:"omitempty,min=1"`
	Unit     string   `query:"unit" validate:"omitempty,oneof=m km"`
	Altitude *float64 `query:"altitude"`
}

// NearbyResponse - вершины по возрастанию расстояния
type NearbyResponse struct {
	Origin  Origin                      `json:"origin"`
	Summits []domain.SummitWithDistance `json:"summits"`
}

// Origin - точка запроса с её обозначениями
type Origin struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	GridLocator string  `json:"grid_locator"`
	Geohash     string  `json:"geohash"`
}

// SummitSearchRequest - постраничный поиск с фильтрами.
// Значения вне допустимых диапазонов не ошибка: они просто ничего не находят.
type SummitSearchRequest struct {
	Association    string `query:"association"`
	Region         string `query:"region"`
	MinAltitude    *int   `query:"min_altitude"`
	MaxAltitude    *int   `query:"max_altitude"`
	MinPoints      *int   `query:"min_points"`
	MaxPoints      *int   `query:"max_points"`
	MinActivations *int   `query:"min_activations"`
	Query          string `query:"q" validate:"max=100"`
	Sort           string `query:"sort" validate:"omitempty,oneof=name altitude points activations ref"`
	Order          string `query:"order" validate:"omitempty,oneof=asc desc"`
	Page           int    `query:"page"`
}

// SummitSearchResponse - страница результатов и общее число совпадений
type SummitSearchResponse struct {
	Summits  []domain.Summit `json:"summits"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	Pages    int             `json:"pages"`
}

// LocationRequest - метаданные произвольной точки
type LocationRequest struct {
	Lat float64 `query:"lat" validate:"min=-90,max=90"`
	Lon float64 `query:"lon" validate:"min=-180,max=180"`
}

// LocationResponse - локатор, geohash и ближайшая вершина (если база доступна)
type LocationResponse struct {
	Origin         Origin                     `json:"origin"`
	NearestSummit  *domain.SummitWithDistance `json:"nearest_summit,omitempty"`
	StoreAvailable bool                       `json:"store_available"`
}
