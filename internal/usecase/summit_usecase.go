package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/summit-locator/internal/config"
	"github.com/summit-locator/internal/domain"
	"github.com/summit-locator/internal/pkg/errors"
	"github.com/summit-locator/internal/pkg/metrics"
	"github.com/summit-locator/internal/pkg/utils"
	"github.com/summit-locator/internal/pkg/validator"
	"github.com/summit-locator/internal/store"
	"github.com/summit-locator/internal/usecase/dto"
)

const (
	// допуски зоны активации: 25 м по высоте от вершины и 500 м по горизонтали
	ActivationZoneVerticalM   = 25.0
	ActivationZoneHorizontalM = 500.0
)

// StoreProvider отдаёт загруженный Store, загружая его при первом обращении
type StoreProvider interface {
	EnsureLoaded(ctx context.Context) (*store.Store, error)
}

// SummitUseCase - use case для запросов к базе вершин
type SummitUseCase struct {
	stores StoreProvider
	cfg    config.SearchConfig
	logger *zap.Logger
}

// NewSummitUseCase - создание нового SummitUseCase
func NewSummitUseCase(stores StoreProvider, cfg config.SearchConfig, logger *zap.Logger) *SummitUseCase {
	return &SummitUseCase{
		stores: stores,
		cfg:    cfg,
		logger: logger,
	}
}

func (uc *SummitUseCase) loadStore(ctx context.Context) (*store.Store, error) {
	st, err := uc.stores.EnsureLoaded(ctx)
	if err != nil {
		uc.logger.Error("Summit store unavailable", zap.Error(err))
		metrics.StoreUnavailableTotal.Inc()
		return nil, errors.ErrStoreUnavailable
	}
	return st, nil
}

// FindNearby - вершины в радиусе radiusKm по возрастанию расстояния.
// Индекс отсекает кандидатов прямоугольником, затем отбрасываются те, кто дальше radiusKm.
func (uc *SummitUseCase) FindNearby(ctx context.Context, req dto.NearbyRequest) (*dto.NearbyResponse, error) {
	if !utils.ValidateCoordinates(req.Lat, req.Lon) {
		return nil, errors.ErrInvalidCoordinates
	}
	if !utils.ValidateRadius(req.RadiusKm, uc.cfg.MaxRadiusKm) {
		return nil, errors.ErrInvalidRadius.WithDetails(map[string]interface{}{
			"max_radius_km": uc.cfg.MaxRadiusKm,
		})
	}

	limit := req.Limit
	if limit <= 0 {
		limit = uc.cfg.NearbyDefaultLimit
	}
	if uc.cfg.NearbyMaxLimit > 0 && limit > uc.cfg.NearbyMaxLimit {
		limit = uc.cfg.NearbyMaxLimit
	}

	unit := domain.DistanceUnit(req.Unit)
	if unit != domain.UnitKilometers {
		unit = domain.UnitMeters
	}

	st, err := uc.loadStore(ctx)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	results := nearby(st, req.Lat, req.Lon, req.RadiusKm, limit)
	for i := range results {
		results[i].DistanceUnit = unit
		meters := results[i].Distance
		if req.Altitude != nil {
			results[i].IsActivationZone = inActivationZone(meters, *req.Altitude, results[i].Altitude)
		}
		results[i].Distance = unit.Convert(meters)
	}
	observe(metrics.QueryNearby, started, len(results))

	uc.logger.Debug("Nearby search",
		zap.Float64("lat", req.Lat),
		zap.Float64("lon", req.Lon),
		zap.Float64("radius_km", req.RadiusKm),
		zap.Int("results", len(results)))

	return &dto.NearbyResponse{
		Origin:  origin(req.Lat, req.Lon),
		Summits: results,
	}, nil
}

// nearby возвращает до limit вершин не дальше radiusKm; Distance в метрах
func nearby(st *store.Store, lat, lon, radiusKm float64, limit int) []domain.SummitWithDistance {
	radiusM := radiusKm * 1000
	candidates := st.Intersecting(utils.SearchBounds(lat, lon, radiusKm)...)

	results := make([]domain.SummitWithDistance, 0, len(candidates))
	for _, s := range candidates {
		d := utils.Distance(lat, lon, s.Lat, s.Lon)
		if d > radiusM {
			continue
		}
		bearing := utils.Bearing(lat, lon, s.Lat, s.Lon)
		results = append(results, domain.SummitWithDistance{
			Summit:          s,
			Distance:        d,
			Bearing:         bearing,
			CardinalBearing: utils.Cardinal(bearing),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Ref < results[j].Ref
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func inActivationZone(distanceM, observerAltitude float64, summitAltitude int) bool {
	return distanceM <= ActivationZoneHorizontalM &&
		math.Abs(observerAltitude-float64(summitAltitude)) <= ActivationZoneVerticalM
}

// FindByRef - точный поиск по коду; неверный формат кода - это "не найдено"
func (uc *SummitUseCase) FindByRef(ctx context.Context, ref string) (*domain.Summit, error) {
	ref = domain.NormalizeRef(ref)

	st, err := uc.loadStore(ctx)
	if err != nil {
		return nil, err
	}

	if !validator.IsSummitRef(ref) {
		observe(metrics.QueryByRef, time.Now(), 0)
		return nil, errors.ErrSummitNotFound
	}

	started := time.Now()
	s, ok := st.FindByRef(ref)
	if !ok {
		observe(metrics.QueryByRef, started, 0)
		return nil, errors.ErrSummitNotFound
	}
	observe(metrics.QueryByRef, started, 1)
	return s, nil
}

// Search - постраничный поиск с фильтрами, объединёнными через AND
func (uc *SummitUseCase) Search(ctx context.Context, req dto.SummitSearchRequest) (*dto.SummitSearchResponse, error) {
	st, err := uc.loadStore(ctx)
	if err != nil {
		return nil, err
	}

	pageSize := uc.cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	key := domain.SortKey(req.Sort)
	if !key.IsValid() {
		key = domain.SortByName
	}
	dir := domain.SortAsc
	if domain.SortDirection(req.Order) == domain.SortDesc {
		dir = domain.SortDesc
	}

	filter := domain.SummitFilter{
		Association:    req.Association,
		Region:         req.Region,
		MinAltitude:    req.MinAltitude,
		MaxAltitude:    req.MaxAltitude,
		MinPoints:      req.MinPoints,
		MaxPoints:      req.MaxPoints,
		MinActivations: req.MinActivations,
		Text:           req.Query,
	}

	// страница за пределами int даёт пустой результат, а не переполнение в отрицательный offset
	offset := math.MaxInt
	if page-1 <= math.MaxInt/pageSize {
		offset = (page - 1) * pageSize
	}

	started := time.Now()
	summits, total := st.Scan(filter.Match, key, dir, offset, pageSize)
	observe(metrics.QuerySearch, started, total)

	return &dto.SummitSearchResponse{
		Summits:  summits,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    (total + pageSize - 1) / pageSize,
	}, nil
}

// GetStats - агрегаты по загруженной базе, без повторного сканирования
func (uc *SummitUseCase) GetStats(ctx context.Context) (*domain.Statistics, error) {
	st, err := uc.loadStore(ctx)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	stats := st.Stats()
	observe(metrics.QueryStats, started, stats.TotalSummits)
	return &stats, nil
}

// DescribeLocation - локатор и geohash точки плюс ближайшая вершина в пределах MaxRadiusKm.
// Без базы возвращаются только обозначения точки.
func (uc *SummitUseCase) DescribeLocation(ctx context.Context, req dto.LocationRequest) (*dto.LocationResponse, error) {
	if !utils.ValidateCoordinates(req.Lat, req.Lon) {
		return nil, errors.ErrInvalidCoordinates
	}

	resp := &dto.LocationResponse{Origin: origin(req.Lat, req.Lon)}

	st, err := uc.loadStore(ctx)
	if err != nil {
		return resp, nil
	}
	resp.StoreAvailable = true

	started := time.Now()
	found := nearby(st, req.Lat, req.Lon, uc.cfg.MaxRadiusKm, 1)
	observe(metrics.QueryLocation, started, len(found))
	if len(found) > 0 {
		nearest := found[0]
		nearest.DistanceUnit = domain.UnitMeters
		resp.NearestSummit = &nearest
	}

	return resp, nil
}

func origin(lat, lon float64) dto.Origin {
	return dto.Origin{
		Lat:         lat,
		Lon:         lon,
		GridLocator: utils.GridLocator(lat, lon),
		Geohash:     utils.Geohash(lat, lon, utils.GeohashPrecision),
	}
}

// observe учитывает запрос: счётчик, длительность (без загрузки Store) и пустой результат
func observe(kind string, started time.Time, found int) {
	metrics.QueriesTotal.WithLabelValues(kind).Inc()
	metrics.QueryDurationMs.WithLabelValues(kind).Observe(float64(time.Since(started).Microseconds()) / 1000)
	if found == 0 {
		metrics.EmptyResultsTotal.WithLabelValues(kind).Inc()
	}
}
