package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/summit-locator/internal/pkg/errors"
	"github.com/summit-locator/internal/pkg/utils"
	"github.com/summit-locator/internal/pkg/validator"
	"github.com/summit-locator/internal/usecase"
	"github.com/summit-locator/internal/usecase/dto"
	"go.uber.org/zap"
)

// SummitHandler - обработчик запросов к базе вершин
type SummitHandler struct {
	summitUC *usecase.SummitUseCase
	logger   *zap.Logger
}

// NewSummitHandler - создание нового SummitHandler
func NewSummitHandler(summitUC *usecase.SummitUseCase, logger *zap.Logger) *SummitHandler {
	return &SummitHandler{
		summitUC: summitUC,
		logger:   logger,
	}
}

// Nearby godoc
// @Summary Вершины в радиусе от точки
// @Description Возвращает вершины не дальше radius_km от точки, по возрастанию расстояния. С altitude отмечается зона активации.
// @Tags Summits
// @Produce json
// @Param lat query number true "Широта"
// @Param lon query number true "Долгота"
// @Param radius_km query number true "Радиус поиска, км"
// @Param limit query int false "Максимум результатов" default(20)
// @Param unit query string false "Единица расстояния (m, km)" default(m)
// @Param altitude query number false "Высота наблюдателя, м"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/summits/nearby [get]
func (h *SummitHandler) Nearby(c *fiber.Ctx) error {
	start := time.Now()

	if c.Query("lat") == "" || c.Query("lon") == "" {
		return utils.SendError(c, errors.ErrInvalidCoordinates)
	}

	var req dto.NearbyRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, invalidRequest(err))
	}

	result, err := h.summitUC.FindNearby(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    len(result.Summits),
		TimeMSec: float64(time.Since(start).Microseconds()) / 1000,
	})
}

// GetByRef godoc
// @Summary Вершина по коду
// @Description Точный поиск по коду AA/BB-NNN. Регистр и разделитель нормализуются.
// @Tags Summits
// @Produce json
// @Param association path string true "Ассоциация, например JA"
// @Param code path string true "Регион и номер, например NS-001"
// @Success 200 {object} utils.SuccessResponse{data=domain.Summit}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/summits/{association}/{code} [get]
func (h *SummitHandler) GetByRef(c *fiber.Ctx) error {
	ref := c.Params("association") + "/" + c.Params("code")

	summit, err := h.summitUC.FindByRef(c.Context(), ref)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, summit, nil)
}

// Search godoc
// @Summary Поиск вершин с фильтрами
// @Description Фильтры объединяются через AND; region учитывается только вместе с association. Размер страницы фиксирован.
// @Tags Summits
// @Produce json
// @Param association query string false "Ассоциация"
// @Param region query string false "Регион (только с association)"
// @Param min_altitude query int false "Минимальная высота, м"
// @Param max_altitude query int false "Максимальная высота, м"
// @Param min_points query int false "Минимум очков"
// @Param max_points query int false "Максимум очков"
// @Param min_activations query int false "Минимум активаций"
// @Param q query string false "Подстрока в названии или коде"
// @Param sort query string false "Поле сортировки (name, altitude, points, activations, ref)" default(name)
// @Param order query string false "Направление (asc, desc)" default(asc)
// @Param page query int false "Номер страницы" default(1)
// @Success 200 {object} utils.SuccessResponse{data=dto.SummitSearchResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/summits [get]
func (h *SummitHandler) Search(c *fiber.Ctx) error {
	var req dto.SummitSearchRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, invalidRequest(err))
	}

	result, err := h.summitUC.Search(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: result.Total,
		Page:  result.Page,
		Limit: result.PageSize,
		Pages: result.Pages,
	})
}

func invalidRequest(err error) *errors.AppError {
	return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
		"validation": err.Error(),
	})
}
