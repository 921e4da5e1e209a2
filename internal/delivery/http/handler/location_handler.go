package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/summit-locator/internal/pkg/errors"
	"github.com/summit-locator/internal/pkg/utils"
	"github.com/summit-locator/internal/usecase"
	"github.com/summit-locator/internal/usecase/dto"
	"go.uber.org/zap"
)

// LocationHandler - метаданные произвольной точки
type LocationHandler struct {
	summitUC *usecase.SummitUseCase
	logger   *zap.Logger
}

func NewLocationHandler(summitUC *usecase.SummitUseCase, logger *zap.Logger) *LocationHandler {
	return &LocationHandler{
		summitUC: summitUC,
		logger:   logger,
	}
}

// Describe godoc
// @Summary Локатор и ближайшая вершина
// @Description Maidenhead-локатор, geohash и ближайшая вершина. Без базы возвращаются только обозначения точки.
// @Tags Location
// @Produce json
// @Param lat query number true "Широта"
// @Param lon query number true "Долгота"
// @Success 200 {object} utils.SuccessResponse{data=dto.LocationResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/location [get]
func (h *LocationHandler) Describe(c *fiber.Ctx) error {
	if c.Query("lat") == "" || c.Query("lon") == "" {
		return utils.SendError(c, errors.ErrInvalidCoordinates)
	}

	var req dto.LocationRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates)
	}

	result, err := h.summitUC.DescribeLocation(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}
