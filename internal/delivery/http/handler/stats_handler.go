package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/summit-locator/internal/pkg/utils"
	"github.com/summit-locator/internal/usecase"
	"go.uber.org/zap"
)

// StatsHandler обрабатывает запросы для статистики
type StatsHandler struct {
	summitUC *usecase.SummitUseCase
	logger   *zap.Logger
}

// NewStatsHandler создает новый экземпляр StatsHandler
func NewStatsHandler(summitUC *usecase.SummitUseCase, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		summitUC: summitUC,
		logger:   logger,
	}
}

// GetStatistics godoc
// @Summary Get summit statistics
// @Description Число вершин всего и по ассоциациям, версия и время сборки базы
// @Tags Statistics
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.Statistics}
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/stats [get]
func (h *StatsHandler) GetStatistics(c *fiber.Ctx) error {
	h.logger.Debug("Handling get statistics request")

	stats, err := h.summitUC.GetStats(c.Context())
	if err != nil {
		h.logger.Error("Failed to get statistics", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, stats, nil)
}
