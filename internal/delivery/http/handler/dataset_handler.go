package handler

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/summit-locator/internal/loader"
	"github.com/summit-locator/internal/pkg/errors"
	"github.com/summit-locator/internal/pkg/utils"
	"github.com/summit-locator/internal/store"
	"go.uber.org/zap"
)

// DatasetLoader - то, что нужно обработчику от загрузчика базы
type DatasetLoader interface {
	Refresh(ctx context.Context) (*store.Store, error)
	Status() loader.Status
}

// DatasetHandler раздаёт блоб, отвечает на health-проверку и перезагружает базу
type DatasetHandler struct {
	loader   DatasetLoader
	blobFile string
	logger   *zap.Logger
}

func NewDatasetHandler(l DatasetLoader, blobFile string, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{
		loader:   l,
		blobFile: blobFile,
		logger:   logger,
	}
}

// ServeBlob godoc
// @Summary DatabaseBlob
// @Description Единый файл базы вершин по фиксированному пути, с Content-Length для индикатора загрузки
// @Tags Dataset
// @Produce octet-stream
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponse
// @Router /data/summits.db [get]
func (h *DatasetHandler) ServeBlob(c *fiber.Ctx) error {
	info, err := os.Stat(h.blobFile)
	if err != nil || info.IsDir() {
		h.logger.Warn("Dataset file is not available", zap.String("path", h.blobFile), zap.Error(err))
		return utils.SendError(c, errors.ErrDatasetNotFound)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.sqlite3")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.SendFile(h.blobFile)
}

// Health godoc
// @Summary Health check
// @Description Живость сервиса и состояние базы вершин
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/health [get]
func (h *DatasetHandler) Health(c *fiber.Ctx) error {
	status := h.loader.Status()

	store := fiber.Map{
		"loaded":     status.Loaded,
		"summits":    status.Summits,
		"from_cache": status.FromCache,
	}
	if status.Loaded {
		store["loaded_at"] = status.LoadedAt
	}
	if status.LastError != "" {
		store["last_error"] = status.LastError
	}

	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now(),
		"store":  store,
	})
}

// Refresh godoc
// @Summary Перезагрузить базу
// @Description Очищает кеш блоба и загружает его заново. При неудаче продолжает работать прежняя база.
// @Tags Dataset
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/admin/refresh [post]
func (h *DatasetHandler) Refresh(c *fiber.Ctx) error {
	st, err := h.loader.Refresh(c.Context())
	if err != nil {
		h.logger.Error("Dataset refresh failed", zap.Error(err))
		return utils.SendError(c, errors.ErrRefreshFailed.WithDetails(map[string]interface{}{
			"reason": err.Error(),
		}))
	}

	return utils.SendSuccess(c, fiber.Map{
		"summits":   st.Count(),
		"loaded_at": st.LoadedAt(),
	}, nil)
}
