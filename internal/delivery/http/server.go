package http

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/summit-locator/internal/config"
	"github.com/summit-locator/internal/delivery/http/handler"
	"github.com/summit-locator/internal/delivery/http/middleware"
	"github.com/summit-locator/internal/pkg/errors"
	"github.com/summit-locator/internal/pkg/metrics"
	"github.com/summit-locator/internal/pkg/utils"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	summitHandler   *handler.SummitHandler
	statsHandler    *handler.StatsHandler
	locationHandler *handler.LocationHandler
	datasetHandler  *handler.DatasetHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	summitHandler *handler.SummitHandler,
	statsHandler *handler.StatsHandler,
	locationHandler *handler.LocationHandler,
	datasetHandler *handler.DatasetHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "Summit Locator",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: cfg.Server.Env == "production",
		ErrorHandler:          customErrorHandler(logger),
	})

	s := &Server{
		app:             app,
		config:          cfg,
		logger:          logger,
		summitHandler:   summitHandler,
		statsHandler:    statsHandler,
		locationHandler: locationHandler,
		datasetHandler:  datasetHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	blobPath := s.config.Loader.BlobPath

	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.CORS())
	// блоб отдаётся как есть, иначе клиент не увидит Content-Length
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == blobPath
		},
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// DatabaseBlob по фиксированному пути
	s.app.Get(s.config.Loader.BlobPath, s.datasetHandler.ServeBlob)

	api := s.app.Group("/api/v1")

	api.Get("/health", s.datasetHandler.Health)

	// Summit routes
	api.Get("/summits", s.summitHandler.Search)
	api.Get("/summits/nearby", s.summitHandler.Nearby)
	api.Get("/summits/:association/:code", s.summitHandler.GetByRef)

	api.Get("/location", s.locationHandler.Describe)

	// Stats
	api.Get("/stats", s.statsHandler.GetStatistics)

	admin := api.Group("/admin")
	admin.Post("/refresh", s.datasetHandler.Refresh)
}

// App возвращает fiber-приложение (для тестов через app.Test)
func (s *Server) App() *fiber.App {
	return s.app
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return utils.SendError(c, appErr)
		}

		code := fiber.StatusInternalServerError
		var fiberErr *fiber.Error
		if stderrors.As(err, &fiberErr) {
			code = fiberErr.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		errCode := "INTERNAL_SERVER_ERROR"
		if code == fiber.StatusNotFound {
			errCode = "NOT_FOUND"
		}

		return c.Status(code).JSON(utils.ErrorResponse{
			Error: errors.New(errCode, err.Error(), code),
		})
	}
}
