package main

// @title Summit Locator API
// @version 1.0.0
// @description Офлайн-база вершин для радиолюбительских активаций.
// @description
// @description Основные возможности:
// @description - Поиск вершин в радиусе от точки, с отметкой зоны активации
// @description - Точный поиск по коду вершины и поиск с фильтрами
// @description - Maidenhead-локатор и geohash произвольной точки
// @description - Раздача единого файла базы (DatabaseBlob)

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/summit-locator/docs"
	"github.com/summit-locator/internal/config"
	httpDelivery "github.com/summit-locator/internal/delivery/http"
	"github.com/summit-locator/internal/delivery/http/handler"
	"github.com/summit-locator/internal/domain/repository"
	"github.com/summit-locator/internal/infrastructure/blobfetch"
	"github.com/summit-locator/internal/loader"
	"github.com/summit-locator/internal/pkg/logger"
	"github.com/summit-locator/internal/repository/cache"
	"github.com/summit-locator/internal/repository/filecache"
	redisRepo "github.com/summit-locator/internal/repository/redis"
	"github.com/summit-locator/internal/usecase"
	"github.com/summit-locator/internal/worker"
	"github.com/summit-locator/internal/worker/dataset"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Summit Locator")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("blob_source", cfg.Loader.BaseURL+cfg.Loader.BlobPath),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("worker_enabled", cfg.Worker.Enabled),
	)

	// 3. Connect to Redis (только если он нужен кешу или воркеру)
	var redisClient *cache.Redis
	if cfg.Cache.Backend == config.CacheBackendRedis || cfg.Worker.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
	}

	// 4. Blob cache and fetcher
	var blobCache repository.BlobCache
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		blobCache = cache.NewBlobCache(cache.NewCacheRepository(redisClient), cfg.Cache.RedisKey, log)
	case config.CacheBackendNone:
		blobCache = cache.NewNoopBlobCache()
	default:
		blobCache = filecache.NewBlobCache(cfg.Cache.Dir, cfg.Cache.BlobName, log)
	}

	fetcher, err := blobfetch.NewClient(&cfg.Loader, log)
	if err != nil {
		log.Fatal("Failed to initialize blob fetcher", zap.Error(err))
	}

	// 5. Loader владеет Store на весь процесс
	summitLoader := loader.New(blobCache, fetcher, log, loader.WithProgress(progressLogger(log)))

	// 6. Initialize Use Cases
	summitUC := usecase.NewSummitUseCase(summitLoader, cfg.Search, log)

	log.Info("Use cases initialized")

	// 7. Initialize HTTP Handlers
	summitHandler := handler.NewSummitHandler(summitUC, log)
	statsHandler := handler.NewStatsHandler(summitUC, log)
	locationHandler := handler.NewLocationHandler(summitUC, log)
	datasetHandler := handler.NewDatasetHandler(summitLoader, cfg.Server.BlobFile, log)

	// 8. Initialize HTTP Server
	server := httpDelivery.NewServer(
		cfg,
		log,
		summitHandler,
		statsHandler,
		locationHandler,
		datasetHandler,
	)

	log.Info("HTTP server initialized")

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Прогрев базы; при неудаче первый запрос попробует снова
	go func() {
		st, err := summitLoader.EnsureLoaded(context.Background())
		if err != nil {
			log.Warn("Summit store is not loaded yet", zap.Error(err))
			return
		}
		log.Info("Summit store ready", zap.Int("summits", st.Count()))
	}()

	// 11. Dataset refresh worker
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var workerManager *worker.WorkerManager
	if cfg.Worker.Enabled {
		streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
		refreshWorker := dataset.NewRefreshWorker(
			streamRepo,
			summitLoader,
			cfg.Worker.Stream,
			cfg.Worker.ConsumerGroup,
			cfg.Worker.MaxRetries,
			cfg.Worker.StreamReadTimeout,
			log,
		)

		workerManager = worker.NewWorkerManager(log)
		workerManager.Register(refreshWorker)
		if err := workerManager.Start(ctx); err != nil {
			log.Fatal("Failed to start workers", zap.Error(err))
		}
	}

	// 12. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")
	cancel()

	if workerManager != nil {
		if err := workerManager.Stop(); err != nil {
			log.Error("Error stopping workers", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}

// progressLogger пишет прогресс загрузки блоба не чаще, чем раз в 10%
func progressLogger(log *zap.Logger) repository.ProgressFunc {
	lastDecile := int64(-1)
	return func(loaded, total int64) {
		if total <= 0 {
			log.Debug("Downloading summit database", zap.Int64("loaded_bytes", loaded))
			return
		}
		decile := loaded * 10 / total
		if decile == lastDecile {
			return
		}
		lastDecile = decile
		log.Info("Downloading summit database",
			zap.Int64("loaded_bytes", loaded),
			zap.Int64("total_bytes", total),
			zap.Int64("percent", decile*10))
	}
}
