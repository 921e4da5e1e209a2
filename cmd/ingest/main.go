package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/summit-locator/internal/config"
	"github.com/summit-locator/internal/ingest"
	"github.com/summit-locator/internal/pkg/logger"
	"github.com/summit-locator/internal/repository/cache"
	redisRepo "github.com/summit-locator/internal/repository/redis"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	flags := pflag.NewFlagSet("ingest", pflag.ExitOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ingest [flags] [source.csv]\n\nBuilds the summit database file from the summits list.\n\n")
		flags.PrintDefaults()
	}
	output := flags.StringP("output", "o", cfg.Ingest.Output, "path of the database file to write")
	batchSize := flags.IntP("batch-size", "b", cfg.Ingest.BatchSize, "rows per insert transaction")
	top := flags.Int("top", cfg.Ingest.TopGroups, "associations to list in the summary")
	notify := flags.Bool("notify", false, "publish a dataset update event to Redis after a successful build")
	logLevel := flags.String("log-level", cfg.Log.Level, "log level (debug, info, warn, error)")
	_ = flags.Parse(os.Args[1:])

	source := cfg.Ingest.Source
	if flags.NArg() > 0 {
		source = flags.Arg(0)
	}

	log, err := logger.NewCLI(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting ingestion",
		zap.String("source", source),
		zap.String("output", *output),
		zap.Int("batch_size", *batchSize))

	report, err := ingest.NewPipeline(log).Run(ctx, ingest.Options{
		SourcePath: source,
		OutputPath: *output,
		BatchSize:  *batchSize,
		TopGroups:  *top,
	})
	if err != nil {
		log.Error("Ingestion failed", zap.Error(err))
		os.Exit(1)
	}

	report.Print(os.Stdout)

	if *notify {
		if err := publishUpdate(ctx, cfg, report, log); err != nil {
			log.Error("Failed to publish dataset update", zap.Error(err))
			os.Exit(1)
		}
	}
}

// publishUpdate сообщает работающим сервисам о новой сборке базы
func publishUpdate(ctx context.Context, cfg *config.Config, report *ingest.Report, log *zap.Logger) error {
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	event := report.Event(time.Now().UTC())
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	if err := streamRepo.PublishToStream(ctx, cfg.Worker.Stream, event); err != nil {
		return err
	}

	log.Info("Dataset update published",
		zap.String("stream", cfg.Worker.Stream),
		zap.String("version", event.Version),
		zap.String("event_id", event.ID.String()))
	return nil
}
