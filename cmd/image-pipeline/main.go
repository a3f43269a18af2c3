package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/batchpix/image-pipeline/internal/config"
	"github.com/batchpix/image-pipeline/internal/infra/kafka/consumer"
	"github.com/batchpix/image-pipeline/internal/infra/kafka/producer"
	batchmsg "github.com/batchpix/image-pipeline/internal/kafka/handlers/batch"
	"github.com/batchpix/image-pipeline/internal/model"
	runrepo "github.com/batchpix/image-pipeline/internal/repository/run"
	batchsvc "github.com/batchpix/image-pipeline/internal/service/batch"
	"github.com/batchpix/image-pipeline/internal/storage/file"
)

func main() {
	// Context & signals: used for graceful shutdown on system interrupts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize logger and load application configuration.
	zlog.Init()
	cfg := config.MustLoad("./config/config.yml")

	// Retry strategy for Kafka and other external calls.
	strategy := retry.Strategy{
		Attempts: cfg.Retry.Attempts,
		Delay:    cfg.Retry.Delay,
		Backoff:  cfg.Retry.Backoff,
	}

	// Connect to PostgreSQL for run history when configured.
	var db *dbpg.DB
	var repo batchsvc.RunRepository
	if cfg.Database.Enabled {
		opts := &dbpg.Options{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		}

		// Collect slave DSNs for replica connections.
		slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
		for _, s := range cfg.Database.Slaves {
			slaveDSNs = append(slaveDSNs, s.DSN())
		}

		var err error
		db, err = dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		repo = runrepo.NewRepository(db)
	}

	// Initialize the processed-file mirror (MinIO) when configured.
	var mirror batchsvc.Mirror
	if cfg.Storage.Enabled {
		storage, err := file.NewStorage(
			ctx,
			cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey,
			cfg.Storage.BucketName, cfg.Storage.UseSSL,
			strategy,
		)
		if err != nil {
			zlog.Logger.Fatal().Err(err).Msg("failed to connect to storage")
		}
		mirror = storage
	}

	// Initialize the result event producer when Kafka is configured.
	var pub batchsvc.EventPublisher
	var p *producer.Producer
	if cfg.Kafka.Enabled {
		p = producer.New(&cfg.Kafka, strategy)
		pub = p
	}

	service := batchsvc.NewService(cfg.Batch.Workers, pub, repo, mirror)

	switch cfg.Mode {
	case "", "batch":
		runBatch(ctx, cfg, service)
	case "consume":
		runConsumer(ctx, cfg, strategy, service)
	default:
		zlog.Logger.Fatal().Str("mode", cfg.Mode).Msg("unknown mode")
	}

	// Close Kafka producer client.
	if p != nil {
		if err := p.Client.Close(); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to close kafka producer client")
		}
	}

	// Close master and slave databases.
	if db != nil {
		if err := db.Master.Close(); err != nil {
			zlog.Logger.Printf("failed to close master DB: %v", err)
		}
		for i, s := range db.Slaves {
			if err := s.Close(); err != nil {
				zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
			}
		}
	}
}

// runBatch executes one batch run against the configured directories. The
// summary itself is reported by the run's observers.
func runBatch(ctx context.Context, cfg *config.Config, service *batchsvc.Service) {
	req := model.BatchRequest{
		ID:            uuid.New(),
		InputDir:      cfg.Batch.InputDir,
		OutputDir:     cfg.Batch.OutputDir,
		Profile:       cfg.Batch.Profile,
		WatermarkText: cfg.Batch.WatermarkText,
		WatermarkFont: cfg.Batch.WatermarkFont,
	}

	if _, err := service.Run(ctx, req); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("batch run failed")
	}
}

// runConsumer blocks consuming batch requests from Kafka until the context
// is canceled.
func runConsumer(ctx context.Context, cfg *config.Config, strategy retry.Strategy, service *batchsvc.Service) {
	if !cfg.Kafka.Enabled {
		zlog.Logger.Fatal().Msg("consume mode requires kafka to be enabled")
	}

	handler := batchmsg.NewRequestedHandler(service)
	c := consumer.New(&cfg.Kafka, strategy, handler)

	var wg sync.WaitGroup
	wg.Add(1)
	go c.Consume(ctx, &wg)

	// Block until context is canceled (SIGINT/SIGTERM).
	<-ctx.Done()
	zlog.Logger.Info().Msg("context done")

	// Wait for the consumer goroutine to finish.
	wg.Wait()

	if err := c.Client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close kafka consumer client")
	}
}
