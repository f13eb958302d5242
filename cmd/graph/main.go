package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	app_service "suspicious-account-graph/internal/application/service"
	"suspicious-account-graph/internal/domain/entity"
	domain_service "suspicious-account-graph/internal/domain/service"
	"suspicious-account-graph/internal/infrastructure/config"
	"suspicious-account-graph/internal/infrastructure/database"
	"suspicious-account-graph/internal/infrastructure/httpapi"
	"suspicious-account-graph/internal/infrastructure/logger"
	"suspicious-account-graph/internal/infrastructure/messaging"
	"suspicious-account-graph/internal/infrastructure/storage"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Create FX application
	app := fx.New(
		// Provide dependencies
		fx.Supply(cfg),
		fx.Supply(log),
		fx.Supply(&cfg.NATS),
		fx.Supply(&cfg.Neo4J),
		fx.Supply(&cfg.HTTP),
		fx.Supply(&cfg.Graph),
		fx.Supply(&cfg.Topology),
		fx.Provide(func() *zap.Logger { return log.Logger }),

		// Infrastructure providers
		fx.Provide(
			database.NewNeo4JClient,
			database.NewNeo4JSiteRepository,
			database.NewNeo4JAccountRepository,
			database.NewNeo4JTransferRepository,
			database.NewNeo4JGraphRepository,
			messaging.NewNATSConsumer,
			func(log *logger.Logger) (*storage.EvidenceStore, error) {
				return storage.NewEvidenceStore(context.Background(), &cfg.Storage, log)
			},
		),

		// Application providers
		fx.Provide(
			app_service.NewIngestApplicationService,
			app_service.NewQueryApplicationService,
			app_service.NewTopologyApplicationService,
		),

		// HTTP providers
		fx.Provide(
			func(c *database.Neo4JClient) httpapi.Pinger { return c },
			httpapi.NewHandler,
			httpapi.NewRouter,
			httpapi.NewServer,
		),

		// Lifecycle hooks
		fx.Invoke(startIngestPipeline),
		fx.Invoke(startHTTPServer),

		// Configure logging
		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)

	// Start the application
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start application", zap.Error(err))
		os.Exit(1)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down application...")

	// Stop the application
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application gracefully", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped successfully")
}

// startIngestPipeline connects the stores and starts the NATS intake
func startIngestPipeline(
	lifecycle fx.Lifecycle,
	consumer *messaging.NATSConsumer,
	ingestService domain_service.IngestService,
	log *zap.Logger,
	cfg *config.Config,
	neo4jClient *database.Neo4JClient,
) {
	// The OnStart ctx only lives for the duration of the hook, so the pump
	// goroutine gets its own context tied to the application lifetime.
	pipeCtx, stopPipe := context.WithCancel(context.Background())

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting ingest pipeline...")

			// Connect to Neo4J first
			if err := neo4jClient.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to Neo4J: %w", err)
			}

			log.Info("NATS Configuration",
				zap.String("url", cfg.NATS.URL),
				zap.String("stream_name", cfg.NATS.StreamName),
				zap.String("subject_prefix", cfg.NATS.SubjectPrefix),
				zap.Bool("enabled", cfg.NATS.Enabled),
			)

			// Connect to NATS
			if err := consumer.Connect(ctx); err != nil {
				return fmt.Errorf("failed to connect to NATS: %w", err)
			}

			// Start message processing
			go processMessages(pipeCtx, consumer.GetMessageChannel(), ingestService, log, cfg.App.WorkerPoolSize)

			log.Info("Ingest pipeline started successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping ingest pipeline...")
			stopPipe()
			if err := neo4jClient.Close(ctx); err != nil {
				log.Error("Failed to close Neo4J connection", zap.Error(err))
			}
			return consumer.Disconnect()
		},
	})
}

// startHTTPServer runs the API server for the whole application lifetime
func startHTTPServer(
	lifecycle fx.Lifecycle,
	server *httpapi.Server,
	log *logger.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			server.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})
}

// processMessages fans extraction results out to an upsert worker pool. One
// message is one site batch, so no batching layer sits in between.
func processMessages(
	ctx context.Context,
	msgChan <-chan *entity.ExtractionResult,
	ingestService domain_service.IngestService,
	logger *zap.Logger,
	workerPoolSize int,
) {
	jobChan := make(chan *entity.ExtractionResult, workerPoolSize)
	var wg sync.WaitGroup

	// Start worker pool
	for i := 0; i < workerPoolSize; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			logger.Info("Starting upsert worker", zap.Int("worker_id", workerID))

			for result := range jobChan {
				summary, err := ingestService.UpsertSiteData(ctx, result)
				if err != nil {
					logger.Error("Failed to process site batch",
						zap.Error(err),
						zap.Int("worker_id", workerID),
						zap.String("site_url", result.SiteURL))
					continue
				}
				logger.Info("Processed site batch",
					zap.Int("worker_id", workerID),
					zap.String("site_url", summary.SiteURL),
					zap.Int("stored", summary.Stored),
					zap.Int("dropped", summary.Dropped),
					zap.Int("failed", summary.Failed))
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return

		case result := <-msgChan:
			if result == nil {
				// Channel closed
				close(jobChan)
				wg.Wait()
				return
			}
			jobChan <- result
		}
	}
}
