package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nereus/internal/adapters/clickhouse"
	"nereus/internal/adapters/config"
	"nereus/internal/adapters/errors/noop"
	"nereus/internal/adapters/errors/sentry"
	"nereus/internal/adapters/kafka"
	"nereus/internal/adapters/postgres"
	"nereus/internal/adapters/redis"
	"nereus/internal/api"
	"nereus/internal/api/handlers"
	"nereus/internal/api/health"
	"nereus/internal/api/live"
	chrepo "nereus/internal/repository/clickhouse"
	pgrepo "nereus/internal/repository/postgres"
	redisrepo "nereus/internal/repository/redis"
	"nereus/internal/metrics"
	"nereus/internal/ml"
	"nereus/internal/ml/preprocess"
	ingestsvc "nereus/internal/services/ingest"
	modelsvc "nereus/internal/services/modelversion"
	predictionsvc "nereus/internal/services/prediction"
	schedulesvc "nereus/internal/services/schedule"
	"nereus/internal/workers"
	"nereus/pkg/errors"
	"nereus/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	metrics.Init()

	// Databases
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	chClient, err := clickhouse.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer chClient.Close()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	log.Info("Databases connected")

	// Repositories
	pondRepo := pgrepo.NewPondRepository(pgClient.DB())
	predictionRepo := pgrepo.NewPredictionRepository(pgClient.DB())
	scheduleRepo := pgrepo.NewScheduleRepository(pgClient.DB())
	modelVersionRepo := pgrepo.NewModelVersionRepository(pgClient.DB())
	readingRepo := chrepo.NewReadingRepository(chClient.Conn())
	statsRepo := chrepo.NewStatsRepository(chClient.Conn())
	modelCache := redisrepo.NewModelCache(redisClient)

	// Kafka
	producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
	defer producer.Close()

	sensorConsumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.GroupID,
		Topic:   kafka.TopicSensorReadings,
	})
	defer sensorConsumer.Close()

	// ML pipeline: preprocessing contract plus the ONNX engine bound to it
	preprocCfg, err := preprocess.Load(cfg.Model.Preprocessing)
	if err != nil {
		log.Fatalf("Failed to load preprocessing config: %v", err)
	}
	preprocessor := preprocess.New(preprocCfg)

	engine := ml.NewEngine(cfg.Model.Path, preprocCfg.NumFeatures())
	if err := engine.Initialize(); err != nil {
		log.Fatalf("Failed to load model: %v", err)
	}
	defer engine.Close()

	// Services
	growth := predictionsvc.NewLinearGrowth(cfg.Growth.DailyGainKg)
	predictionService := predictionsvc.NewService(
		readingRepo, predictionRepo, preprocessor, engine,
		growth, predictionsvc.NewVariabilityScorer(), cfg.Model.Version,
	)
	ingestService := ingestsvc.NewService(readingRepo, pondRepo)
	scheduleService := schedulesvc.NewService(scheduleRepo)
	modelService := modelsvc.NewService(modelVersionRepo, modelCache, producer)

	log.Info("Services initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Live feed hub
	hub := live.NewHub()
	go hub.Run(ctx)

	// Background workers
	optimalDO := preprocCfg.Constant(preprocess.ConstOptimalDO)
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewPredictionWorker(
		pondRepo, predictionService, producer,
		cfg.Workers.PredictionInterval, cfg.Workers.PredictionEnabled,
	))
	scheduler.RegisterWorker(workers.NewAnalysisWorker(
		pondRepo, readingRepo, statsRepo, producer, optimalDO,
		cfg.Workers.AnalysisInterval, cfg.Workers.AnalysisEnabled,
	))
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	// Sensor ingest consumer
	go func() {
		if err := sensorConsumer.Consume(ctx, ingestService.HandleSensorMessage); err != nil && ctx.Err() == nil {
			log.Errorf("Sensor consumer stopped: %v", err)
		}
	}()

	// HTTP API
	healthHandler := health.New(log, cfg.App.Name, cfg.App.Version, map[string]health.Checker{
		"postgres":   pgClient.Health,
		"clickhouse": chClient.Health,
		"redis":      redisClient.Health,
	})

	server := api.NewServer(
		api.ServerConfig{
			Port:        cfg.HTTP.Port,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
		},
		api.Handlers{
			Health:     healthHandler,
			Pond:       handlers.NewPondHandler(pondRepo),
			Sync:       handlers.NewSyncHandler(ingestService, readingRepo, hub, cfg.HTTP.SyncRateLimit, cfg.HTTP.SyncRateBurst),
			Prediction: handlers.NewPredictionHandler(pondRepo, predictionRepo, predictionService, hub),
			Model:      handlers.NewModelHandler(modelService),
			Schedule:   handlers.NewScheduleHandler(scheduleService),
			Live:       hub,
		},
		log,
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Errorf("HTTP server error: %v", err)
			cancel()
		}
	}()

	log.Info("System initialized successfully")

	waitForShutdown(ctx, cancel, server, scheduler, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown waits for a shutdown signal and stops components in order
func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	server *api.Server,
	scheduler *workers.Scheduler,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-ctx.Done():
		log.Info("Context cancelled")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("HTTP shutdown: %v", err)
	}

	cancel()

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Worker shutdown: %v", err)
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
