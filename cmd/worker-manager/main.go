// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"go.uber.org/zap"

	"advocacy-workers/internal/catalog"
	"advocacy-workers/internal/common/camunda"
	"advocacy-workers/internal/common/config"
	"advocacy-workers/internal/common/database"
	"advocacy-workers/internal/common/logger"
	"advocacy-workers/internal/common/observability"
	"advocacy-workers/pkg/registry"

	bbr "advocacy-workers/internal/workers/eligibility/build-benefits-report"
	mep "advocacy-workers/internal/workers/eligibility/match-eligibility-programs"
	rpm "advocacy-workers/internal/workers/eligibility/run-pending-matching"
	ccp "advocacy-workers/internal/workers/pricing/calculate-case-price"
	rcp "advocacy-workers/internal/workers/pricing/record-case-pricing"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.App.Name,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		SampleRatio:    cfg.Observability.SampleRatio,
	})
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Elasticsearch, only when the catalog is indexed there ---
	backends := catalog.Backends{DB: pg.DB, Redis: redis.Client}
	if cfg.Catalog.Source == catalog.KindElasticsearch {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		backends.Elasticsearch = esClient.Client
		zapLog.Info("Elasticsearch connected successfully")
	}

	programs, err := catalog.FromConfig(cfg.Catalog, backends, log)
	if err != nil {
		zapLog.Fatal("catalog source init failed", zap.Error(err))
	}
	zapLog.Info("Program catalog configured", zap.String("source", cfg.Catalog.Source))
	dropStaleCatalog(ctx, programs, zapLog)

	// --- Workers ---
	workers := camunda.NewWorkers(zeebe.GetClient(), zapLog)
	registerWorkers(workers, cfg, programs, pg, redis, log)
	zapLog.Info("Workers registered", zap.Strings("taskTypes", workers.TaskTypes()))
	if missing := unregistered(registry.Default(), workers.TaskTypes(), cfg); len(missing) > 0 {
		zapLog.Warn("Enabled activities without a running worker", zap.Strings("taskTypes", missing))
	}

	// --- Health & Metrics Server ---
	srv := newServer(cfg.Server.Address, readinessCheck(zeebe, pg, redis), zapLog)
	go srv.run()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	workers.Close()
	if err := srv.shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// dropStaleCatalog clears a snapshot cached by a previous deployment so a
// changed catalog is read on the first job.
func dropStaleCatalog(ctx context.Context, programs catalog.Source, zapLog *zap.Logger) {
	cached, ok := programs.(*catalog.Cached)
	if !ok {
		return
	}
	if err := cached.Invalidate(ctx); err != nil {
		zapLog.Warn("Could not clear cached catalog", zap.Error(err))
	}
}

func registerWorkers(workers *camunda.Workers, cfg *config.Config, programs catalog.Source, pg *database.PostgresClient, redis *database.RedisClient, log logger.Logger) {
	timeout := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	{
		c := ccp.LoadConfig()
		c.Timeout = timeout(ccp.TaskType)
		c.StrictValidation = cfg.Pricing.StrictValidation
		workers.Start(ccp.TaskType, config.GetWorkerConfig(cfg, ccp.TaskType), ccp.NewHandler(c, log).Handle)
	}

	{
		c := rcp.LoadConfig()
		c.Timeout = timeout(rcp.TaskType)
		workers.Start(rcp.TaskType, config.GetWorkerConfig(cfg, rcp.TaskType), rcp.NewHandler(c, pg.DB, log).Handle)
	}

	{
		c := mep.LoadConfig()
		c.Timeout = timeout(mep.TaskType)
		c.MinScore = cfg.Matching.MinScore
		c.TopN = cfg.Matching.TopN
		c.AverageOver = cfg.Matching.AverageOver
		c.CacheTTL = time.Duration(cfg.Matching.ProfileCacheTTL) * time.Second
		c.StrictValidation = cfg.Matching.StrictValidation
		workers.Start(mep.TaskType, config.GetWorkerConfig(cfg, mep.TaskType), mep.NewHandler(c, programs, pg.DB, redis.Client, log).Handle)
	}

	{
		c := rpm.LoadConfig()
		c.Timeout = timeout(rpm.TaskType)
		c.MinScore = cfg.Matching.MinScore
		c.AverageOver = cfg.Matching.AverageOver
		c.BatchSize = cfg.Matching.BatchSize
		workers.Start(rpm.TaskType, config.GetWorkerConfig(cfg, rpm.TaskType), rpm.NewHandler(c, programs, pg.DB, log).Handle)
	}

	{
		c := bbr.LoadConfig()
		c.Timeout = timeout(bbr.TaskType)
		c.MinScore = cfg.Matching.MinScore
		c.AverageOver = cfg.Matching.AverageOver
		workers.Start(bbr.TaskType, config.GetWorkerConfig(cfg, bbr.TaskType), bbr.NewHandler(c, programs, pg.DB, log).Handle)
	}
}

// unregistered lists registry task types that are enabled in config but
// have no open worker.
func unregistered(reg *registry.ActivityRegistry, started []string, cfg *config.Config) []string {
	var missing []string
	for _, taskType := range reg.TaskTypes() {
		if config.IsWorkerEnabled(cfg, taskType) && !slices.Contains(started, taskType) {
			missing = append(missing, taskType)
		}
	}
	return missing
}
