// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"github.com/rlecomte1929/rolec/internal/common/camunda"
	"github.com/rlecomte1929/rolec/internal/common/config"
	"github.com/rlecomte1929/rolec/internal/common/logger"
	"github.com/rlecomte1929/rolec/internal/common/observability"
	"github.com/rlecomte1929/rolec/internal/recommendation/catalog"
	"github.com/rlecomte1929/rolec/internal/recommendation/engine"
	"github.com/rlecomte1929/rolec/internal/recommendation/registry"

	dc "github.com/rlecomte1929/rolec/internal/workers/recommendation/describe-categories"
	rr "github.com/rlecomte1929/rolec/internal/workers/recommendation/rank-recommendations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	log.Info("starting worker manager", map[string]interface{}{"catalogSource": cfg.Recommendations.CatalogSource})

	obs, err := observability.New(cfg.Observability.ServiceName)
	if err != nil {
		zapLog.Fatal("metrics exporter failed", zap.Error(err))
	}
	tracer, err := observability.NewTracerProvider(cfg.Observability, cfg.App.Environment)
	if err != nil {
		zapLog.Fatal("tracer provider failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Catalog backend ---
	backend, err := catalog.Open(cfg, log)
	if err != nil {
		zapLog.Fatal("catalog backend failed", zap.Error(err))
	}
	defer backend.Close()

	if _, err := retryWithBackoff(ctx, 10, 2*time.Second, log, "catalog backend connection", func() (struct{}, error) {
		return struct{}{}, backend.Ping(ctx)
	}); err != nil {
		zapLog.Fatal("catalog backend unreachable", zap.Error(err))
	}

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFromApp(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()

	// --- Engine and workers ---
	eng := engine.New(registry.New(registry.Options{}), backend.Source, log, engine.Options{
		CatalogTimeout: config.GetDuration(cfg.Recommendations.CatalogTimeout),
		SlowThreshold:  config.GetDuration(cfg.Recommendations.SlowThreshold),
		Observability:  obs,
	})

	var workers []worker.JobWorker

	rrCfg := config.GetWorkerConfig(cfg, rr.TaskType)
	rankConfig := rr.LoadConfig()
	if rrCfg.Timeout > 0 {
		rankConfig.Timeout = config.GetDuration(rrCfg.Timeout)
	}
	if cfg.Recommendations.DefaultTopN > 0 {
		rankConfig.DefaultTopN = cfg.Recommendations.DefaultTopN
	}
	if cfg.Recommendations.MaxTopN > 0 {
		rankConfig.MaxTopN = cfg.Recommendations.MaxTopN
	}
	rank := rr.NewHandler(rankConfig, eng, log)
	if w := camunda.StartWorker(zeebe.GetClient(), rr.TaskType, rrCfg, rank.Handle, log); w != nil {
		workers = append(workers, w)
	}

	dcCfg := config.GetWorkerConfig(cfg, dc.TaskType)
	describeConfig := dc.LoadConfig()
	if dcCfg.Timeout > 0 {
		describeConfig.Timeout = config.GetDuration(dcCfg.Timeout)
	}
	describe := dc.NewHandler(describeConfig, eng, log)
	if w := camunda.StartWorker(zeebe.GetClient(), dc.TaskType, dcCfg, describe.Handle, log); w != nil {
		workers = append(workers, w)
	}

	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	// --- Health / metrics ---
	srv := newServer(cfg.App.HTTPPort, map[string]func(context.Context) error{
		"zeebe":   zeebe.HealthCheck,
		"catalog": backend.Ping,
	})
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err})
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping workers", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("health/metrics server shutdown", map[string]interface{}{"error": err})
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer shutdown", map[string]interface{}{"error": err})
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics shutdown", map[string]interface{}{"error": err})
	}

	log.Info("worker manager stopped gracefully", nil)
}
