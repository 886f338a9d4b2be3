package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/context-store/internal/bootstrap"
	"github.com/kirillkom/context-store/internal/config"
	"github.com/kirillkom/context-store/internal/infrastructure/workerpool"
	"github.com/kirillkom/context-store/internal/observability/logging"
	"github.com/kirillkom/context-store/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	pool, err := workerpool.New(cfg.ReindexWorkers)
	if err != nil {
		logger.Error("worker_pool_init_failed", "error", err)
		os.Exit(1)
	}
	defer pool.Release()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()

	timeout := time.Duration(cfg.ReindexTimeoutSeconds) * time.Second
	logger.Info("worker_subscribed", "subject", cfg.NATSReindexSubject, "workers", cfg.ReindexWorkers)
	err = app.Queue.SubscribeReindex(ctx, func(_ context.Context, itemID int64) error {
		// The message context ends when this callback returns, so jobs run
		// under the process context instead.
		return pool.Go(func() {
			jobCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			workerMetrics.StartReindex()
			started := time.Now()
			err := app.Reindex.ReindexByID(jobCtx, itemID)
			workerMetrics.FinishReindex(serviceName, time.Since(started), err)
			if err != nil {
				logger.Error("reindex_job_failed", "item_id", itemID, "error", err)
				return
			}
			logger.Debug("reindex_job_done", "item_id", itemID)
		})
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
	}

	pool.Wait()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
	logger.Info("worker_stopped")
}
