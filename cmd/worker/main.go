package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/keyurdhanani/store-management-project/internal/config"
	"github.com/keyurdhanani/store-management-project/internal/database"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
	ledgerStore "github.com/keyurdhanani/store-management-project/internal/ledger/store"
	"github.com/keyurdhanani/store-management-project/internal/observability"
	"github.com/keyurdhanani/store-management-project/internal/reconcile"
	"github.com/keyurdhanani/store-management-project/internal/report"
	reportStore "github.com/keyurdhanani/store-management-project/internal/report/store"
	saleStore "github.com/keyurdhanani/store-management-project/internal/sale/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(config.NewLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Redis.Addr == "" {
		return errors.New("REDIS_ADDR is required to run the worker")
	}

	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxOpenConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer client.Close()

	var (
		ledgerRepo    = ledgerStore.New(db, cfg.DB.LockTimeout)
		metrics       = observability.NewMetrics()
		reportService = report.NewService(reportStore.New(db, saleStore.New(db, ledgerRepo)), report.NewCache(client, cfg.Redis.CacheTTL))
		job           = reconcile.NewJob(ledger.NewService(ledgerRepo), metrics, reportService)
	)

	task, err := reconcile.NewTask(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("building reconcile task: %w", err)
	}

	worker, err := reconcile.NewWorker(reconcile.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.Redis.Addr},
		Concurrency: cfg.Worker.Concurrency,
		Handlers:    []reconcile.TaskHandler{{Type: reconcile.TaskReconcile, Handler: job.Handle}},
		Cron:        []reconcile.CronRegistration{{Spec: cfg.Ledger.ReconcileCron, Task: task}},
	})
	if err != nil {
		return fmt.Errorf("creating worker: %w", err)
	}

	metricsSrv := &http.Server{
		Addr:              cfg.Worker.MetricsAddr,
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "error", err)
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	slog.Info("starting worker", "cron", cfg.Ledger.ReconcileCron, "concurrency", cfg.Worker.Concurrency, "metrics", cfg.Worker.MetricsAddr)

	return worker.Run(ctx)
}
