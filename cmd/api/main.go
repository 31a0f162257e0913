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

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/keyurdhanani/store-management-project/internal/catalog"
	catalogStore "github.com/keyurdhanani/store-management-project/internal/catalog/store"
	"github.com/keyurdhanani/store-management-project/internal/config"
	"github.com/keyurdhanani/store-management-project/internal/database"
	storeHttp "github.com/keyurdhanani/store-management-project/internal/http"
	catalogHandler "github.com/keyurdhanani/store-management-project/internal/http/catalog"
	importHandler "github.com/keyurdhanani/store-management-project/internal/http/importcsv"
	matchingHandler "github.com/keyurdhanani/store-management-project/internal/http/matching"
	purchaseHandler "github.com/keyurdhanani/store-management-project/internal/http/purchase"
	reportHandler "github.com/keyurdhanani/store-management-project/internal/http/report"
	saleHandler "github.com/keyurdhanani/store-management-project/internal/http/sale"
	stockHandler "github.com/keyurdhanani/store-management-project/internal/http/stock"
	"github.com/keyurdhanani/store-management-project/internal/importer"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
	ledgerStore "github.com/keyurdhanani/store-management-project/internal/ledger/store"
	"github.com/keyurdhanani/store-management-project/internal/matching"
	matchingStore "github.com/keyurdhanani/store-management-project/internal/matching/store"
	"github.com/keyurdhanani/store-management-project/internal/observability"
	"github.com/keyurdhanani/store-management-project/internal/purchase"
	purchaseStore "github.com/keyurdhanani/store-management-project/internal/purchase/store"
	"github.com/keyurdhanani/store-management-project/internal/reconcile"
	"github.com/keyurdhanani/store-management-project/internal/report"
	reportStore "github.com/keyurdhanani/store-management-project/internal/report/store"
	"github.com/keyurdhanani/store-management-project/internal/sale"
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

	if err := run(ctx, cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	db, err := database.New(cfg.ConnectionString(), cfg.DB.MaxOpenConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	var cache *report.Cache

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			slog.Warn("redis unavailable, reports will not be cached", "addr", cfg.Redis.Addr, "error", err)
		} else {
			cache = report.NewCache(client, cfg.Redis.CacheTTL)
		}
	}

	var (
		ledgerRepo = ledgerStore.New(db, cfg.DB.LockTimeout)
		saleRepo   = saleStore.New(db, ledgerRepo)
		metrics    = observability.NewMetrics()
	)

	var (
		ledgerService   = ledger.NewService(ledgerRepo)
		catalogService  = catalog.NewService(catalogStore.New(db, ledgerRepo), cfg.Ledger.LowStockThreshold)
		purchaseService = purchase.NewService(purchaseStore.New(db, ledgerRepo))
		saleService     = sale.NewService(saleRepo)
		reportService   = report.NewService(reportStore.New(db, saleRepo), cache)
		matchingService = matching.NewService(matchingStore.New(db))
		importService   = importer.NewService(matchingService, purchaseService)
		reconcileJob    = reconcile.NewJob(ledgerService, metrics, reportService)
	)

	router := storeHttp.New(storeHttp.Options{
		Timeout:        cfg.Server.Timeout,
		RateLimit:      cfg.Server.RateLimit,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Production:     cfg.IsProduction(),
	}, storeHttp.Handlers{
		Catalog:   catalogHandler.NewHandler(catalogService),
		Stock:     stockHandler.NewHandler(ledgerService, reconcileJob),
		Purchases: purchaseHandler.NewHandler(purchaseService, metrics, reportService),
		Sales:     saleHandler.NewHandler(saleService, metrics, reportService),
		Reports:   reportHandler.NewHandler(reportService),
		Import:    importHandler.NewHandler(importService, reportService),
		Matching:  matchingHandler.NewHandler(matchingService),
	}, metrics)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr, "app", cfg.App.Name, "env", cfg.App.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
