package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solvia-erp/solvia-erp/internal/accounting"
	"github.com/solvia-erp/solvia-erp/internal/app"
	"github.com/solvia-erp/solvia-erp/internal/authz"
	"github.com/solvia-erp/solvia-erp/internal/billing"
	"github.com/solvia-erp/solvia-erp/internal/inventory"
	"github.com/solvia-erp/solvia-erp/internal/ledger"
	"github.com/solvia-erp/solvia-erp/internal/masterdata"
	"github.com/solvia-erp/solvia-erp/internal/platform/cache"
	"github.com/solvia-erp/solvia-erp/internal/platform/db"
	"github.com/solvia-erp/solvia-erp/internal/procurement"
	"github.com/solvia-erp/solvia-erp/internal/sales"
	"github.com/solvia-erp/solvia-erp/internal/txlog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, db.Config{DSN: cfg.PGDSN, MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, stock summaries served uncached", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	stockCache := cache.NewStore(redisClient, cfg.StockCacheTTL)

	ledgerRecorder := ledger.NewRecorder()
	logRecorder := txlog.NewRecorder()
	authzMW := authz.Middleware{Logger: logger}

	inventoryRepo := inventory.NewRepository(pool, ledgerRecorder, logRecorder)
	inventoryService := inventory.NewService(inventoryRepo, stockCache)
	inventoryHandler := inventory.NewHandler(logger, inventoryService, authzMW)

	supplierAdapter := masterdata.NewSupplierAdapter(pool)
	procurementRepo := procurement.NewRepository(pool, ledgerRecorder, logRecorder)
	procurementService := procurement.NewService(procurementRepo, supplierAdapter)
	procurementHandler := procurement.NewHandler(logger, procurementService, authzMW)

	salesRepo := sales.NewRepository(pool, ledgerRecorder, logRecorder)
	salesService := sales.NewService(salesRepo)
	salesHandler := sales.NewHandler(logger, salesService, authzMW)

	billingRepo := billing.NewRepository(pool, logRecorder)
	billingService := billing.NewService(billingRepo)
	billingHandler := billing.NewHandler(logger, billingService, authzMW)

	accountingRepo := accounting.NewRepository(pool, logRecorder)
	accountingService := accounting.NewService(accountingRepo)
	accountingHandler := accounting.NewHandler(logger, accountingService, authzMW)

	masterdataRepo := masterdata.NewRepository(pool)
	masterdataHandler := masterdata.NewHandler(logger, masterdataRepo, authzMW)

	auditHandler := txlog.NewHandler(logger, logRecorder, pool, authzMW)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Authz:              authzMW,
		InventoryHandler:   inventoryHandler,
		ProcurementHandler: procurementHandler,
		SalesHandler:       salesHandler,
		BillingHandler:     billingHandler,
		AccountingHandler:  accountingHandler,
		MasterDataHandler:  masterdataHandler,
		AuditHandler:       auditHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
