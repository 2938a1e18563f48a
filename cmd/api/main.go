package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rentledger/rentledger/internal/billing"
	"github.com/rentledger/rentledger/internal/config"
	"github.com/rentledger/rentledger/internal/handler"
	"github.com/rentledger/rentledger/internal/logging"
	"github.com/rentledger/rentledger/internal/middleware"
	"github.com/rentledger/rentledger/internal/observability"
	"github.com/rentledger/rentledger/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("rentledger-api", cfg.LogLevel, cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	})
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	metrics := observability.NewBillingMetrics()

	billingSvc := billing.NewService(
		repository.NewTenantRepository(db),
		repository.NewBillRepository(db),
		repository.NewChargeRepository(db),
		repository.NewPaymentRepository(db),
		db,
		billing.RealClock(),
		billing.ZeroPricer{},
		metrics,
		billing.Policy{
			DueDateGraceDays: cfg.DueDateGraceDays,
			DueDateFixedDay:  cfg.DueDateFixedDay,
			MinYear:          cfg.MinBillingYear,
		},
	)

	mux := http.NewServeMux()
	handler.NewHealthHandler(db).Register(mux)
	handler.NewBillHandler(billingSvc).Register(mux)
	handler.NewPaymentHandler(billingSvc).Register(mux)
	handler.NewSettlementHandler(billingSvc).Register(mux)
	handler.NewReportHandler(billingSvc).Register(mux)
	mux.Handle("GET /metrics", observability.Handler())

	root := middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
