// Package main is the entry point for the coolstore API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coolstore/internal/config"
	v1 "coolstore/internal/infrastructure/http/v1"
	"coolstore/internal/infrastructure/storage/postgres"
	"coolstore/internal/infrastructure/storage/postgres/cooling_repo"
	"coolstore/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Service:     "coolstore-server",
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	log.Infow("starting coolstore server", "env", cfg.App.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txOpts := postgres.DefaultTxOptions()
	txOpts.StatementTimeout = cfg.Database.StatementTimeout
	txManager := postgres.NewTxManager(pool, txOpts)

	if err := postgres.Migrate(ctx, txManager); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	// --- Repository ---
	opts := []cooling_repo.Option{cooling_repo.WithLogger(log)}
	if cfg.Audit.Enabled {
		audit, err := postgres.NewAuditService(txManager, cfg.Audit.CompressThreshold)
		if err != nil {
			log.Fatalw("failed to create audit service", "error", err)
		}
		opts = append(opts, cooling_repo.WithAudit(audit))
	}

	repo, err := cooling_repo.NewSampleRepo(txManager, opts...)
	if err != nil {
		log.Fatalw("failed to create sample repository", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Repository:  repo,
		Database:    pool,
		Logger:      log,
		Development: cfg.IsDevelopment(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	stats := pool.Stats()
	log.Infow("server stopped", "db_total_conns", stats.TotalConns, "db_acquire_count", stats.AcquireCount)
}
