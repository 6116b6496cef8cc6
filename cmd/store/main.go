// Package main is the entry point for a Store Node.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	v1 "invsync/internal/infrastructure/http/v1"
	"invsync/internal/core/metrics"
	"invsync/internal/domain/localstore"
	"invsync/internal/domain/storeauth"
	"invsync/internal/domain/syncworker"
	"invsync/internal/infrastructure/centralclient"
	"invsync/internal/infrastructure/storage/postgres"
	"invsync/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting store node")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	reg := metrics.NewRegistry()

	localInventoryRepo := postgres.NewLocalInventoryRepo(txManager)
	pendingChangeRepo := postgres.NewPendingChangeRepo(txManager)
	localService := localstore.NewService(localInventoryRepo, pendingChangeRepo, txManager, reg)

	// --- Outbound Central client + Token Client Cache (spec.md §4.C) ---
	serviceName := mustEnv("SERVICE_NAME")
	serviceSecret := mustEnv("SERVICE_SECRET")
	centralHTTP := centralclient.NewClient(mustEnv("CENTRAL_URL"))
	tokenCache := storeauth.NewTokenCache(centralHTTP, serviceName, serviceSecret)
	adjustClient := centralclient.NewAdjustClient(centralHTTP, tokenCache)

	// --- Sync Worker (spec.md §4.H) ---
	worker := syncworker.NewWorker(localInventoryRepo, pendingChangeRepo, adjustClient, reg)

	router := v1.NewStoreRouter(v1.StoreRouterConfig{
		Pool:               pool,
		Logger:             log,
		LocalInventoryRepo: localInventoryRepo,
		LocalService:       localService,
		PendingChangeRepo:  pendingChangeRepo,
		Worker:             worker,
		Metrics:            reg,
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		runSyncLoop(ctx, log, worker)
	}()

	port := getEnv("APP_PORT", "8081")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("store node listening", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down store node...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	wg.Wait()
	log.Info("store node stopped")
}

// runSyncLoop drives the Sync Worker on a fixed poll interval, collapsing the
// teacher's per-tenant goroutine map (cmd/worker) to a single process: a
// Store is one tenant, so there is nothing to fan out over.
func runSyncLoop(ctx context.Context, log *logger.Logger, worker *syncworker.Worker) {
	pollInterval := 2 * time.Second
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := worker.ProcessPendingOnce(ctx); err != nil {
				log.Errorw("sync pass failed", "error", err)
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
