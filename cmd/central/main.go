// Package main is the entry point for the Central Authority service.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	v1 "invsync/internal/infrastructure/http/v1"
	"invsync/internal/core/metrics"
	"invsync/internal/domain/auth"
	"invsync/internal/domain/inventory"
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

	ctx := context.Background()
	log.Info("starting central authority")

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	// --- Auth (spec.md §4.A, §4.B) ---
	jwtConfig := auth.DefaultConfig(mustEnv("JWT_SECRET"))
	jwtConfig.Algorithm = getEnv("JWT_ALGORITHM", jwtConfig.Algorithm)
	jwtConfig.TokenTTL = time.Duration(getEnvInt("JWT_EXPIRATION", 15)) * time.Minute

	credentialsRepo := postgres.NewCredentialsRepo(txManager)
	tokenIssuer := auth.NewTokenIssuer(jwtConfig, credentialsRepo)
	tokenVerifier := auth.NewTokenVerifier(jwtConfig, credentialsRepo)

	// --- Inventory Mutation Engine & Bulk Sync Coordinator (spec.md §4.E, §4.F) ---
	reg := metrics.NewRegistry()
	inventoryRepo := postgres.NewInventoryRepo(txManager)
	idempotencyStore := postgres.NewIdempotencyStore(pool, txManager, postgres.DefaultIdempotencyTTL)
	engine := inventory.NewEngine(inventoryRepo, idempotencyStore, txManager, reg)

	router := v1.NewCentralRouter(v1.CentralRouterConfig{
		Pool:          pool,
		Logger:        log,
		Issuer:        tokenIssuer,
		Verifier:      tokenVerifier,
		InventoryRepo: inventoryRepo,
		Engine:        engine,
		Metrics:       reg,
	})

	startCleanupLoop(ctx, log, idempotencyStore)

	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("central authority listening", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down central authority...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("central authority stopped")
}

// startCleanupLoop garbage-collects expired idempotency keys hourly (spec.md §3).
func startCleanupLoop(ctx context.Context, log *logger.Logger, store *postgres.IdempotencyStore) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := store.CleanupExpired(ctx)
				if err != nil {
					log.Warnw("idempotency cleanup failed", "error", err)
					continue
				}
				if n > 0 {
					log.Infow("cleaned up expired idempotency keys", "count", n)
				}
			}
		}
	}()
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
