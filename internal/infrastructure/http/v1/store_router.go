package v1

import (
	"github.com/gin-gonic/gin"

	"invsync/internal/core/metrics"
	"invsync/internal/domain/localstore"
	"invsync/internal/domain/syncworker"
	"invsync/internal/infrastructure/http/v1/handlers"
	"invsync/internal/infrastructure/http/v1/middleware"
	"invsync/internal/infrastructure/storage/postgres"
	"invsync/pkg/logger"
)

// StoreRouterConfig holds a Store's router dependencies.
type StoreRouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	LocalInventoryRepo localstore.InventoryRepository
	LocalService       *localstore.Service
	PendingChangeRepo  localstore.PendingChangeRepository
	Worker             *syncworker.Worker

	Metrics *metrics.Registry
}

// NewStoreRouter builds a Store's gin.Engine. Local endpoints have no bearer
// auth of their own (spec.md §6 lists Authorization only for Central) —
// a Store is a single-tenant local process, not a multi-caller service.
func NewStoreRouter(cfg StoreRouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	metricsHandler := handlers.NewMetricsHandler(cfg.Metrics)
	router.GET("/metrics", metricsHandler.Render)

	base := handlers.NewBaseHandler()

	localInventoryHandler := handlers.NewLocalInventoryHandler(base, cfg.LocalInventoryRepo, cfg.LocalService)
	syncHandler := handlers.NewSyncHandler(base, cfg.PendingChangeRepo, cfg.Worker)

	v1Group := router.Group("/v1")
	{
		local := v1Group.Group("/local")
		local.GET("/inventory/:sku", localInventoryHandler.Get)
		local.POST("/inventory/:sku/update", localInventoryHandler.Update)
		local.GET("/sync/status/:operation_id", syncHandler.Status)
		local.POST("/sync/trigger", syncHandler.Trigger)
	}

	return router
}
