// Package v1 wires Central's and a Store's domain services to HTTP routes.
package v1

import (
	"github.com/gin-gonic/gin"

	"invsync/internal/core/metrics"
	"invsync/internal/domain/auth"
	"invsync/internal/domain/inventory"
	"invsync/internal/infrastructure/http/v1/handlers"
	"invsync/internal/infrastructure/http/v1/middleware"
	"invsync/internal/infrastructure/storage/postgres"
	"invsync/pkg/logger"
)

// CentralRouterConfig holds Central's router dependencies.
type CentralRouterConfig struct {
	Pool     *postgres.Pool
	Logger   *logger.Logger
	Issuer   *auth.TokenIssuer
	Verifier *auth.TokenVerifier

	InventoryRepo inventory.Repository
	Engine        *inventory.Engine

	Metrics *metrics.Registry
}

// NewCentralRouter builds Central's gin.Engine: token issuance is public,
// every inventory endpoint requires a bearer token minted by the Token
// Issuer (spec.md §4.A, §4.B).
func NewCentralRouter(cfg CentralRouterConfig) *gin.Engine {
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

	tokenHandler := handlers.NewTokenHandler(base, cfg.Issuer)
	router.POST("/auth/token", tokenHandler.IssueToken)

	inventoryHandler := handlers.NewInventoryHandler(base, cfg.InventoryRepo, cfg.Engine)

	v1Group := router.Group("/v1")
	v1Group.Use(middleware.Auth(cfg.Verifier))
	{
		v1Group.GET("/inventory/:sku", inventoryHandler.Get)
		v1Group.POST("/inventory/:sku/adjust", inventoryHandler.Adjust)
		v1Group.POST("/inventory/bulk-sync", inventoryHandler.BulkSync)
	}

	return router
}
