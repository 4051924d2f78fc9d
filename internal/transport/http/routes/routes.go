package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/infra/config"
	"github.com/oficinahub/workshop-sync/internal/transport/http/handlers"
	"github.com/oficinahub/workshop-sync/internal/transport/http/middleware"
	"github.com/oficinahub/workshop-sync/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Sync       *usecase.SyncService
	Customers  *usecase.CustomerService
	WorkOrders *usecase.WorkOrderService
	PartTypes  *usecase.PartTypeService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	HTTPMetrics *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Handler())
	}

	checks := make([]handlers.ReadinessCheck, 0, 2)
	if deps.Database != nil {
		checks = append(checks, handlers.ReadinessCheck{Name: "database", Probe: deps.Database.Ping})
	}
	if deps.Cache != nil {
		checks = append(checks, handlers.ReadinessCheck{Name: "redis", Probe: deps.Cache.HealthCheck})
	}

	healthHandler := handlers.NewHealthHandler(checks...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(middleware.RequireTenant())
	{
		syncGroup := api.Group("/sync")
		if deps.RateLimiter != nil && deps.Config.RateLimit.PullMaxAttempts > 0 {
			syncGroup.Use(deps.RateLimiter.RateLimit(middleware.RateLimitRule{
				Name:       "sync_pull",
				Limit:      deps.Config.RateLimit.PullMaxAttempts,
				Window:     deps.Config.RateLimit.WindowDuration,
				Identifier: middleware.TenantIdentifier(),
			}))
		}
		syncHandler := handlers.NewSyncHandler(deps.Services.Sync)
		syncHandler.RegisterRoutes(syncGroup)

		customerHandler := handlers.NewCustomerHandler(deps.Services.Customers)
		customerHandler.RegisterRoutes(api.Group("/customers"))

		workOrderHandler := handlers.NewWorkOrderHandler(deps.Services.WorkOrders)
		workOrderHandler.RegisterRoutes(api.Group("/work-orders"))

		partTypeHandler := handlers.NewPartTypeHandler(deps.Services.PartTypes)
		partTypeHandler.RegisterRoutes(api.Group("/part-types"))
	}

	return r
}
