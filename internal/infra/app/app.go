package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/oficinahub/workshop-sync/internal/core/port"
	"github.com/oficinahub/workshop-sync/internal/infra/config"
	"github.com/oficinahub/workshop-sync/internal/infra/database"
	kafkainfra "github.com/oficinahub/workshop-sync/internal/infra/kafka"
	"github.com/oficinahub/workshop-sync/internal/infra/logger"
	redisinfra "github.com/oficinahub/workshop-sync/internal/infra/redis"
	"github.com/oficinahub/workshop-sync/internal/infra/telemetry"
	postgresrepo "github.com/oficinahub/workshop-sync/internal/repository/postgres"
	redisrepo "github.com/oficinahub/workshop-sync/internal/repository/redis"
	"github.com/oficinahub/workshop-sync/internal/transport/http/middleware"
	"github.com/oficinahub/workshop-sync/internal/transport/http/routes"
	"github.com/oficinahub/workshop-sync/internal/usecase"
)

// Application wires configuration, storage, messaging and the HTTP
// surface into a runnable sync service.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

// New builds the application graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	syncMetrics, err := telemetry.NewSyncMetrics(cfg.Telemetry.MetricsNamespace, prometheus.DefaultRegisterer)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init sync metrics: %w", err)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Namespace: cfg.Telemetry.MetricsNamespace,
	})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var kafkaProducer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			kafkaProducer = producer
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	versionCache := redisrepo.NewTenantVersionCache(redisClient.Client(), cfg.Redis.TenantVersionPrefix)

	versionService := usecase.NewTenantVersionService(repos.TenantVersions, versionCache, eventPublisher, usecase.TenantVersionOptions{
		CacheTTL: cfg.Sync.VersionCacheTTL,
	}).WithLogger(log).WithMetrics(syncMetrics)

	observer := usecase.NewMutationObserver(versionService).
		WithLogger(log).
		WithMetrics(syncMetrics)

	customerService := usecase.NewCustomerService(repos.Customers, observer).WithLogger(log)
	workOrderService := usecase.NewWorkOrderService(repos.WorkOrders, observer).WithLogger(log)
	partTypeService := usecase.NewPartTypeService(repos.PartTypes, observer).WithLogger(log)
	syncService := usecase.NewSyncService(versionService, repos.Customers, repos.WorkOrders, repos.PartTypes).WithLogger(log)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "wshop:rate-limit",
		TTL:       rateLimitWindow * 2,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		HTTPMetrics: httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Sync:       syncService,
			Customers:  customerService,
			WorkOrders: workOrderService,
			PartTypes:  partTypeService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: kafkaProducer,
	}, nil
}

// Run serves HTTP traffic until the context is cancelled, then shuts
// down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting workshop sync API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
