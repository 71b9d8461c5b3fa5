package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ostanin/backoffice-access/internal/core/port"
	"github.com/ostanin/backoffice-access/internal/infra/config"
	"github.com/ostanin/backoffice-access/internal/infra/database"
	kafkainfra "github.com/ostanin/backoffice-access/internal/infra/kafka"
	"github.com/ostanin/backoffice-access/internal/infra/logger"
	redisinfra "github.com/ostanin/backoffice-access/internal/infra/redis"
	"github.com/ostanin/backoffice-access/internal/infra/telemetry"
	postgresrepo "github.com/ostanin/backoffice-access/internal/repository/postgres"
	redisrepo "github.com/ostanin/backoffice-access/internal/repository/redis"
	"github.com/ostanin/backoffice-access/internal/transport/http/middleware"
	"github.com/ostanin/backoffice-access/internal/transport/http/routes"
	"github.com/ostanin/backoffice-access/internal/usecase"
)

type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	provider, err := telemetry.Attach(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
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

	repos := postgresrepo.NewRepositories(pool)

	tenantCache := redisrepo.NewTenantCache(redisClient.Client(), cfg.Redis.TenantCachePrefix)
	tenantCacheTTL := cfg.Redis.TenantCacheTTL
	if tenantCacheTTL <= 0 {
		tenantCacheTTL = 5 * time.Minute
	}

	var eventPublisher port.EventPublisher
	var kafkaProducer *kafkainfra.Producer
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

	tenantService := usecase.NewTenantService(repos.Companies, repos.Domains, eventPublisher).
		WithCache(tenantCache, tenantCacheTTL).
		WithLogger(log)
	roleService := usecase.NewRoleService(repos.Roles, repos.Memberships, repos.Companies, eventPublisher).
		WithLogger(log)
	permissionService := usecase.NewPermissionService(repos.Permissions, repos.Roles)
	membershipService := usecase.NewMembershipService(repos.Memberships, repos.Users, repos.Companies, repos.Roles, eventPublisher).
		WithLogger(log)
	accessService := usecase.NewAccessService(repos.Companies, repos.Memberships, roleService, permissionService)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:    cfg,
		Logger:    log,
		Telemetry: provider,
		Metrics:   httpMetrics,
		Database:  pool,
		Cache:     redisClient,
		Services: routes.ServiceSet{
			Tenants:     tenantService,
			Roles:       roleService,
			Permissions: permissionService,
			Memberships: membershipService,
			Access:      accessService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		kafka:  kafkaProducer,
	}, nil
}

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
		if a.kafka != nil {
			_ = a.kafka.Close()
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

	a.logger.Info("starting access API",
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
