package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ostanin/backoffice-access/internal/infra/config"
	"github.com/ostanin/backoffice-access/internal/infra/telemetry"
	"github.com/ostanin/backoffice-access/internal/transport/http/handlers"
	"github.com/ostanin/backoffice-access/internal/transport/http/middleware"
	"github.com/ostanin/backoffice-access/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Tenants     *usecase.TenantService
	Roles       *usecase.RoleService
	Permissions *usecase.PermissionService
	Memberships *usecase.MembershipService
	Access      *usecase.AccessService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Services  ServiceSet
	Telemetry *telemetry.Provider
	Metrics   *middleware.HTTPMetrics
	Database  DatabaseChecker
	Cache     CacheChecker
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
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		companiesGroup := api.Group("/companies")

		tenantHandler := handlers.NewTenantHandler(deps.Services.Tenants)
		tenantHandler.RegisterRoutes(companiesGroup)

		rolesGroup := api.Group("/roles")
		usersGroup := api.Group("/users")

		roleHandler := handlers.NewRoleHandler(deps.Services.Roles, deps.Services.Permissions)
		roleHandler.RegisterRoutes(rolesGroup, companiesGroup, usersGroup)

		membershipHandler := handlers.NewMembershipHandler(deps.Services.Memberships)
		membershipHandler.RegisterRoutes(companiesGroup)

		permissionsGroup := api.Group("/permissions")
		permissionHandler := handlers.NewPermissionHandler(deps.Services.Permissions)
		permissionHandler.RegisterRoutes(permissionsGroup)

		accessGroup := api.Group("/access")
		accessHandler := handlers.NewAccessHandler(deps.Services.Access, deps.Telemetry)
		accessHandler.RegisterRoutes(accessGroup)
	}

	return r
}
