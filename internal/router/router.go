package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-hub-api/internal/handler"
	"github.com/noah-isme/alumni-hub-api/internal/middleware"
	"github.com/noah-isme/alumni-hub-api/internal/models"
	"github.com/noah-isme/alumni-hub-api/internal/service"
	"github.com/noah-isme/alumni-hub-api/pkg/config"
	"github.com/noah-isme/alumni-hub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/alumni-hub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/alumni-hub-api/pkg/middleware/requestid"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthService      *service.AuthService
	Metrics          *service.MetricsService
	Logger           *zap.Logger
	AuthHandler      *handler.AuthHandler
	AlumniHandler    *handler.AlumniHandler
	DashboardHandler *handler.DashboardHandler
	MetricsHandler   *handler.MetricsHandler
}

// New builds the gin engine with every route registered.
func New(cfg *config.Config, deps Dependencies) *gin.Engine {
	logr := deps.Logger
	if logr == nil {
		logr = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(deps.Metrics, "/metrics"))
	}

	Register(r, cfg, deps)
	return r
}

// Register wires the HTTP routes into the engine.
func Register(r *gin.Engine, cfg *config.Config, deps Dependencies) {
	if deps.MetricsHandler != nil {
		r.GET("/health", deps.MetricsHandler.Health)
		r.GET("/ready", deps.MetricsHandler.Ready)
		if cfg.Metrics.Enabled {
			r.GET("/metrics", deps.MetricsHandler.Prometheus)
		}
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.WithResponseMeta())

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.POST("/login", deps.AuthHandler.Login)
		auth.POST("/logout", middleware.JWT(deps.AuthService), deps.AuthHandler.Logout)
		auth.GET("/session", middleware.JWT(deps.AuthService), deps.AuthHandler.Session)
	}

	secured := api.Group("", middleware.JWT(deps.AuthService))
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	if deps.AlumniHandler != nil {
		alumni := secured.Group("/alumni")
		alumni.GET("", deps.AlumniHandler.List)
		alumni.GET("/filters", deps.AlumniHandler.Filters)
		alumni.GET("/export", adminOnly, deps.AlumniHandler.ExportCSV)
		alumni.GET("/export.pdf", adminOnly, deps.AlumniHandler.ExportPDF)
		alumni.POST("/import", adminOnly, deps.AlumniHandler.Import)
		alumni.GET("/:id", deps.AlumniHandler.Get)
		alumni.POST("", adminOnly, deps.AlumniHandler.Create)
		alumni.PUT("/:id", adminOnly, deps.AlumniHandler.Update)
		alumni.DELETE("/:id", adminOnly, deps.AlumniHandler.Delete)
		alumni.POST("/:id/verification", adminOnly, deps.AlumniHandler.ToggleVerification)
	}

	if deps.DashboardHandler != nil {
		secured.GET("/dashboard", deps.DashboardHandler.Summary)
	}
}
