package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/alumni-hub-api/api/swagger"
	"github.com/noah-isme/alumni-hub-api/internal/dto"
	"github.com/noah-isme/alumni-hub-api/internal/handler"
	"github.com/noah-isme/alumni-hub-api/internal/repository"
	"github.com/noah-isme/alumni-hub-api/internal/router"
	"github.com/noah-isme/alumni-hub-api/internal/service"
	"github.com/noah-isme/alumni-hub-api/pkg/config"
	"github.com/noah-isme/alumni-hub-api/pkg/kvstore"
	"github.com/noah-isme/alumni-hub-api/pkg/logger"
)

// @title Alumni Hub API
// @version 1.0.0
// @description Alumni directory: records, search, dashboard statistics and CSV/PDF interchange
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := kvstore.Open(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer store.Close() //nolint:errcheck

	validate := validator.New()
	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Dashboard.CacheEnabled {
		client, err := cacheClient(ctx, cfg, store)
		if err != nil {
			logr.Warn("dashboard cache disabled", zap.Error(err))
		} else {
			cacheSvc = service.NewCacheService(
				repository.NewCacheRepository(client, logr),
				metrics,
				logr,
				service.CacheServiceConfig{Enabled: true, DefaultTTL: cfg.Dashboard.CacheTTL},
			)
		}
	}

	alumniParams := service.AlumniServiceParams{
		Repo:      repository.NewAlumniRepository(store, cfg.Storage.DataKey),
		Metrics:   metrics,
		Validator: validate,
		Logger:    logr,
		Config: service.AlumniServiceConfig{
			SeedDemoData: cfg.Storage.SeedDemoData,
			PercentBase:  dto.PercentBase(cfg.Dashboard.PercentBase),
			TopYears:     cfg.Dashboard.TopYears,
		},
	}
	if cacheSvc != nil {
		alumniParams.Cache = cacheSvc
	}
	alumniSvc := service.NewAlumniService(alumniParams)
	if err := alumniSvc.Load(ctx); err != nil {
		logr.Fatal("failed to load alumni collection", zap.Error(err))
	}

	adminHash := cfg.Accounts.AdminPasswordHash
	if adminHash == "" {
		adminHash, err = service.HashPassword(cfg.Accounts.AdminPassword)
		if err != nil {
			logr.Fatal("failed to hash admin password", zap.Error(err))
		}
	}
	authSvc := service.NewAuthService(
		repository.NewSessionRepository(store, cfg.Storage.SessionKey),
		validate,
		logr,
		service.AuthConfig{
			AccessTokenSecret: cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.Expiration,
			Issuer:            "alumni-hub-api",
			AdminEmail:        cfg.Accounts.AdminEmail,
			AdminName:         cfg.Accounts.AdminName,
			AdminPasswordHash: adminHash,
			GuestEmail:        cfg.Accounts.GuestEmail,
			GuestName:         cfg.Accounts.GuestName,
		},
	)

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Stats:  alumniSvc,
		Cache:  cacheSvc,
		Logger: logr,
		Config: service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	probe := func(ctx context.Context) error {
		_, _, err := store.Get(ctx, cfg.Storage.DataKey)
		return err
	}

	engine := router.New(cfg, router.Dependencies{
		AuthService:      authSvc,
		Metrics:          metrics,
		Logger:           logr,
		AuthHandler:      handler.NewAuthHandler(authSvc),
		AlumniHandler:    handler.NewAlumniHandler(alumniSvc, cfg.Import.MaxBytes),
		DashboardHandler: handler.NewDashboardHandler(dashboardSvc),
		MetricsHandler:   handler.NewMetricsHandler(metrics, probe),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("storage", cfg.Storage.Backend),
			zap.Bool("dashboard_cache", cacheSvc.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// cacheClient reuses the storage connection when records already live in Redis.
func cacheClient(ctx context.Context, cfg *config.Config, store kvstore.Store) (*redis.Client, error) {
	if rs, ok := store.(*kvstore.RedisStore); ok {
		return rs.Client(), nil
	}
	return kvstore.DialRedis(ctx, cfg.Redis)
}
