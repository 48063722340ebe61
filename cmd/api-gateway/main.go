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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/vgp-compliance-api/api/swagger"
	"github.com/noah-isme/vgp-compliance-api/internal/handler"
	"github.com/noah-isme/vgp-compliance-api/internal/middleware"
	"github.com/noah-isme/vgp-compliance-api/internal/repository"
	"github.com/noah-isme/vgp-compliance-api/internal/service"
	"github.com/noah-isme/vgp-compliance-api/pkg/cache"
	"github.com/noah-isme/vgp-compliance-api/pkg/config"
	"github.com/noah-isme/vgp-compliance-api/pkg/database"
	"github.com/noah-isme/vgp-compliance-api/pkg/datemath"
	"github.com/noah-isme/vgp-compliance-api/pkg/jobs"
	"github.com/noah-isme/vgp-compliance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/vgp-compliance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/vgp-compliance-api/pkg/middleware/requestid"
)

// @title VGP Compliance API
// @version 1.0.0
// @description Periodic inspection (VGP) scheduling, compliance classification and rental gating for fleet equipment.
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	clock, err := datemath.NewClock(cfg.VGP.TimeZone)
	if err != nil {
		logr.Fatal("invalid VGP time zone", zap.Error(err))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	scheduleRepo := repository.NewVGPScheduleRepository(db)
	inspectionRepo := repository.NewVGPInspectionRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.VGP.ReportCacheTTL, logr, cfg.VGP.ReportCacheEnable && redisClient != nil)

	statusSync := service.NewAssetStatusSync(assetRepo, metrics, logr)
	statusQueue := jobs.NewQueue("asset-status", statusSync.Handle, jobs.QueueConfig{
		Workers:    cfg.AssetSync.Workers,
		MaxRetries: cfg.AssetSync.MaxRetries,
		RetryDelay: cfg.AssetSync.RetryDelay,
		Logger:     logr,
	})
	statusQueue.Start(ctx)
	defer statusQueue.Stop()
	statusSync.UseQueue(statusQueue)

	scheduleSvc := service.NewVGPScheduleService(scheduleRepo, assetRepo, clock, validate, logr, service.VGPScheduleConfig{
		SoonWindowDays:   cfg.VGP.SoonWindowDays,
		MaxBackdateYears: cfg.VGP.MaxBackdateYears,
	})
	inspectionSvc := service.NewVGPInspectionService(scheduleRepo, inspectionRepo, statusSync, cacheSvc, metrics, clock, validate, logr)
	complianceSvc := service.NewComplianceService(scheduleRepo, inspectionRepo, clock, logr)
	rentalSvc := service.NewRentalService(complianceSvc, assetRepo, metrics, logr)
	reportSvc := service.NewComplianceReportService(service.ComplianceReportDeps{
		Inspections: inspectionRepo,
		Overdue:     scheduleRepo,
		Compliance:  complianceSvc,
		Assets:      assetRepo,
		Cache:       cacheSvc,
		CacheTTL:    cfg.VGP.ReportCacheTTL,
	}, clock, validate, logr)
	tokenSvc := service.NewTokenService(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeDeps{
		tokens:      tokenSvc,
		audit:       auditRepo,
		schedules:   handler.NewVGPScheduleHandler(scheduleSvc),
		inspections: handler.NewVGPInspectionHandler(inspectionSvc),
		compliance:  handler.NewComplianceHandler(complianceSvc, rentalSvc),
		reports:     handler.NewReportHandler(reportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "vgp_zone", clock.Location().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
	logr.Info("server stopped")
}
