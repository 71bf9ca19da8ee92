package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusview/attendance-api/internal/cache"
	"github.com/campusview/attendance-api/internal/dto"
	"github.com/campusview/attendance-api/internal/handler"
	"github.com/campusview/attendance-api/internal/middleware"
	"github.com/campusview/attendance-api/internal/portal"
	"github.com/campusview/attendance-api/internal/repository"
	"github.com/campusview/attendance-api/internal/service"
	"github.com/campusview/attendance-api/pkg/config"
	"github.com/campusview/attendance-api/pkg/logger"
	corsmiddleware "github.com/campusview/attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusview/attendance-api/pkg/middleware/requestid"
)

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
	dto.RegisterValidators()

	var snapshots cache.SnapshotCache
	switch cfg.Scraper.CacheBackend {
	case config.CacheBackendRedis:
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis unavailable", "error", err)
		}
		snapshots = cache.NewRedis(client, cfg.Scraper.CacheTTL, logr)
	default:
		snapshots = cache.NewMemory(cfg.Scraper.CacheTTL)
	}

	metricsSvc := service.NewMetricsService()
	portalClient := portal.NewClient(cfg.Portal, cfg.Scraper.AttemptTimeout, logr)

	attendanceSvc := service.NewAttendanceService(service.AttendanceServiceParams{
		Fetcher: portalClient,
		Cache:   snapshots,
		Metrics: metricsSvc,
		Logger:  logr,
		Config: service.AttendanceServiceConfig{
			BatchSize:   cfg.Scraper.BatchSize,
			RetryCount:  cfg.Scraper.RetryCount,
			BackoffBase: cfg.Scraper.BackoffBase,
			BatchDelay:  cfg.Scraper.BatchDelay,
		},
	})

	groupRepo, err := repository.NewGroupRepository(cfg.Groups.FilePath, logr)
	if err != nil {
		logr.Sugar().Fatalw("group store unavailable", "error", err)
	}
	groupSvc := service.NewGroupService(groupRepo, cfg.Portal.Campuses, cfg.Groups.MaxRolls, logr)

	var refreshSvc *service.RefreshService
	if cfg.Refresh.Enabled {
		refreshSvc = service.NewRefreshService(attendanceSvc, service.RefreshServiceConfig{
			CacheTTL: cfg.Scraper.CacheTTL,
			Lead:     cfg.Refresh.Lead,
			Workers:  cfg.Refresh.Workers,
		}, logr)
		refreshSvc.Start(context.Background())
		defer refreshSvc.Stop()
	}

	groupHandler := handler.NewGroupHandler(groupSvc)
	var marker interface {
		MarkServed(name string, rollNumbers []string, campus string)
	}
	if refreshSvc != nil {
		marker = refreshSvc
	}
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, groupSvc, marker)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", handler.Metrics(metricsSvc))

	api := r.Group(cfg.APIPrefix)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
		api.Use(limiter.Handler())
	}

	api.GET("/groups", groupHandler.List)
	api.POST("/groups", groupHandler.Create)
	api.PUT("/groups/:name", groupHandler.Update)
	api.DELETE("/groups/:name", groupHandler.Delete)
	api.GET("/groups/:name/attendance", attendanceHandler.GetGroup)
	api.GET("/groups/:name/attendance/export", attendanceHandler.Export)
	api.GET("/attendance/:roll", attendanceHandler.GetSingle)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
