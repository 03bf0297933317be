package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/sma-adp-api/api/swagger"
	internalhandler "github.com/noah-isme/sma-adp-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-adp-api/internal/middleware"
	"github.com/noah-isme/sma-adp-api/internal/models"
	"github.com/noah-isme/sma-adp-api/internal/repository"
	"github.com/noah-isme/sma-adp-api/internal/service"
	"github.com/noah-isme/sma-adp-api/pkg/cache"
	"github.com/noah-isme/sma-adp-api/pkg/config"
	"github.com/noah-isme/sma-adp-api/pkg/database"
	"github.com/noah-isme/sma-adp-api/pkg/jobs"
	"github.com/noah-isme/sma-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-adp-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-adp-api/pkg/storage"
)

// @title SMA ADP API
// @version 0.1.0
// @description Constraint-based class schedule generator service
// @BasePath /
// @schemes http

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

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	courseRepo := repository.NewCourseRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	var cacheRepo service.CacheRepository
	var cacheCloser interface{ Close() error }
	if client, cerr := cache.NewRedis(cfg.Redis); cerr != nil {
		logr.Sugar().Warnw("schedule ranking/prospectus cache disabled", "error", cerr)
	} else {
		cacheCloser = client
		cacheRepo = repository.NewCacheRepository(client, logr)
	}
	if cacheCloser != nil {
		defer cacheCloser.Close()
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.RankCacheTTL, logr, cacheRepo != nil)

	scorer := service.NewFacultyScorer(cacheSvc, logr)
	tokens := service.NewTokenService(cfg.JWT.Secret)

	var schedulerHandler *internalhandler.ScheduleGeneratorHandler
	var schedulerSvc *service.ScheduleGeneratorService
	if cfg.Scheduler.Enabled {
		schedulerSvc = service.NewScheduleGeneratorService(
			courseRepo,
			instructorRepo,
			roomRepo,
			scheduleRepo,
			scorer,
			cacheSvc,
			metricsSvc,
			cfg.Scheduler.GlobalFacultyCap,
			cfg.Scheduler.ProposalTTL,
			logr,
		)
		schedulerHandler = internalhandler.NewScheduleGeneratorHandler(schedulerSvc)
	}

	var exportHandler *internalhandler.ScheduleExportHandler
	if cfg.Export.Enabled && schedulerSvc != nil {
		fileStore, serr := storage.NewLocalStorage(cfg.Export.StorageDir)
		if serr != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", serr)
		}
		signer := storage.NewSignedURLSigner(cfg.Export.SignedURLSecret, cfg.Export.SignedURLTTL)
		exportSvc := service.NewExportService(
			schedulerSvc,
			fileStore,
			signer,
			service.ExportServiceConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Export.SignedURLTTL},
			logr,
			nil,
			nil,
		)

		exportJobRepo := repository.NewExportJobRepository(db)
		worker := service.NewScheduleExportWorker(exportJobRepo, exportSvc, cfg.Export.WorkerRetries, logr)

		workers := cfg.Export.WorkerConcurrency
		if workers <= 0 {
			workers = 1
		}
		queueCfg := jobs.QueueConfig{
			Workers:    workers,
			BufferSize: workers * 4,
			MaxRetries: cfg.Export.WorkerRetries,
			RetryDelay: 5 * time.Second,
			Logger:     logr,
		}
		queueCtx, cancel := context.WithCancel(context.Background())
		exportQueue := jobs.NewQueue("schedule-exports", worker.Handle, queueCfg)
		exportQueue.Start(queueCtx)
		defer func() {
			cancel()
			exportQueue.Stop()
		}()

		scheduleExportSvc := service.NewScheduleExportService(exportJobRepo, exportQueue, exportSvc, logr, service.ScheduleExportServiceConfig{
			ResultTTL:       cfg.Export.SignedURLTTL,
			CleanupInterval: cfg.Export.CleanupInterval,
			MaxRetries:      cfg.Export.WorkerRetries,
		})
		scheduleExportSvc.RecoverPendingJobs(queueCtx)
		scheduleExportSvc.StartCleanup(queueCtx)
		exportHandler = internalhandler.NewScheduleExportHandler(scheduleExportSvc)
	}

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(tokens))

	if schedulerHandler != nil {
		schedulesGroup := secured.Group("/schedules")
		schedulesGroup.POST("/generate",
			internalmiddleware.RequireRoles(models.RoleRegistrar, models.RoleDepartmentHead, models.RoleCampusAdmin),
			internalmiddleware.Audit(logr, "generate", "schedule"),
			schedulerHandler.Generate)
		schedulesGroup.POST("/save",
			internalmiddleware.RequireRoles(models.RoleRegistrar, models.RoleDepartmentHead, models.RoleCampusAdmin),
			internalmiddleware.Audit(logr, "save", "schedule"),
			schedulerHandler.Save)
		schedulesGroup.GET("", schedulerHandler.List)
		schedulesGroup.GET("/prospectus", schedulerHandler.Prospectus)

		if exportHandler != nil {
			schedulesGroup.POST("/export",
				internalmiddleware.RequireRoles(models.RoleRegistrar, models.RoleDepartmentHead, models.RoleCampusAdmin),
				internalmiddleware.Audit(logr, "export", "schedule"),
				exportHandler.CreateExport)
			schedulesGroup.GET("/export/:id", exportHandler.ExportStatus)
			schedulesGroup.GET("/export/download/:token", exportHandler.DownloadExport)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
