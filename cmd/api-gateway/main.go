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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/wallsetting-api/api/swagger"
	"github.com/noah-isme/wallsetting-api/internal/handler"
	internalmiddleware "github.com/noah-isme/wallsetting-api/internal/middleware"
	"github.com/noah-isme/wallsetting-api/internal/repository"
	"github.com/noah-isme/wallsetting-api/internal/service"
	"github.com/noah-isme/wallsetting-api/pkg/cache"
	"github.com/noah-isme/wallsetting-api/pkg/config"
	"github.com/noah-isme/wallsetting-api/pkg/database"
	"github.com/noah-isme/wallsetting-api/pkg/export"
	"github.com/noah-isme/wallsetting-api/pkg/jobs"
	"github.com/noah-isme/wallsetting-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/wallsetting-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/wallsetting-api/pkg/middleware/requestid"
	"github.com/noah-isme/wallsetting-api/pkg/storage"
)

// @title Wall Setting API
// @version 1.0.0
// @description Climbing gym brand profiles, wall-setting schedules and setting-cycle summaries
// @BasePath /api/v1
// @schemes http https
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

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.BrandCache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, brand cache disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	location, err := time.LoadLocation(cfg.Summary.Timezone)
	if err != nil {
		return fmt.Errorf("load summary timezone: %w", err)
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	brandRepo := repository.NewBrandInfoRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	userRepo := repository.NewUserRepository(db)

	brandCache := service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, "brands_info", cfg.BrandCache.TTL, logr, cfg.BrandCache.Enabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	if created, err := authSvc.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	} else if created {
		logr.Info("bootstrap admin created", zap.String("username", cfg.Bootstrap.AdminUsername))
	}

	brandSvc := service.NewBrandInfoService(brandRepo, brandCache, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, validate, logr)

	var source service.SummarySource
	switch cfg.Summary.Source {
	case config.SummarySourceMemory:
		source = service.NewRecordSummarySource(scheduleRepo)
	default:
		source = repository.NewScheduleSummaryRepository(db)
	}
	summarySvc := service.NewScheduleSummaryService(source, metrics, logr, service.ScheduleSummaryServiceConfig{
		Timeout:  cfg.Summary.QueryTimeout,
		Location: location,
	})
	exportSvc := service.NewExportService(summarySvc, export.NewCSVExporter(), export.NewPDFExporter(cfg.Exports.PDFFontPath), logr, cfg.Exports.Enabled)

	imageStore, err := storage.NewLocalStorage(cfg.Images.StorageDir)
	if err != nil {
		return fmt.Errorf("init image storage: %w", err)
	}
	imageSvc := service.NewProfileImageService(brandSvc, imageStore, storage.NewSignedURLSigner(cfg.Images.SignedURLSecret, cfg.Images.SignedURLTTL), nil, metrics, logr, service.ProfileImageConfig{
		APIPrefix:    cfg.APIPrefix,
		PublicPath:   cfg.Images.PublicPath,
		MaxFileSize:  cfg.Images.MaxFileSizeBytes,
		MaxDimension: cfg.Images.MaxDimension,
	})
	imageQueue := jobs.NewQueue("profile_images", imageSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Images.Workers,
		MaxRetries: 2,
		Logger:     logr,
	})
	imageSvc.SetQueue(imageQueue)
	imageQueue.Start(ctx)
	defer imageQueue.Stop()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Routes{
		Auth:          handler.NewAuthHandler(authSvc),
		Brands:        handler.NewBrandInfoHandler(brandSvc),
		ProfileImages: handler.NewProfileImageHandler(imageSvc, cfg.Images.MaxFileSizeBytes),
		Schedules:     handler.NewScheduleHandler(scheduleSvc),
		Summary:       handler.NewScheduleSummaryHandler(summarySvc, exportSvc),
		Tokens:        authSvc,
	}.Register(r.Group(cfg.APIPrefix))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("summary_source", cfg.Summary.Source))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
