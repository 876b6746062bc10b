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

	_ "github.com/noah-isme/registro-academico-api/api/swagger"
	"github.com/noah-isme/registro-academico-api/internal/handler"
	"github.com/noah-isme/registro-academico-api/internal/middleware"
	"github.com/noah-isme/registro-academico-api/internal/models"
	"github.com/noah-isme/registro-academico-api/internal/repository"
	"github.com/noah-isme/registro-academico-api/internal/service"
	"github.com/noah-isme/registro-academico-api/pkg/cache"
	"github.com/noah-isme/registro-academico-api/pkg/config"
	"github.com/noah-isme/registro-academico-api/pkg/database"
	"github.com/noah-isme/registro-academico-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/registro-academico-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/registro-academico-api/pkg/middleware/requestid"
	"github.com/noah-isme/registro-academico-api/pkg/storage"
)

// @title Registro Academico API
// @version 1.0.0
// @description Course registration change requests with dean approval workflow
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)

	// Services.
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Monitoring.CacheTTL, logr, true)
	}

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "registro-academico-api",
	})

	calendarSvc := service.NewCalendarService(calendarRepo, userRepo, logr)
	if err := calendarSvc.Warm(context.Background(), cfg.Faculty.ID); err != nil {
		logr.Sugar().Warnw("failed to warm calendar windows", "faculty", cfg.Faculty.ID, "error", err)
	}

	scheduleSvc := service.NewScheduleService(groupRepo, studentRepo, logr)
	capacitySvc := service.NewCapacityService(logr)
	progressSvc := service.NewProgressService(studentRepo, subjectRepo, logr)
	monitoringSvc := service.NewMonitoringService(groupRepo, capacitySvc, cacheSvc, cfg.Monitoring.CacheTTL, logr)

	requestOpts := []service.RequestServiceOption{
		service.WithDecisionObserver(metricsSvc),
	}

	var receiptSvc *service.ReceiptService
	if cfg.Receipts.Enabled {
		store, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init receipt storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Receipts.SignedURLSecret, cfg.Receipts.SignedURLTTL)
		receiptSvc = service.NewReceiptService(studentRepo, groupRepo, store, signer, service.ReceiptServiceConfig{
			Workers:    cfg.Receipts.WorkerConcurrency,
			MaxRetries: cfg.Receipts.WorkerRetries,
		}, logr)
		receiptSvc.Start(context.Background())
		defer receiptSvc.Stop()
		requestOpts = append(requestOpts, service.WithReceiptIssuer(receiptSvc))
	}

	requestSvc := service.NewRequestService(
		requestRepo, groupRepo, studentRepo, userRepo,
		calendarSvc, scheduleSvc, capacitySvc, logr,
		requestOpts...,
	)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	requestHandler := handler.NewRequestHandler(requestSvc, nil)
	if receiptSvc != nil {
		requestHandler = handler.NewRequestHandler(requestSvc, receiptSvc)
	}
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	monitoringHandler := handler.NewMonitoringHandler(monitoringSvc, metricsSvc)
	studentHandler := handler.NewStudentHandler(progressSvc, studentRepo)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsSvc))
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)

	if cfg.Receipts.Enabled {
		receiptDownload := handler.NewReceiptHandler(receiptSvc)
		api.GET("/receipts/download", receiptDownload.Download)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	requests := protected.Group("/requests")
	requests.POST("", middleware.RequireCapability(models.CapSubmitRequests), requestHandler.Create)
	requests.GET("", requestHandler.List)
	requests.GET("/:id", requestHandler.Get)
	requests.POST("/:id/decision", middleware.RequireCapability(models.CapReviewRequests), requestHandler.Decide)
	requests.GET("/:id/receipt", requestHandler.ReceiptURL)

	calendar := protected.Group("/calendar")
	calendar.GET("/windows", calendarHandler.Windows)
	calendar.PUT("/windows", middleware.RequireCapability(models.CapConfigure), calendarHandler.Configure)

	monitoring := protected.Group("/monitoring")
	monitoring.Use(middleware.RequireCapability(models.CapReviewRequests))
	monitoring.GET("/occupancy", monitoringHandler.Occupancy)
	monitoring.GET("/metrics", monitoringHandler.Metrics)

	students := protected.Group("/students")
	students.GET("/me/semaforo", middleware.RequireCapability(models.CapSubmitRequests), studentHandler.MySemaforo)
	students.GET("/:id/semaforo", middleware.RequireCapability(models.CapReviewRequests), studentHandler.Semaforo)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "faculty", cfg.Faculty.ID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
