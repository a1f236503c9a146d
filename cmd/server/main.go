package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/controller"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/app/service"
	"github.com/testimonialhq/testimonials-backend/internal/cache"
	"github.com/testimonialhq/testimonials-backend/internal/db"
	"github.com/testimonialhq/testimonials-backend/internal/middleware"
	"github.com/testimonialhq/testimonials-backend/internal/notify"
	"github.com/testimonialhq/testimonials-backend/internal/router"
	"github.com/testimonialhq/testimonials-backend/internal/scheduler"
	"github.com/testimonialhq/testimonials-backend/internal/storage"
	"github.com/testimonialhq/testimonials-backend/internal/task"
	"github.com/testimonialhq/testimonials-backend/internal/ws"
	"github.com/testimonialhq/testimonials-backend/pkg/logger"
	"github.com/testimonialhq/testimonials-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Testimonials Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err, nil)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Cache: Redis when reachable, in-process memory otherwise.
	var cacheBackend cache.Backend
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", map[string]interface{}{
			"error": err.Error(),
		})
		cacheBackend = cache.NewMemoryBackend()
	} else {
		defer redis.Close()
		cacheBackend = cache.NewRedisBackend(redis.GetClient())
	}
	cacheService := cache.NewService(cacheBackend, &cfg.Testimonials)

	// Background task executor and notifications
	executor := task.NewExecutor(cfg.Testimonials.AsyncWorkers, 0)
	defer executor.Stop()

	mailer := notify.NewSMTPMailer(cfg.SMTP)
	notifier := notify.NewNotifier(mailer, executor, &cfg.Testimonials)

	// Live moderation event feed
	hub := ws.NewHub()
	go hub.Run()

	// Object storage for media uploads
	objectStorage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	testimonialRepo := repository.NewTestimonialRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	mediaRepo := repository.NewMediaRepository(db.GetDB())
	auditRepo := repository.NewModerationLogRepository(db.GetDB())

	// Services
	validator := service.NewValidator(&cfg.Testimonials)
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	testimonialService := service.NewTestimonialService(
		testimonialRepo, categoryRepo, auditRepo,
		cacheService, notifier, hub, validator, &cfg.Testimonials,
	)
	moderationService := service.NewModerationService(
		testimonialRepo, auditRepo, cacheService, notifier, hub, &cfg.Testimonials,
	)
	categoryService := service.NewCategoryService(categoryRepo, cacheService, &cfg.Testimonials)
	mediaService := service.NewMediaService(
		mediaRepo, testimonialRepo, objectStorage, cacheService, validator, &cfg.Testimonials,
	)
	dashboardService := service.NewDashboardService(
		testimonialRepo, mediaRepo, cacheService, &cfg.Testimonials,
	)

	// Controllers
	authController := controller.NewAuthController(authService)
	testimonialController := controller.NewTestimonialController(testimonialService)
	moderationController := controller.NewModerationController(moderationService)
	categoryController := controller.NewCategoryController(categoryService)
	mediaController := controller.NewMediaController(mediaService)
	dashboardController := controller.NewDashboardController(dashboardService)
	eventController := controller.NewEventController(hub)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.Testimonials.ModerationRoles)

	// Periodic housekeeping
	maintenance := scheduler.NewMaintenanceScheduler(
		testimonialService, testimonialRepo, cacheService, &cfg.Testimonials,
	)
	if err := maintenance.Start(); err != nil {
		logger.Error("Failed to start maintenance scheduler", err, nil)
	}
	defer maintenance.Stop()

	r := router.NewRouter(
		authController,
		testimonialController,
		moderationController,
		categoryController,
		mediaController,
		dashboardController,
		eventController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
