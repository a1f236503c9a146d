package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/app/service"
	"github.com/testimonialhq/testimonials-backend/internal/cache"
	"github.com/testimonialhq/testimonials-backend/pkg/logger"
)

// MaintenanceScheduler runs periodic housekeeping: warming the stats
// caches and purging old rejected testimonials.
type MaintenanceScheduler struct {
	cron               *cron.Cron
	testimonialService *service.TestimonialService
	repo               *repository.TestimonialRepository
	cache              *cache.Service
	cfg                *config.TestimonialsConfig
}

func NewMaintenanceScheduler(
	testimonialService *service.TestimonialService,
	repo *repository.TestimonialRepository,
	cacheService *cache.Service,
	cfg *config.TestimonialsConfig,
) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cron:               cron.New(),
		testimonialService: testimonialService,
		repo:               repo,
		cache:              cacheService,
		cfg:                cfg,
	}
}

func (s *MaintenanceScheduler) Start() error {
	// Warm the stats and featured caches hourly so the first request
	// after expiry does not pay the aggregation cost.
	if _, err := s.cron.AddFunc("0 * * * *", s.warmCaches); err != nil {
		logger.Error("Failed to schedule cache warm-up", err, nil)
		return err
	}

	// Purge old rejected testimonials nightly at 03:00.
	if s.cfg.RetentionDays > 0 {
		if _, err := s.cron.AddFunc("0 3 * * *", s.purgeRejected); err != nil {
			logger.Error("Failed to schedule retention sweep", err, nil)
			return err
		}
	}

	s.cron.Start()
	logger.Info("Maintenance scheduler started", map[string]interface{}{
		"retention_days": s.cfg.RetentionDays,
	})
	return nil
}

func (s *MaintenanceScheduler) Stop() {
	s.cron.Stop()
	logger.Info("Maintenance scheduler stopped", nil)
}

func (s *MaintenanceScheduler) warmCaches() {
	ctx := context.Background()

	if _, err := s.testimonialService.Stats(ctx); err != nil {
		logger.Error("Scheduled stats warm-up failed", err, nil)
	}
	if _, err := s.testimonialService.Featured(ctx, 0); err != nil {
		logger.Error("Scheduled featured warm-up failed", err, nil)
	}
}

func (s *MaintenanceScheduler) purgeRejected() {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)

	count, err := s.repo.DeleteRejectedBefore(cutoff)
	if err != nil {
		logger.Error("Retention sweep failed", err, nil)
		return
	}
	if count > 0 {
		s.cache.InvalidateLists(context.Background())
	}

	logger.Info("Retention sweep finished", map[string]interface{}{
		"purged": count,
		"cutoff": cutoff.Format(time.RFC3339),
	})
}
