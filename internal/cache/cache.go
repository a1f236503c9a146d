package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/pkg/logger"
)

// ErrMiss is returned by a Backend when a key does not exist.
var ErrMiss = errors.New("cache miss")

// Backend is the raw key/value store behind the cache service.
// Tests swap in a fake; production uses Redis.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Class selects the TTL applied to a cached value.
type Class int

const (
	ClassVolatile Class = iota // frequently changing data (dashboards, counts)
	ClassStats                 // computed aggregates
	ClassStable                // rarely changing data (featured lists)
)

// Service is the namespaced cache for testimonial data. Backend failures
// are logged and absorbed; callers always get a usable result.
type Service struct {
	backend Backend
	enabled bool

	ttlVolatile time.Duration
	ttlStats    time.Duration
	ttlStable   time.Duration
}

func NewService(backend Backend, cfg *config.TestimonialsConfig) *Service {
	return &Service{
		backend:     backend,
		enabled:     cfg.CacheEnabled && backend != nil,
		ttlVolatile: cfg.CacheTTLVolatile,
		ttlStats:    cfg.CacheTTLStats,
		ttlStable:   cfg.CacheTTLStable,
	}
}

// Enabled reports whether the cache is active.
func (s *Service) Enabled() bool {
	return s.enabled
}

func (s *Service) ttl(class Class) time.Duration {
	switch class {
	case ClassStats:
		return s.ttlStats
	case ClassStable:
		return s.ttlStable
	default:
		return s.ttlVolatile
	}
}

// Get loads a cached value into dest. Returns false on miss, disabled
// cache, backend error, or undecodable payload.
func (s *Service) Get(ctx context.Context, key string, dest interface{}) bool {
	if !s.enabled {
		return false
	}

	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logger.Warn("Cache get failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Warn("Cache payload undecodable, treating as miss", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return false
	}
	return true
}

// Set stores a value under key with the TTL of its class. Best-effort.
func (s *Service) Set(ctx context.Context, key string, value interface{}, class Class) {
	if !s.enabled {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		logger.Warn("Cache set skipped, value not serializable", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	if err := s.backend.Set(ctx, key, string(raw), s.ttl(class)); err != nil {
		logger.Warn("Cache set failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Delete removes keys. Best-effort.
func (s *Service) Delete(ctx context.Context, keys ...string) {
	if !s.enabled || len(keys) == 0 {
		return
	}

	if err := s.backend.Delete(ctx, keys...); err != nil {
		logger.Warn("Cache delete failed", map[string]interface{}{
			"keys":  keys,
			"error": err.Error(),
		})
	}
}

// GetOrCompute returns the cached value for key, or runs compute to fill
// dest and caches the result. compute runs on miss, backend failure, or a
// disabled cache; its error is the only one surfaced to the caller.
func (s *Service) GetOrCompute(ctx context.Context, key string, class Class, dest interface{}, compute func() error) error {
	if s.Get(ctx, key, dest) {
		return nil
	}

	if err := compute(); err != nil {
		return err
	}

	s.Set(ctx, key, dest, class)
	return nil
}

// InvalidateTestimonial drops every key derived from one testimonial:
// the detail key, all aggregate list keys, and the category/user keys
// it contributes to.
func (s *Service) InvalidateTestimonial(ctx context.Context, id uint, categoryID, authorID *uint) {
	keys := append([]string{KeyTestimonial(id)}, listKeys()...)
	if categoryID != nil {
		keys = append(keys,
			KeyCategory(*categoryID),
			KeyCategoryTestimonials(*categoryID),
			KeyCategoryStats(*categoryID),
		)
	}
	if authorID != nil {
		keys = append(keys,
			KeyUserTestimonials(*authorID),
			KeyUserStats(*authorID),
		)
	}
	s.Delete(ctx, keys...)
}

// InvalidateCategory drops the keys derived from one category.
func (s *Service) InvalidateCategory(ctx context.Context, id uint) {
	s.Delete(ctx,
		KeyCategory(id),
		KeyCategoryTestimonials(id),
		KeyCategoryStats(id),
		KeyStats(),
		KeyCounts(),
		KeyDashboardOverview(),
		KeyDashboardCharts(),
	)
}

// InvalidateMedia drops media keys plus the parent testimonial's detail key.
func (s *Service) InvalidateMedia(ctx context.Context, id uint, testimonialID uint) {
	s.Delete(ctx,
		KeyMedia(id),
		KeyMediaStats(),
		KeyTestimonial(testimonialID),
		KeyDashboardOverview(),
	)
}

// InvalidateLists drops all aggregate keys. Used after bulk operations
// where per-record invalidation would be wasteful.
func (s *Service) InvalidateLists(ctx context.Context) {
	s.Delete(ctx, listKeys()...)
}
