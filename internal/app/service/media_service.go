package service

import (
	"context"
	"errors"

	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/cache"
	"github.com/testimonialhq/testimonials-backend/internal/storage"
	"github.com/testimonialhq/testimonials-backend/pkg/logger"
	"gorm.io/gorm"
)

// ObjectStorage is the slice of the storage layer the media service
// needs. *storage.S3Storage implements it.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, filename, contentType, prefix string) (*storage.PresignedURLResponse, error)
	FileURL(key string) string
	DeleteObject(ctx context.Context, key string) error
}

type MediaService struct {
	repo            *repository.MediaRepository
	testimonialRepo *repository.TestimonialRepository
	storage         ObjectStorage
	cache           *cache.Service
	validator       *Validator
	cfg             *config.TestimonialsConfig
}

func NewMediaService(
	repo *repository.MediaRepository,
	testimonialRepo *repository.TestimonialRepository,
	objectStorage ObjectStorage,
	cacheService *cache.Service,
	validator *Validator,
	cfg *config.TestimonialsConfig,
) *MediaService {
	return &MediaService{
		repo:            repo,
		testimonialRepo: testimonialRepo,
		storage:         objectStorage,
		cache:           cacheService,
		validator:       validator,
		cfg:             cfg,
	}
}

// PresignUpload validates the file and returns a presigned upload URL.
// The caller uploads directly to object storage, then registers the
// file with Attach.
func (s *MediaService) PresignUpload(ctx context.Context, testimonialID uint, filename, contentType string, size int64, viewer Viewer) (*storage.PresignedURLResponse, error) {
	if !s.cfg.MediaEnabled {
		return nil, ErrMediaDisabled
	}
	if err := s.validator.ValidateFile(filename, size); err != nil {
		return nil, err
	}
	if _, err := s.loadOwned(testimonialID, viewer); err != nil {
		return nil, err
	}
	return s.storage.PresignUpload(ctx, filename, contentType, s.cfg.UploadPrefix)
}

type AttachMediaInput struct {
	ObjectKey   string `json:"object_key" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	FileSize    int64  `json:"file_size"`
	Title       string `json:"title"`
	Description string `json:"description"`
	IsPrimary   bool   `json:"is_primary"`
	Order       int    `json:"order"`
}

// Attach registers an uploaded object as testimonial media. The media
// type is derived from the filename extension.
func (s *MediaService) Attach(ctx context.Context, testimonialID uint, input AttachMediaInput, viewer Viewer) (*model.TestimonialMedia, error) {
	if !s.cfg.MediaEnabled {
		return nil, ErrMediaDisabled
	}
	if err := s.validator.ValidateFile(input.Filename, input.FileSize); err != nil {
		return nil, err
	}
	if _, err := s.loadOwned(testimonialID, viewer); err != nil {
		return nil, err
	}

	media := &model.TestimonialMedia{
		TestimonialID: testimonialID,
		FileURL:       s.storage.FileURL(input.ObjectKey),
		ObjectKey:     input.ObjectKey,
		MediaType:     model.DetectMediaType(input.Filename),
		FileSize:      input.FileSize,
		Title:         input.Title,
		Description:   input.Description,
		IsPrimary:     input.IsPrimary,
		Order:         input.Order,
	}

	if err := s.repo.Create(media); err != nil {
		logger.Error("Failed to attach media", err, map[string]interface{}{
			"testimonial_id": testimonialID,
		})
		return nil, err
	}

	s.cache.InvalidateMedia(ctx, media.ID, testimonialID)

	logger.Info("Media attached", map[string]interface{}{
		"media_id":       media.ID,
		"testimonial_id": testimonialID,
		"media_type":     media.MediaType,
	})
	return media, nil
}

// Get returns one media record.
func (s *MediaService) Get(ctx context.Context, id uint) (*model.TestimonialMedia, error) {
	var media model.TestimonialMedia
	err := s.cache.GetOrCompute(ctx, cache.KeyMedia(id), cache.ClassStable, &media, func() error {
		loaded, err := s.repo.GetByID(id)
		if err != nil {
			return err
		}
		media = *loaded
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	return &media, nil
}

// ListByTestimonial returns a testimonial's media, display order first.
func (s *MediaService) ListByTestimonial(testimonialID uint) ([]model.TestimonialMedia, error) {
	return s.repo.ListByTestimonial(testimonialID)
}

type UpdateMediaInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsPrimary   *bool   `json:"is_primary"`
	Order       *int    `json:"order"`
}

// Update edits media metadata. Marking a record primary demotes its
// siblings.
func (s *MediaService) Update(ctx context.Context, id uint, input UpdateMediaInput, viewer Viewer) (*model.TestimonialMedia, error) {
	media, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	if _, err := s.loadOwned(media.TestimonialID, viewer); err != nil {
		return nil, err
	}

	if input.Title != nil {
		media.Title = *input.Title
	}
	if input.Description != nil {
		media.Description = *input.Description
	}
	if input.IsPrimary != nil {
		media.IsPrimary = *input.IsPrimary
	}
	if input.Order != nil {
		media.Order = *input.Order
	}

	if err := s.repo.Update(media); err != nil {
		logger.Error("Failed to update media", err, map[string]interface{}{
			"media_id": id,
		})
		return nil, err
	}

	s.cache.InvalidateMedia(ctx, id, media.TestimonialID)
	return media, nil
}

// Delete removes a media record and best-effort deletes the stored
// object. A failed object delete is logged, not surfaced; the orphan is
// harmless.
func (s *MediaService) Delete(ctx context.Context, id uint, viewer Viewer) error {
	media, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return err
	}
	if _, err := s.loadOwned(media.TestimonialID, viewer); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		logger.Error("Failed to delete media", err, map[string]interface{}{
			"media_id": id,
		})
		return err
	}

	if media.ObjectKey != "" {
		if err := s.storage.DeleteObject(ctx, media.ObjectKey); err != nil {
			logger.Warn("Failed to delete stored object", map[string]interface{}{
				"media_id": id,
				"key":      media.ObjectKey,
				"error":    err.Error(),
			})
		}
	}

	s.cache.InvalidateMedia(ctx, id, media.TestimonialID)

	logger.Info("Media deleted", map[string]interface{}{
		"media_id":       id,
		"testimonial_id": media.TestimonialID,
	})
	return nil
}

// Stats returns media aggregates, cached with the stats TTL.
func (s *MediaService) Stats(ctx context.Context) (*repository.MediaStats, error) {
	var stats repository.MediaStats
	err := s.cache.GetOrCompute(ctx, cache.KeyMediaStats(), cache.ClassStats, &stats, func() error {
		computed, err := s.repo.GetStats()
		if err != nil {
			return err
		}
		stats = *computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// loadOwned fetches the testimonial and checks the viewer may manage
// its media: the author or a moderator.
func (s *MediaService) loadOwned(testimonialID uint, viewer Viewer) (*model.Testimonial, error) {
	t, err := s.testimonialRepo.GetByID(testimonialID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestimonialNotFound
		}
		return nil, err
	}
	if !viewer.owns(t) && !viewer.IsModerator(s.cfg.ModerationRoles) {
		return nil, ErrPermissionDenied
	}
	return t, nil
}
