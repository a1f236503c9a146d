package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/cache"
	"github.com/testimonialhq/testimonials-backend/pkg/logger"
	"github.com/testimonialhq/testimonials-backend/pkg/util"
	"gorm.io/gorm"
)

type CategoryService struct {
	repo  *repository.CategoryRepository
	cache *cache.Service
	cfg   *config.TestimonialsConfig
}

func NewCategoryService(repo *repository.CategoryRepository, cacheService *cache.Service, cfg *config.TestimonialsConfig) *CategoryService {
	return &CategoryService{repo: repo, cache: cacheService, cfg: cfg}
}

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
	Order       *int   `json:"order"`
}

// Create adds a category. Moderators only. The name is title-cased and
// the slug is derived from it, deduplicated with numeric suffixes.
func (s *CategoryService) Create(ctx context.Context, input CategoryInput, viewer Viewer) (*model.TestimonialCategory, error) {
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		return nil, ErrPermissionDenied
	}

	name := normalizeCategoryName(input.Name)
	if name == "" {
		return nil, errors.New("category name is required")
	}

	slug, err := s.uniqueSlug(name)
	if err != nil {
		return nil, err
	}

	category := &model.TestimonialCategory{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		IsActive:    true,
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.Order != nil {
		category.Order = *input.Order
	}

	if err := s.repo.Create(category); err != nil {
		logger.Error("Failed to create category", err, nil)
		return nil, err
	}

	s.cache.InvalidateCategory(ctx, category.ID)

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return category, nil
}

// Get returns a category by id.
func (s *CategoryService) Get(ctx context.Context, id uint) (*model.TestimonialCategory, error) {
	var category model.TestimonialCategory
	err := s.cache.GetOrCompute(ctx, cache.KeyCategory(id), cache.ClassStable, &category, func() error {
		loaded, err := s.repo.GetByID(id)
		if err != nil {
			return err
		}
		category = *loaded
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetBySlug returns a category by slug.
func (s *CategoryService) GetBySlug(slug string) (*model.TestimonialCategory, error) {
	category, err := s.repo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// List returns categories. Non-moderators only see active ones.
func (s *CategoryService) List(viewer Viewer) ([]model.TestimonialCategory, error) {
	activeOnly := !viewer.IsModerator(s.cfg.ModerationRoles)
	return s.repo.List(activeOnly)
}

// ListWithCounts returns active categories with their published
// testimonial counts, for public navigation.
func (s *CategoryService) ListWithCounts(ctx context.Context) ([]repository.CategoryWithCount, error) {
	var list []repository.CategoryWithCount
	err := s.cache.GetOrCompute(ctx, cache.KeyCounts(), cache.ClassStats, &list, func() error {
		loaded, err := s.repo.ListActiveWithCounts()
		if err != nil {
			return err
		}
		list = loaded
		return nil
	})
	return list, err
}

// Update edits a category. Moderators only. Renaming does not change
// the slug; published URLs stay stable.
func (s *CategoryService) Update(ctx context.Context, id uint, input CategoryInput, viewer Viewer) (*model.TestimonialCategory, error) {
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		return nil, ErrPermissionDenied
	}

	category, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	if name := normalizeCategoryName(input.Name); name != "" {
		category.Name = name
	}
	if input.Description != "" {
		category.Description = input.Description
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.Order != nil {
		category.Order = *input.Order
	}

	if err := s.repo.Update(category); err != nil {
		logger.Error("Failed to update category", err, map[string]interface{}{
			"category_id": id,
		})
		return nil, err
	}

	s.cache.InvalidateCategory(ctx, id)
	return category, nil
}

// Delete removes a category. Its testimonials are not deleted with it;
// they are detached and live on uncategorized.
func (s *CategoryService) Delete(ctx context.Context, id uint, viewer Viewer) error {
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		return ErrPermissionDenied
	}

	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	detached, err := s.repo.Delete(id)
	if err != nil {
		logger.Error("Failed to delete category", err, map[string]interface{}{
			"category_id": id,
		})
		return err
	}

	s.cache.InvalidateCategory(ctx, id)
	if detached > 0 {
		// Detached testimonials still appear in list and stats caches.
		s.cache.InvalidateLists(ctx)
	}

	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
		"detached":    detached,
	})
	return nil
}

func (s *CategoryService) uniqueSlug(name string) (string, error) {
	base := util.Slugify(name)
	if base == "" {
		base = "category"
	}

	slug := base
	for counter := 1; ; counter++ {
		exists, err := s.repo.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// normalizeCategoryName trims and title-cases each word of the name.
func normalizeCategoryName(name string) string {
	words := strings.Fields(strings.TrimSpace(name))
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}
