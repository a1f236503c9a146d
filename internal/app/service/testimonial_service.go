package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/cache"
	"github.com/testimonialhq/testimonials-backend/internal/notify"
	"github.com/testimonialhq/testimonials-backend/internal/ws"
	"github.com/testimonialhq/testimonials-backend/pkg/logger"
	"github.com/testimonialhq/testimonials-backend/pkg/util"
	"gorm.io/gorm"
)

// AnonymousName replaces the author name on anonymous submissions.
const AnonymousName = "Anonymous"

const maxPageSize = 100

// Viewer is the authenticated (or not) requester a service call acts
// for. A nil UserID means a guest.
type Viewer struct {
	UserID *uint
	Role   model.UserRole
}

// Guest is the unauthenticated viewer.
var Guest = Viewer{}

// IsModerator reports whether the viewer may moderate.
func (v Viewer) IsModerator(moderationRoles []string) bool {
	if v.UserID == nil {
		return false
	}
	u := model.User{Role: v.Role}
	return u.CanModerate(moderationRoles)
}

func (v Viewer) owns(t *model.Testimonial) bool {
	return v.UserID != nil && t.AuthorID != nil && *v.UserID == *t.AuthorID
}

// actorName identifies the viewer in audit logs.
func (v Viewer) actorName() string {
	if v.UserID == nil {
		return "system"
	}
	return fmt.Sprintf("user:%d", *v.UserID)
}

type TestimonialService struct {
	repo         *repository.TestimonialRepository
	categoryRepo *repository.CategoryRepository
	auditRepo    *repository.ModerationLogRepository
	cache        *cache.Service
	notifier     *notify.Notifier
	hub          *ws.Hub
	validator    *Validator
	cfg          *config.TestimonialsConfig
}

func NewTestimonialService(
	repo *repository.TestimonialRepository,
	categoryRepo *repository.CategoryRepository,
	auditRepo *repository.ModerationLogRepository,
	cacheService *cache.Service,
	notifier *notify.Notifier,
	hub *ws.Hub,
	validator *Validator,
	cfg *config.TestimonialsConfig,
) *TestimonialService {
	return &TestimonialService{
		repo:         repo,
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
		cache:        cacheService,
		notifier:     notifier,
		hub:          hub,
		validator:    validator,
		cfg:          cfg,
	}
}

type CreateTestimonialInput struct {
	AuthorName  string   `json:"author_name"`
	AuthorEmail string   `json:"author_email"`
	AuthorPhone string   `json:"author_phone"`
	AuthorTitle string   `json:"author_title"`
	Company     string   `json:"company"`
	AvatarURL   string   `json:"avatar_url"`
	WebsiteURL  string   `json:"website_url"`
	SocialLinks []string `json:"social_links"`
	IsAnonymous bool     `json:"is_anonymous"`

	Title      string                  `json:"title"`
	Content    string                  `json:"content" binding:"required"`
	Rating     int                     `json:"rating" binding:"required"`
	CategoryID *uint                   `json:"category_id"`
	Source     model.TestimonialSource `json:"source"`
}

// Create validates and stores a new testimonial. authorID is nil for
// guest submissions; ip is recorded for abuse tracing.
func (s *TestimonialService) Create(ctx context.Context, input CreateTestimonialInput, authorID *uint, ip string) (*model.Testimonial, error) {
	if err := s.validator.ValidateRating(input.Rating); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateContent(input.Content); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateAnonymity(input.IsAnonymous); err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = model.SourceWebsite
	}
	if !model.ValidSource(source) {
		return nil, ErrInvalidSource
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(*input.CategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		if !category.IsActive {
			return nil, ErrCategoryInactive
		}
	}

	status := model.StatusApproved
	if s.cfg.RequireApproval {
		status = model.StatusPending
	}

	t := &model.Testimonial{
		AuthorID:    authorID,
		AuthorName:  input.AuthorName,
		AuthorEmail: input.AuthorEmail,
		AuthorPhone: input.AuthorPhone,
		AuthorTitle: input.AuthorTitle,
		Company:     input.Company,
		AvatarURL:   input.AvatarURL,
		WebsiteURL:  input.WebsiteURL,
		SocialLinks: pq.StringArray(input.SocialLinks),
		IsAnonymous: input.IsAnonymous,
		Title:       input.Title,
		Content:     input.Content,
		Rating:      input.Rating,
		CategoryID:  input.CategoryID,
		Source:      source,
		Status:      status,
		IPAddress:   ip,
	}
	s.applyAnonymity(t)

	slug, err := s.uniqueSlug(t)
	if err != nil {
		return nil, err
	}
	t.Slug = slug

	if status == model.StatusApproved {
		now := time.Now()
		t.ApprovedAt = &now
	}

	if err := s.repo.Create(t); err != nil {
		logger.Error("Failed to create testimonial", err, nil)
		return nil, err
	}

	s.audit(t.ID, model.ActionSubmitted, Viewer{UserID: authorID}, "")
	s.cache.InvalidateTestimonial(ctx, t.ID, t.CategoryID, t.AuthorID)
	s.notifier.TestimonialSubmitted(t)
	s.hub.Publish(ws.Event{
		Type:          string(model.ActionSubmitted),
		TestimonialID: t.ID,
		Status:        string(t.Status),
	})

	logger.Info("Testimonial created", map[string]interface{}{
		"testimonial_id": t.ID,
		"status":         t.Status,
		"anonymous":      t.IsAnonymous,
	})

	return s.repo.GetByID(t.ID)
}

// applyAnonymity scrubs identifying fields on anonymous testimonials,
// regardless of what the client sent.
func (s *TestimonialService) applyAnonymity(t *model.Testimonial) {
	if !t.IsAnonymous {
		if t.AuthorName == "" {
			t.AuthorName = AnonymousName
		}
		return
	}
	t.AuthorName = AnonymousName
	t.AuthorEmail = ""
	t.AuthorPhone = ""
	t.AvatarURL = ""
	t.AuthorID = nil
}

// uniqueSlug derives a slug from the title or author name and suffixes
// -1, -2, ... until it is free.
func (s *TestimonialService) uniqueSlug(t *model.Testimonial) (string, error) {
	base := util.Slugify(t.Title)
	if base == "" {
		base = util.Slugify(t.AuthorName)
	}
	if base == "" {
		base = "testimonial"
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

// Get returns one testimonial, enforcing visibility: unpublished
// records exist only for their author and moderators.
func (s *TestimonialService) Get(ctx context.Context, id uint, viewer Viewer) (*model.Testimonial, error) {
	var t model.Testimonial
	err := s.cache.GetOrCompute(ctx, cache.KeyTestimonial(id), cache.ClassVolatile, &t, func() error {
		loaded, err := s.repo.GetByID(id)
		if err != nil {
			return err
		}
		t = *loaded
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestimonialNotFound
		}
		return nil, err
	}

	if !s.visibleTo(&t, viewer) {
		return nil, ErrTestimonialNotFound
	}
	return &t, nil
}

// GetBySlug is Get addressed by slug.
func (s *TestimonialService) GetBySlug(slug string, viewer Viewer) (*model.Testimonial, error) {
	t, err := s.repo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestimonialNotFound
		}
		return nil, err
	}

	if !s.visibleTo(t, viewer) {
		return nil, ErrTestimonialNotFound
	}
	return t, nil
}

func (s *TestimonialService) visibleTo(t *model.Testimonial, viewer Viewer) bool {
	if t.IsPublished() {
		return true
	}
	return viewer.owns(t) || viewer.IsModerator(s.cfg.ModerationRoles)
}

// ListInput is the API-facing filter surface for listings.
type ListInput struct {
	Status        string
	CategoryID    *uint
	CategorySlug  string
	AuthorID      *uint
	MinRating     *int
	MaxRating     *int
	Source        string
	Author        string
	IsAnonymous   *bool
	IsVerified    *bool
	HasResponse   *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Search        string
	Page          int
	PageSize      int
	OrderBy       string
	OrderDesc     bool
}

var orderableColumns = map[string]string{
	"":              "created_at",
	"created_at":    "created_at",
	"rating":        "rating",
	"display_order": "display_order",
	"updated_at":    "updated_at",
}

// List returns testimonials visible to the viewer, filtered and
// paginated. Moderators see everything; users additionally see their
// own unpublished records; guests see only published ones.
func (s *TestimonialService) List(ctx context.Context, input ListInput, viewer Viewer) ([]model.Testimonial, int64, error) {
	filter := repository.TestimonialFilter{
		CategoryID:    input.CategoryID,
		CategorySlug:  input.CategorySlug,
		AuthorID:      input.AuthorID,
		MinRating:     input.MinRating,
		MaxRating:     input.MaxRating,
		Author:        input.Author,
		IsAnonymous:   input.IsAnonymous,
		IsVerified:    input.IsVerified,
		HasResponse:   input.HasResponse,
		CreatedAfter:  input.CreatedAfter,
		CreatedBefore: input.CreatedBefore,
	}

	if input.Status != "" {
		status := model.TestimonialStatus(input.Status)
		if !model.ValidStatus(status) {
			return nil, 0, ErrInvalidStatus
		}
		filter.Status = status
	}
	if input.Source != "" {
		source := model.TestimonialSource(input.Source)
		if !model.ValidSource(source) {
			return nil, 0, ErrInvalidSource
		}
		filter.Source = source
	}

	// Queries shorter than the minimum are ignored rather than rejected.
	if len(input.Search) >= s.cfg.SearchMinLength {
		filter.Search = input.Search
	}

	// Visibility
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		if viewer.UserID != nil {
			filter.VisibleToUserID = viewer.UserID
		} else {
			filter.Statuses = model.PublishedStatuses
		}
	}

	// Pagination
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = s.cfg.PaginationSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	// Ordering
	column, ok := orderableColumns[input.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if input.OrderDesc || input.OrderBy == "" {
		direction = "DESC"
	}
	filter.OrderBy = column + " " + direction

	return s.repo.List(filter)
}

type UpdateTestimonialInput struct {
	AuthorName  *string  `json:"author_name"`
	AuthorEmail *string  `json:"author_email"`
	AuthorPhone *string  `json:"author_phone"`
	AuthorTitle *string  `json:"author_title"`
	Company     *string  `json:"company"`
	AvatarURL   *string  `json:"avatar_url"`
	WebsiteURL  *string  `json:"website_url"`
	SocialLinks []string `json:"social_links"`
	IsAnonymous *bool    `json:"is_anonymous"`

	Title      *string `json:"title"`
	Content    *string `json:"content"`
	Rating     *int    `json:"rating"`
	CategoryID *uint   `json:"category_id"`

	// Moderator-only fields, ignored for regular authors.
	IsVerified   *bool `json:"is_verified"`
	DisplayOrder *int  `json:"display_order"`
}

// Update edits a testimonial. Authors may edit only while the record is
// pending; moderators may edit in any state.
func (s *TestimonialService) Update(ctx context.Context, id uint, input UpdateTestimonialInput, viewer Viewer) (*model.Testimonial, error) {
	t, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestimonialNotFound
		}
		return nil, err
	}

	isModerator := viewer.IsModerator(s.cfg.ModerationRoles)
	switch {
	case isModerator:
	case viewer.owns(t):
		if t.Status != model.StatusPending {
			return nil, ErrEditDenied
		}
	default:
		return nil, ErrPermissionDenied
	}

	if input.Rating != nil {
		if err := s.validator.ValidateRating(*input.Rating); err != nil {
			return nil, err
		}
		t.Rating = *input.Rating
	}
	if input.Content != nil {
		if err := s.validator.ValidateContent(*input.Content); err != nil {
			return nil, err
		}
		t.Content = *input.Content
	}
	if input.IsAnonymous != nil {
		if err := s.validator.ValidateAnonymity(*input.IsAnonymous); err != nil {
			return nil, err
		}
		t.IsAnonymous = *input.IsAnonymous
	}
	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(*input.CategoryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		if !category.IsActive {
			return nil, ErrCategoryInactive
		}
		t.CategoryID = input.CategoryID
	}

	if input.AuthorName != nil {
		t.AuthorName = *input.AuthorName
	}
	if input.AuthorEmail != nil {
		t.AuthorEmail = *input.AuthorEmail
	}
	if input.AuthorPhone != nil {
		t.AuthorPhone = *input.AuthorPhone
	}
	if input.AuthorTitle != nil {
		t.AuthorTitle = *input.AuthorTitle
	}
	if input.Company != nil {
		t.Company = *input.Company
	}
	if input.AvatarURL != nil {
		t.AvatarURL = *input.AvatarURL
	}
	if input.WebsiteURL != nil {
		t.WebsiteURL = *input.WebsiteURL
	}
	if input.SocialLinks != nil {
		t.SocialLinks = pq.StringArray(input.SocialLinks)
	}

	if isModerator {
		if input.IsVerified != nil {
			t.IsVerified = *input.IsVerified
		}
		if input.DisplayOrder != nil {
			t.DisplayOrder = *input.DisplayOrder
		}
	}

	s.applyAnonymity(t)

	if err := s.repo.Update(t); err != nil {
		logger.Error("Failed to update testimonial", err, map[string]interface{}{
			"testimonial_id": id,
		})
		return nil, err
	}

	s.cache.InvalidateTestimonial(ctx, t.ID, t.CategoryID, t.AuthorID)

	return s.repo.GetByID(t.ID)
}

// Delete removes a testimonial and its media. Allowed for the author
// and for moderators.
func (s *TestimonialService) Delete(ctx context.Context, id uint, viewer Viewer) error {
	t, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTestimonialNotFound
		}
		return err
	}

	if !viewer.owns(t) && !viewer.IsModerator(s.cfg.ModerationRoles) {
		return ErrPermissionDenied
	}

	if err := s.repo.Delete(id); err != nil {
		logger.Error("Failed to delete testimonial", err, map[string]interface{}{
			"testimonial_id": id,
		})
		return err
	}

	s.audit(id, model.ActionDeleted, viewer, "")
	s.cache.InvalidateTestimonial(ctx, id, t.CategoryID, t.AuthorID)
	s.cache.Delete(ctx, cache.KeyMediaStats())
	s.hub.Publish(ws.Event{
		Type:          string(model.ActionDeleted),
		TestimonialID: id,
		Actor:         viewer.actorName(),
	})

	logger.Info("Testimonial deleted", map[string]interface{}{
		"testimonial_id": id,
		"actor":          viewer.actorName(),
	})
	return nil
}

// Featured returns featured testimonials, cached with the stable TTL.
// The full list is cached under one key; the limit is applied after
// retrieval so callers with different limits share the same entry.
func (s *TestimonialService) Featured(ctx context.Context, limit int) ([]model.Testimonial, error) {
	if limit < 1 || limit > maxPageSize {
		limit = s.cfg.PaginationSize
	}

	var list []model.Testimonial
	err := s.cache.GetOrCompute(ctx, cache.KeyFeatured(), cache.ClassStable, &list, func() error {
		loaded, err := s.repo.Featured(0)
		if err != nil {
			return err
		}
		list = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Stats returns aggregate statistics, cached with the stats TTL.
func (s *TestimonialService) Stats(ctx context.Context) (*repository.TestimonialStats, error) {
	var stats repository.TestimonialStats
	err := s.cache.GetOrCompute(ctx, cache.KeyStats(), cache.ClassStats, &stats, func() error {
		computed, err := s.repo.GetStats(s.cfg.MaxRating)
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

// AuditTrail returns a testimonial's moderation history. Moderators only.
func (s *TestimonialService) AuditTrail(id uint, viewer Viewer) ([]model.ModerationLog, error) {
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		return nil, ErrPermissionDenied
	}
	if _, err := s.repo.GetByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestimonialNotFound
		}
		return nil, err
	}
	return s.auditRepo.ListByTestimonial(id)
}

// audit appends to the moderation log. Best-effort: failures are logged
// and swallowed.
func (s *TestimonialService) audit(testimonialID uint, action model.ModerationAction, viewer Viewer, notes string) {
	entry := &model.ModerationLog{
		TestimonialID: testimonialID,
		Action:        action,
		Actor:         viewer.actorName(),
		Notes:         notes,
	}
	if err := s.auditRepo.Create(entry); err != nil {
		logger.Error("Failed to write moderation log", err, map[string]interface{}{
			"testimonial_id": testimonialID,
			"action":         action,
		})
	}
}
