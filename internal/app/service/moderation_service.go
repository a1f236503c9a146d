package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/testimonialhq/testimonials-backend/config"
	"github.com/testimonialhq/testimonials-backend/internal/app/model"
	"github.com/testimonialhq/testimonials-backend/internal/app/repository"
	"github.com/testimonialhq/testimonials-backend/internal/cache"
	"github.com/testimonialhq/testimonials-backend/internal/notify"
	"github.com/testimonialhq/testimonials-backend/internal/ws"
	"github.com/testimonialhq/testimonials-backend/pkg/logger"
	"gorm.io/gorm"
)

// ModerationService drives the testimonial state machine. Every call
// requires a moderator viewer; transitions outside the table below are
// rejected.
type ModerationService struct {
	repo      *repository.TestimonialRepository
	auditRepo *repository.ModerationLogRepository
	cache     *cache.Service
	notifier  *notify.Notifier
	hub       *ws.Hub
	cfg       *config.TestimonialsConfig
}

func NewModerationService(
	repo *repository.TestimonialRepository,
	auditRepo *repository.ModerationLogRepository,
	cacheService *cache.Service,
	notifier *notify.Notifier,
	hub *ws.Hub,
	cfg *config.TestimonialsConfig,
) *ModerationService {
	return &ModerationService{
		repo:      repo,
		auditRepo: auditRepo,
		cache:     cacheService,
		notifier:  notifier,
		hub:       hub,
		cfg:       cfg,
	}
}

// Approve publishes a testimonial. Allowed from any state except
// approved itself; re-approving an archived or rejected record brings
// it back.
func (s *ModerationService) Approve(ctx context.Context, id uint, viewer Viewer, notes string) (*model.Testimonial, error) {
	return s.transition(ctx, id, viewer, model.ActionApproved, func(t *model.Testimonial) error {
		if t.Status == model.StatusApproved {
			return ErrAlreadyInState
		}
		now := time.Now()
		t.Status = model.StatusApproved
		t.ApprovedAt = &now
		t.ApprovedByID = viewer.UserID
		t.RejectionReason = ""
		return nil
	}, notes, s.notifier.TestimonialApproved)
}

// Reject hides a testimonial. A non-empty reason is required and stored
// on the record. Only pending, approved, and featured records can be
// rejected.
func (s *ModerationService) Reject(ctx context.Context, id uint, viewer Viewer, reason string) (*model.Testimonial, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.transition(ctx, id, viewer, model.ActionRejected, func(t *model.Testimonial) error {
		switch t.Status {
		case model.StatusRejected:
			return ErrAlreadyInState
		case model.StatusPending, model.StatusApproved, model.StatusFeatured:
		default:
			return ErrInvalidTransition
		}
		t.Status = model.StatusRejected
		t.RejectionReason = reason
		return nil
	}, reason, s.notifier.TestimonialRejected)
}

// Feature highlights an approved testimonial. Anything not currently
// approved must be approved first.
func (s *ModerationService) Feature(ctx context.Context, id uint, viewer Viewer, notes string) (*model.Testimonial, error) {
	return s.transition(ctx, id, viewer, model.ActionFeatured, func(t *model.Testimonial) error {
		switch t.Status {
		case model.StatusFeatured:
			return ErrAlreadyInState
		case model.StatusApproved:
		default:
			return ErrInvalidTransition
		}
		t.Status = model.StatusFeatured
		return nil
	}, notes, nil)
}

// Archive retires a testimonial from display. Allowed from any state
// except archived itself.
func (s *ModerationService) Archive(ctx context.Context, id uint, viewer Viewer, notes string) (*model.Testimonial, error) {
	return s.transition(ctx, id, viewer, model.ActionArchived, func(t *model.Testimonial) error {
		if t.Status == model.StatusArchived {
			return ErrAlreadyInState
		}
		t.Status = model.StatusArchived
		return nil
	}, notes, nil)
}

// Respond attaches or replaces the official response. Allowed in any
// state; responding does not change the status.
func (s *ModerationService) Respond(ctx context.Context, id uint, viewer Viewer, response string) (*model.Testimonial, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, ErrResponseRequired
	}
	return s.transition(ctx, id, viewer, model.ActionResponded, func(t *model.Testimonial) error {
		now := time.Now()
		t.Response = response
		t.ResponseAt = &now
		return nil
	}, response, s.notifier.ResponseAdded)
}

// Pending lists testimonials awaiting moderation, oldest first.
func (s *ModerationService) Pending(viewer Viewer, limit int) ([]model.Testimonial, error) {
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		return nil, ErrPermissionDenied
	}
	if limit < 1 || limit > maxPageSize {
		limit = s.cfg.PaginationSize
	}
	return s.repo.Pending(limit)
}

// BulkResult reports the outcome of a bulk moderation call.
type BulkResult struct {
	Succeeded []uint          `json:"succeeded"`
	Failed    map[uint]string `json:"failed,omitempty"`
}

// BulkApprove applies Approve to each id independently. One failure
// does not abort the rest.
func (s *ModerationService) BulkApprove(ctx context.Context, ids []uint, viewer Viewer) (*BulkResult, error) {
	return s.bulk(ctx, ids, viewer, func(id uint) error {
		_, err := s.Approve(ctx, id, viewer, "")
		return err
	})
}

// BulkReject applies Reject with a shared reason to each id.
func (s *ModerationService) BulkReject(ctx context.Context, ids []uint, viewer Viewer, reason string) (*BulkResult, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	return s.bulk(ctx, ids, viewer, func(id uint) error {
		_, err := s.Reject(ctx, id, viewer, reason)
		return err
	})
}

// BulkArchive applies Archive to each id.
func (s *ModerationService) BulkArchive(ctx context.Context, ids []uint, viewer Viewer) (*BulkResult, error) {
	return s.bulk(ctx, ids, viewer, func(id uint) error {
		_, err := s.Archive(ctx, id, viewer, "")
		return err
	})
}

func (s *ModerationService) bulk(ctx context.Context, ids []uint, viewer Viewer, op func(id uint) error) (*BulkResult, error) {
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		return nil, ErrPermissionDenied
	}

	result := &BulkResult{Failed: map[uint]string{}}
	for _, id := range ids {
		if err := op(id); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	s.cache.InvalidateLists(ctx)

	logger.Info("Bulk moderation finished", map[string]interface{}{
		"requested": len(ids),
		"succeeded": len(result.Succeeded),
		"failed":    len(result.Failed),
	})
	return result, nil
}

// transition loads the record, applies the mutation, persists it, and
// fires the audit, cache, notification, and event-feed side effects.
func (s *ModerationService) transition(
	ctx context.Context,
	id uint,
	viewer Viewer,
	action model.ModerationAction,
	mutate func(t *model.Testimonial) error,
	notes string,
	notifyFn func(t *model.Testimonial),
) (*model.Testimonial, error) {
	if !viewer.IsModerator(s.cfg.ModerationRoles) {
		return nil, ErrPermissionDenied
	}

	t, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestimonialNotFound
		}
		return nil, err
	}

	if err := mutate(t); err != nil {
		return nil, err
	}

	if err := s.repo.Update(t); err != nil {
		logger.Error("Failed to persist moderation change", err, map[string]interface{}{
			"testimonial_id": id,
			"action":         action,
		})
		return nil, err
	}

	s.audit(t.ID, action, viewer, notes)
	s.cache.InvalidateTestimonial(ctx, t.ID, t.CategoryID, t.AuthorID)
	if notifyFn != nil {
		notifyFn(t)
	}
	s.hub.Publish(ws.Event{
		Type:          string(action),
		TestimonialID: t.ID,
		Status:        string(t.Status),
		Actor:         viewer.actorName(),
	})

	logger.Info("Testimonial moderated", map[string]interface{}{
		"testimonial_id": t.ID,
		"action":         action,
		"status":         t.Status,
		"actor":          viewer.actorName(),
	})
	return t, nil
}

// audit appends to the moderation log, best-effort.
func (s *ModerationService) audit(testimonialID uint, action model.ModerationAction, viewer Viewer, notes string) {
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
