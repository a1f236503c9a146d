package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/testimonialhq/testimonials-backend/internal/app/service"
	apperrors "github.com/testimonialhq/testimonials-backend/internal/errors"
	"github.com/testimonialhq/testimonials-backend/internal/middleware"
)

type ModerationController struct {
	moderationService *service.ModerationService
}

func NewModerationController(moderationService *service.ModerationService) *ModerationController {
	return &ModerationController{moderationService: moderationService}
}

type ModerationNotesRequest struct {
	Notes string `json:"notes"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type RespondRequest struct {
	Response string `json:"response" binding:"required"`
}

type BulkRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1"`
}

type BulkRejectRequest struct {
	IDs    []uint `json:"ids" binding:"required,min=1"`
	Reason string `json:"reason" binding:"required"`
}

// Approve publishes a testimonial
// POST /api/v1/moderation/testimonials/:id/approve
func (ctrl *ModerationController) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ModerationNotesRequest
	_ = c.ShouldBindJSON(&req) // notes are optional

	t, err := ctrl.moderationService.Approve(c.Request.Context(), id, viewerFromContext(c), req.Notes)
	if respondServiceError(c, err, "approve testimonial") {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Testimonial approved",
		"testimonial": t,
	})
}

// Reject hides a testimonial with a reason
// POST /api/v1/moderation/testimonials/:id/reject
func (ctrl *ModerationController) Reject(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Rejection without reason", map[string]interface{}{
			"testimonial_id": id,
		})
		apperrors.BadRequest(c, apperrors.TestimonialReasonRequired, "A rejection reason is required")
		return
	}

	t, err := ctrl.moderationService.Reject(c.Request.Context(), id, viewerFromContext(c), req.Reason)
	if respondServiceError(c, err, "reject testimonial") {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Testimonial rejected",
		"testimonial": t,
	})
}

// Feature highlights an approved testimonial
// POST /api/v1/moderation/testimonials/:id/feature
func (ctrl *ModerationController) Feature(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ModerationNotesRequest
	_ = c.ShouldBindJSON(&req)

	t, err := ctrl.moderationService.Feature(c.Request.Context(), id, viewerFromContext(c), req.Notes)
	if respondServiceError(c, err, "feature testimonial") {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Testimonial featured",
		"testimonial": t,
	})
}

// Archive retires a testimonial from display
// POST /api/v1/moderation/testimonials/:id/archive
func (ctrl *ModerationController) Archive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ModerationNotesRequest
	_ = c.ShouldBindJSON(&req)

	t, err := ctrl.moderationService.Archive(c.Request.Context(), id, viewerFromContext(c), req.Notes)
	if respondServiceError(c, err, "archive testimonial") {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Testimonial archived",
		"testimonial": t,
	})
}

// Respond attaches an official response
// POST /api/v1/moderation/testimonials/:id/respond
func (ctrl *ModerationController) Respond(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.TestimonialResponseRequired, "Response text is required")
		return
	}

	t, err := ctrl.moderationService.Respond(c.Request.Context(), id, viewerFromContext(c), req.Response)
	if respondServiceError(c, err, "respond to testimonial") {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Response added",
		"testimonial": t,
	})
}

// Pending lists testimonials awaiting moderation
// GET /api/v1/moderation/testimonials/pending
func (ctrl *ModerationController) Pending(c *gin.Context) {
	limit := 0
	if l := queryInt(c, "limit"); l != nil {
		limit = *l
	}

	list, err := ctrl.moderationService.Pending(viewerFromContext(c), limit)
	if respondServiceError(c, err, "list pending testimonials") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"testimonials": list})
}

// BulkApprove approves many testimonials at once
// POST /api/v1/moderation/testimonials/bulk-approve
func (ctrl *ModerationController) BulkApprove(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A non-empty list of ids is required")
		return
	}

	result, err := ctrl.moderationService.BulkApprove(c.Request.Context(), req.IDs, viewerFromContext(c))
	if respondServiceError(c, err, "bulk approve") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// BulkReject rejects many testimonials with a shared reason
// POST /api/v1/moderation/testimonials/bulk-reject
func (ctrl *ModerationController) BulkReject(c *gin.Context) {
	var req BulkRejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A non-empty list of ids and a reason are required")
		return
	}

	result, err := ctrl.moderationService.BulkReject(c.Request.Context(), req.IDs, viewerFromContext(c), req.Reason)
	if respondServiceError(c, err, "bulk reject") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// BulkArchive archives many testimonials at once
// POST /api/v1/moderation/testimonials/bulk-archive
func (ctrl *ModerationController) BulkArchive(c *gin.Context) {
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "A non-empty list of ids is required")
		return
	}

	result, err := ctrl.moderationService.BulkArchive(c.Request.Context(), req.IDs, viewerFromContext(c))
	if respondServiceError(c, err, "bulk archive") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
