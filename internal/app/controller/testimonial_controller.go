package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/testimonialhq/testimonials-backend/internal/app/service"
	apperrors "github.com/testimonialhq/testimonials-backend/internal/errors"
	"github.com/testimonialhq/testimonials-backend/internal/middleware"
)

type TestimonialController struct {
	testimonialService *service.TestimonialService
}

func NewTestimonialController(testimonialService *service.TestimonialService) *TestimonialController {
	return &TestimonialController{testimonialService: testimonialService}
}

// viewerFromContext builds the service viewer from the request's auth
// context. Unauthenticated requests act as guests.
func viewerFromContext(c *gin.Context) service.Viewer {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return service.Guest
	}
	role, _ := middleware.GetUserRole(c)
	return service.Viewer{UserID: &userID, Role: role}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryUint(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}

func queryBool(c *gin.Context, name string) *bool {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// respondServiceError maps the shared service sentinels to HTTP
// responses. Returns false when err was nil.
func respondServiceError(c *gin.Context, err error, context string) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, service.ErrTestimonialNotFound):
		apperrors.NotFound(c, apperrors.TestimonialNotFound, "Testimonial not found")
	case errors.Is(err, service.ErrCategoryNotFound):
		apperrors.NotFound(c, apperrors.CategoryNotFound, "Category not found")
	case errors.Is(err, service.ErrMediaNotFound):
		apperrors.NotFound(c, apperrors.MediaNotFound, "Media not found")
	case errors.Is(err, service.ErrCategoryInactive):
		apperrors.BadRequest(c, apperrors.CategoryInactive, "Category is not accepting testimonials")
	case errors.Is(err, service.ErrPermissionDenied):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzForbidden, "You do not have permission to do this")
	case errors.Is(err, service.ErrEditDenied):
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.TestimonialEditDenied, "Testimonials can only be edited while pending review")
	case errors.Is(err, service.ErrInvalidRating):
		apperrors.BadRequest(c, apperrors.TestimonialInvalidRating, err.Error())
	case errors.Is(err, service.ErrContentTooShort):
		apperrors.BadRequest(c, apperrors.TestimonialContentTooShort, err.Error())
	case errors.Is(err, service.ErrContentTooLong):
		apperrors.BadRequest(c, apperrors.TestimonialContentTooLong, err.Error())
	case errors.Is(err, service.ErrContentRejected):
		apperrors.BadRequest(c, apperrors.TestimonialContentRejected, "Content did not pass quality checks")
	case errors.Is(err, service.ErrAnonymousDenied):
		apperrors.BadRequest(c, apperrors.TestimonialAnonymousDenied, "Anonymous testimonials are not allowed")
	case errors.Is(err, service.ErrInvalidStatus):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown status")
	case errors.Is(err, service.ErrInvalidSource):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Unknown source")
	case errors.Is(err, service.ErrAlreadyInState):
		apperrors.Conflict(c, apperrors.TestimonialAlreadyInState, "Testimonial is already in that state")
	case errors.Is(err, service.ErrInvalidTransition):
		apperrors.Conflict(c, apperrors.TestimonialInvalidTransition, "That action is not allowed from the current state")
	case errors.Is(err, service.ErrReasonRequired):
		apperrors.BadRequest(c, apperrors.TestimonialReasonRequired, "A rejection reason is required")
	case errors.Is(err, service.ErrResponseRequired):
		apperrors.BadRequest(c, apperrors.TestimonialResponseRequired, "Response text is required")
	case errors.Is(err, service.ErrMediaDisabled):
		apperrors.BadRequest(c, apperrors.MediaDisabled, "Media uploads are disabled")
	case errors.Is(err, service.ErrFileTypeDenied):
		apperrors.BadRequest(c, apperrors.MediaInvalidFileType, err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		apperrors.BadRequest(c, apperrors.MediaFileTooLarge, err.Error())
	default:
		log := middleware.GetLoggerFromContext(c)
		log.Error("Unhandled service error", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
	return true
}

// Create submits a new testimonial
// POST /api/v1/testimonials
func (ctrl *TestimonialController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var input service.CreateTestimonialInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warn("Invalid testimonial submission", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Content and rating are required")
		return
	}

	var authorID *uint
	if userID, ok := middleware.GetUserID(c); ok {
		authorID = &userID
	}

	created, err := ctrl.testimonialService.Create(c.Request.Context(), input, authorID, c.ClientIP())
	if respondServiceError(c, err, "create testimonial") {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Testimonial submitted successfully",
		"testimonial": created,
	})
}

// List returns testimonials visible to the requester
// GET /api/v1/testimonials
func (ctrl *TestimonialController) List(c *gin.Context) {
	input := service.ListInput{
		Status:       c.Query("status"),
		CategorySlug: c.Query("category"),
		Source:       c.Query("source"),
		Author:       c.Query("author"),
		Search:       c.Query("search"),
		OrderBy:      c.Query("order_by"),
		OrderDesc:    c.Query("order") != "asc",
		CategoryID:   queryUint(c, "category_id"),
		AuthorID:     queryUint(c, "author_id"),
		MinRating:    queryInt(c, "min_rating"),
		MaxRating:    queryInt(c, "max_rating"),
		IsAnonymous:  queryBool(c, "anonymous"),
		IsVerified:   queryBool(c, "verified"),
		HasResponse:  queryBool(c, "has_response"),
	}
	if page := queryInt(c, "page"); page != nil {
		input.Page = *page
	}
	if pageSize := queryInt(c, "page_size"); pageSize != nil {
		input.PageSize = *pageSize
	}

	list, total, err := ctrl.testimonialService.List(c.Request.Context(), input, viewerFromContext(c))
	if respondServiceError(c, err, "list testimonials") {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"testimonials": list,
		"total":        total,
		"page":         input.Page,
		"page_size":    input.PageSize,
	})
}

// Get returns one testimonial by id
// GET /api/v1/testimonials/:id
func (ctrl *TestimonialController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	t, err := ctrl.testimonialService.Get(c.Request.Context(), id, viewerFromContext(c))
	if respondServiceError(c, err, "get testimonial") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"testimonial": t})
}

// GetBySlug returns one testimonial by slug
// GET /api/v1/testimonials/slug/:slug
func (ctrl *TestimonialController) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Slug is required")
		return
	}

	t, err := ctrl.testimonialService.GetBySlug(slug, viewerFromContext(c))
	if respondServiceError(c, err, "get testimonial") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"testimonial": t})
}

// Update edits a testimonial
// PUT /api/v1/testimonials/:id
func (ctrl *TestimonialController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.UpdateTestimonialInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid update payload")
		return
	}

	updated, err := ctrl.testimonialService.Update(c.Request.Context(), id, input, viewerFromContext(c))
	if respondServiceError(c, err, "update testimonial") {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Testimonial updated successfully",
		"testimonial": updated,
	})
}

// Delete removes a testimonial
// DELETE /api/v1/testimonials/:id
func (ctrl *TestimonialController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := ctrl.testimonialService.Delete(c.Request.Context(), id, viewerFromContext(c))
	if respondServiceError(c, err, "delete testimonial") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Testimonial deleted successfully"})
}

// Featured returns featured testimonials
// GET /api/v1/testimonials/featured
func (ctrl *TestimonialController) Featured(c *gin.Context) {
	limit := 0
	if l := queryInt(c, "limit"); l != nil {
		limit = *l
	}

	list, err := ctrl.testimonialService.Featured(c.Request.Context(), limit)
	if respondServiceError(c, err, "list featured testimonials") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"testimonials": list})
}

// Stats returns aggregate testimonial statistics
// GET /api/v1/testimonials/stats
func (ctrl *TestimonialController) Stats(c *gin.Context) {
	stats, err := ctrl.testimonialService.Stats(c.Request.Context())
	if respondServiceError(c, err, "get testimonial stats") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// AuditTrail returns the moderation history of a testimonial
// GET /api/v1/testimonials/:id/history
func (ctrl *TestimonialController) AuditTrail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	trail, err := ctrl.testimonialService.AuditTrail(id, viewerFromContext(c))
	if respondServiceError(c, err, "get moderation history") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": trail})
}
