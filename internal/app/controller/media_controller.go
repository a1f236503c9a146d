package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/testimonialhq/testimonials-backend/internal/app/service"
	apperrors "github.com/testimonialhq/testimonials-backend/internal/errors"
)

type MediaController struct {
	mediaService *service.MediaService
}

func NewMediaController(mediaService *service.MediaService) *MediaController {
	return &MediaController{mediaService: mediaService}
}

type PresignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	FileSize    int64  `json:"file_size" binding:"required"`
}

// PresignUpload returns a presigned URL for a direct upload
// POST /api/v1/testimonials/:id/media/presign
func (ctrl *MediaController) PresignUpload(c *gin.Context) {
	testimonialID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Filename, content type and file size are required")
		return
	}

	resp, err := ctrl.mediaService.PresignUpload(
		c.Request.Context(), testimonialID,
		req.Filename, req.ContentType, req.FileSize,
		viewerFromContext(c),
	)
	if respondServiceError(c, err, "presign media upload") {
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Attach registers an uploaded object as testimonial media
// POST /api/v1/testimonials/:id/media
func (ctrl *MediaController) Attach(c *gin.Context) {
	testimonialID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.AttachMediaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Object key and filename are required")
		return
	}

	media, err := ctrl.mediaService.Attach(c.Request.Context(), testimonialID, input, viewerFromContext(c))
	if respondServiceError(c, err, "attach media") {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Media attached successfully",
		"media":   media,
	})
}

// ListByTestimonial returns a testimonial's media
// GET /api/v1/testimonials/:id/media
func (ctrl *MediaController) ListByTestimonial(c *gin.Context) {
	testimonialID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := ctrl.mediaService.ListByTestimonial(testimonialID)
	if respondServiceError(c, err, "list media") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"media": list})
}

// Update edits media metadata
// PUT /api/v1/media/:id
func (ctrl *MediaController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.UpdateMediaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid media payload")
		return
	}

	media, err := ctrl.mediaService.Update(c.Request.Context(), id, input, viewerFromContext(c))
	if respondServiceError(c, err, "update media") {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Media updated successfully",
		"media":   media,
	})
}

// Delete removes a media record and its stored object
// DELETE /api/v1/media/:id
func (ctrl *MediaController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := ctrl.mediaService.Delete(c.Request.Context(), id, viewerFromContext(c))
	if respondServiceError(c, err, "delete media") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Media deleted successfully"})
}

// Stats returns media aggregates
// GET /api/v1/moderation/media/stats
func (ctrl *MediaController) Stats(c *gin.Context) {
	stats, err := ctrl.mediaService.Stats(c.Request.Context())
	if respondServiceError(c, err, "get media stats") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
