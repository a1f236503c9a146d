package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/testimonialhq/testimonials-backend/internal/app/service"
	apperrors "github.com/testimonialhq/testimonials-backend/internal/errors"
)

type CategoryController struct {
	categoryService *service.CategoryService
}

func NewCategoryController(categoryService *service.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// List returns categories; moderators also see inactive ones
// GET /api/v1/categories
func (ctrl *CategoryController) List(c *gin.Context) {
	list, err := ctrl.categoryService.List(viewerFromContext(c))
	if respondServiceError(c, err, "list categories") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": list})
}

// ListWithCounts returns active categories with published counts
// GET /api/v1/categories/counts
func (ctrl *CategoryController) ListWithCounts(c *gin.Context) {
	list, err := ctrl.categoryService.ListWithCounts(c.Request.Context())
	if respondServiceError(c, err, "list categories") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": list})
}

// Get returns one category by id
// GET /api/v1/categories/:id
func (ctrl *CategoryController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := ctrl.categoryService.Get(c.Request.Context(), id)
	if respondServiceError(c, err, "get category") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// GetBySlug returns one category by slug
// GET /api/v1/categories/slug/:slug
func (ctrl *CategoryController) GetBySlug(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Slug is required")
		return
	}

	category, err := ctrl.categoryService.GetBySlug(slug)
	if respondServiceError(c, err, "get category") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Create adds a category
// POST /api/v1/moderation/categories
func (ctrl *CategoryController) Create(c *gin.Context) {
	var input service.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Category name is required")
		return
	}

	category, err := ctrl.categoryService.Create(c.Request.Context(), input, viewerFromContext(c))
	if respondServiceError(c, err, "create category") {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Category created successfully",
		"category": category,
	})
}

// Update edits a category
// PUT /api/v1/moderation/categories/:id
func (ctrl *CategoryController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input service.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid category payload")
		return
	}

	category, err := ctrl.categoryService.Update(c.Request.Context(), id, input, viewerFromContext(c))
	if respondServiceError(c, err, "update category") {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Category updated successfully",
		"category": category,
	})
}

// Delete removes a category; its testimonials become uncategorized
// DELETE /api/v1/moderation/categories/:id
func (ctrl *CategoryController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := ctrl.categoryService.Delete(c.Request.Context(), id, viewerFromContext(c))
	if respondServiceError(c, err, "delete category") {
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
