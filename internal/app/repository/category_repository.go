package repository

import (
	"github.com/testimonialhq/testimonials-backend/internal/app/model"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(category *model.TestimonialCategory) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepository) GetByID(id uint) (*model.TestimonialCategory, error) {
	var category model.TestimonialCategory
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) GetBySlug(slug string) (*model.TestimonialCategory, error) {
	var category model.TestimonialCategory
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) Update(category *model.TestimonialCategory) error {
	return r.db.Save(category).Error
}

// Delete removes a category after detaching its testimonials. Both
// steps run in one transaction; testimonials keep their other fields
// and simply become uncategorized. Returns how many were detached.
func (r *CategoryRepository) Delete(id uint) (int64, error) {
	var detached int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Unscoped().Model(&model.Testimonial{}).
			Where("category_id = ?", id).
			Update("category_id", nil)
		if result.Error != nil {
			return result.Error
		}
		detached = result.RowsAffected
		return tx.Delete(&model.TestimonialCategory{}, id).Error
	})
	return detached, err
}

// SlugExists checks slug uniqueness, including soft-deleted rows.
func (r *CategoryRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Unscoped().Model(&model.TestimonialCategory{}).
		Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// List returns all categories ordered for display. activeOnly hides
// disabled ones.
func (r *CategoryRepository) List(activeOnly bool) ([]model.TestimonialCategory, error) {
	var categories []model.TestimonialCategory
	query := r.db.Order(`"order" ASC, name ASC`)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&categories).Error
	return categories, err
}

// CategoryWithCount pairs a category with its published testimonial count.
type CategoryWithCount struct {
	model.TestimonialCategory
	PublishedCount int64 `json:"published_count"`
}

// ListActiveWithCounts returns active categories together with how many
// published testimonials each holds.
func (r *CategoryRepository) ListActiveWithCounts() ([]CategoryWithCount, error) {
	categories, err := r.List(true)
	if err != nil {
		return nil, err
	}

	result := make([]CategoryWithCount, 0, len(categories))
	for _, category := range categories {
		var count int64
		err := r.db.Model(&model.Testimonial{}).
			Where("category_id = ? AND status IN ?", category.ID, model.PublishedStatuses).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		result = append(result, CategoryWithCount{
			TestimonialCategory: category,
			PublishedCount:      count,
		})
	}
	return result, nil
}
