package repository

import (
	"github.com/testimonialhq/testimonials-backend/internal/app/model"

	"gorm.io/gorm"
)

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// Create inserts a media record. A primary record demotes its siblings
// in the same transaction so at most one primary exists per testimonial.
func (r *MediaRepository) Create(media *model.TestimonialMedia) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if media.IsPrimary {
			if err := unsetSiblingPrimaries(tx, media.TestimonialID, 0); err != nil {
				return err
			}
		}
		return tx.Create(media).Error
	})
}

func (r *MediaRepository) GetByID(id uint) (*model.TestimonialMedia, error) {
	var media model.TestimonialMedia
	if err := r.db.First(&media, id).Error; err != nil {
		return nil, err
	}
	return &media, nil
}

func (r *MediaRepository) ListByTestimonial(testimonialID uint) ([]model.TestimonialMedia, error) {
	var media []model.TestimonialMedia
	err := r.db.Where("testimonial_id = ?", testimonialID).
		Order(`"order" ASC, created_at ASC`).
		Find(&media).Error
	return media, err
}

// Update saves a media record, keeping the primary flag exclusive.
func (r *MediaRepository) Update(media *model.TestimonialMedia) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if media.IsPrimary {
			if err := unsetSiblingPrimaries(tx, media.TestimonialID, media.ID); err != nil {
				return err
			}
		}
		return tx.Save(media).Error
	})
}

func (r *MediaRepository) Delete(id uint) error {
	return r.db.Delete(&model.TestimonialMedia{}, id).Error
}

func unsetSiblingPrimaries(tx *gorm.DB, testimonialID, exceptID uint) error {
	query := tx.Model(&model.TestimonialMedia{}).
		Where("testimonial_id = ? AND is_primary = ?", testimonialID, true)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	return query.Update("is_primary", false).Error
}

// MediaStats aggregates the media table by type.
type MediaStats struct {
	Total      int64            `json:"total"`
	TypeCounts map[string]int64 `json:"type_counts"`
	TotalBytes int64            `json:"total_bytes"`
}

func (r *MediaRepository) GetStats() (*MediaStats, error) {
	stats := &MediaStats{TypeCounts: make(map[string]int64)}

	if err := r.db.Model(&model.TestimonialMedia{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	for _, mediaType := range model.AllMediaTypes {
		stats.TypeCounts[string(mediaType)] = 0
	}

	type row struct {
		Key   string
		Count int64
	}
	var rows []row
	err := r.db.Model(&model.TestimonialMedia{}).
		Select("media_type as key, COUNT(*) as count").
		Group("media_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		stats.TypeCounts[rw.Key] = rw.Count
	}

	err = r.db.Model(&model.TestimonialMedia{}).
		Select("COALESCE(SUM(file_size), 0)").
		Scan(&stats.TotalBytes).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}
