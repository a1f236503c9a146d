package repository

import (
	"github.com/testimonialhq/testimonials-backend/internal/app/model"

	"gorm.io/gorm"
)

type ModerationLogRepository struct {
	db *gorm.DB
}

func NewModerationLogRepository(db *gorm.DB) *ModerationLogRepository {
	return &ModerationLogRepository{db: db}
}

func (r *ModerationLogRepository) Create(log *model.ModerationLog) error {
	return r.db.Create(log).Error
}

// ListByTestimonial returns a testimonial's audit trail, oldest first.
func (r *ModerationLogRepository) ListByTestimonial(testimonialID uint) ([]model.ModerationLog, error) {
	var logs []model.ModerationLog
	err := r.db.Where("testimonial_id = ?", testimonialID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	return logs, err
}
