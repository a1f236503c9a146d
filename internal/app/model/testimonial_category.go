package model

import (
	"time"

	"gorm.io/gorm"
)

type TestimonialCategory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"not null" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
	Order       int    `gorm:"default:0" json:"order"`

	Testimonials []Testimonial `gorm:"foreignKey:CategoryID" json:"-"`
}

func (TestimonialCategory) TableName() string {
	return "testimonial_categories"
}
