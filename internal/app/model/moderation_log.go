package model

import "time"

type ModerationAction string // recorded moderation action

const (
	ActionSubmitted ModerationAction = "submitted"
	ActionApproved  ModerationAction = "approved"
	ActionRejected  ModerationAction = "rejected"
	ActionFeatured  ModerationAction = "featured"
	ActionArchived  ModerationAction = "archived"
	ActionResponded ModerationAction = "responded"
	ActionDeleted   ModerationAction = "deleted"
)

// ModerationLog is an append-only audit record. Rows are written
// best-effort and never updated or deleted by the application.
type ModerationLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	TestimonialID uint             `gorm:"not null;index" json:"testimonial_id"`
	Action        ModerationAction `gorm:"type:varchar(20);not null" json:"action"`
	Actor         string           `gorm:"not null;default:'system'" json:"actor"`
	Notes         string           `gorm:"type:text" json:"notes,omitempty"`
}

func (ModerationLog) TableName() string {
	return "moderation_logs"
}
