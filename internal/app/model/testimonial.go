package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type TestimonialStatus string // moderation state of a testimonial

const (
	StatusPending  TestimonialStatus = "pending"  // awaiting moderation
	StatusApproved TestimonialStatus = "approved" // publicly visible
	StatusRejected TestimonialStatus = "rejected" // hidden, reason recorded
	StatusFeatured TestimonialStatus = "featured" // approved + highlighted
	StatusArchived TestimonialStatus = "archived" // retired from display
)

type TestimonialSource string // where the testimonial came from

const (
	SourceWebsite     TestimonialSource = "website"
	SourceMobileApp   TestimonialSource = "mobile_app"
	SourceEmail       TestimonialSource = "email"
	SourceThirdParty  TestimonialSource = "third_party"
	SourceSocialMedia TestimonialSource = "social_media"
	SourceOther       TestimonialSource = "other"
)

// PublishedStatuses are the states shown to unauthenticated visitors.
var PublishedStatuses = []TestimonialStatus{StatusApproved, StatusFeatured}

// AllStatuses in display order.
var AllStatuses = []TestimonialStatus{
	StatusPending, StatusApproved, StatusRejected, StatusFeatured, StatusArchived,
}

// AllSources in display order.
var AllSources = []TestimonialSource{
	SourceWebsite, SourceMobileApp, SourceEmail,
	SourceThirdParty, SourceSocialMedia, SourceOther,
}

type Testimonial struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Author. AuthorID is nil for guest or anonymous submissions.
	AuthorID    *uint          `gorm:"index" json:"author_id,omitempty"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AuthorName  string         `gorm:"not null" json:"author_name"`
	AuthorEmail string         `json:"author_email,omitempty"`
	AuthorPhone string         `json:"author_phone,omitempty"`
	AuthorTitle string         `json:"author_title,omitempty"`
	Company     string         `json:"company,omitempty"`
	AvatarURL   string         `json:"avatar_url,omitempty"`
	WebsiteURL  string         `json:"website_url,omitempty"`
	SocialLinks pq.StringArray `gorm:"type:text[]" json:"social_links,omitempty"`
	IsAnonymous bool           `gorm:"default:false" json:"is_anonymous"`

	// Content
	Title   string `json:"title,omitempty"`
	Content string `gorm:"type:text;not null" json:"content"`
	Rating  int    `gorm:"not null" json:"rating"`
	Slug    string `gorm:"uniqueIndex;not null" json:"slug"`

	// Classification
	CategoryID *uint                `gorm:"index" json:"category_id,omitempty"`
	Category   *TestimonialCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Source     TestimonialSource    `gorm:"type:varchar(20);default:'website'" json:"source"`

	// Moderation
	Status          TestimonialStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	IsVerified      bool              `gorm:"default:false" json:"is_verified"`
	DisplayOrder    int               `gorm:"default:0" json:"display_order"`
	ApprovedAt      *time.Time        `json:"approved_at,omitempty"`
	ApprovedByID    *uint             `json:"approved_by_id,omitempty"`
	ApprovedBy      *User             `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
	RejectionReason string            `gorm:"type:text" json:"rejection_reason,omitempty"`

	// Official response shown alongside the testimonial
	Response   string     `gorm:"type:text" json:"response,omitempty"`
	ResponseAt *time.Time `json:"response_at,omitempty"`

	// Submission metadata
	IPAddress string `gorm:"type:varchar(45)" json:"-"`

	Media []TestimonialMedia `gorm:"foreignKey:TestimonialID;constraint:OnDelete:CASCADE" json:"media,omitempty"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}

// IsPublished reports whether the testimonial is visible to the public.
func (t *Testimonial) IsPublished() bool {
	return t.Status == StatusApproved || t.Status == StatusFeatured
}

// DisplayName returns the name shown publicly, honoring anonymity.
func (t *Testimonial) DisplayName() string {
	if t.IsAnonymous || t.AuthorName == "" {
		return "Anonymous"
	}
	return t.AuthorName
}

// ValidStatus reports whether s is a known moderation state.
func ValidStatus(s TestimonialStatus) bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ValidSource reports whether s is a known source value.
func ValidSource(s TestimonialSource) bool {
	for _, v := range AllSources {
		if v == s {
			return true
		}
	}
	return false
}
