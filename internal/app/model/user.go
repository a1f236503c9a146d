package model

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string // user permission level

const (
	RoleUser      UserRole = "user"      // regular account
	RoleModerator UserRole = "moderator" // can moderate testimonials
	RoleAdmin     UserRole = "admin"     // full access
)

type User struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Role         UserRole       `gorm:"type:varchar(20);default:'user'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	Testimonials []Testimonial `gorm:"foreignKey:AuthorID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// CanModerate reports whether the user's role grants moderation rights.
// moderationRoles comes from config; moderator and admin always qualify.
func (u *User) CanModerate(moderationRoles []string) bool {
	if u.Role == RoleModerator || u.Role == RoleAdmin {
		return true
	}
	for _, r := range moderationRoles {
		if string(u.Role) == r {
			return true
		}
	}
	return false
}
