package model

import (
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"
)

type MediaType string // kind of attached media

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"
)

// AllMediaTypes in display order.
var AllMediaTypes = []MediaType{MediaImage, MediaVideo, MediaAudio, MediaDocument}

var mediaTypeByExt = map[string]MediaType{
	".jpg": MediaImage, ".jpeg": MediaImage, ".png": MediaImage,
	".gif": MediaImage, ".webp": MediaImage, ".bmp": MediaImage, ".svg": MediaImage,
	".mp4": MediaVideo, ".webm": MediaVideo, ".mov": MediaVideo,
	".avi": MediaVideo, ".mkv": MediaVideo,
	".mp3": MediaAudio, ".wav": MediaAudio, ".ogg": MediaAudio,
	".m4a": MediaAudio, ".flac": MediaAudio,
}

// DetectMediaType maps a filename extension to a media type.
// Unknown extensions fall back to document.
func DetectMediaType(filename string) MediaType {
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := mediaTypeByExt[ext]; ok {
		return t
	}
	return MediaDocument
}

type TestimonialMedia struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	TestimonialID uint        `gorm:"not null;index" json:"testimonial_id"`
	Testimonial   Testimonial `gorm:"foreignKey:TestimonialID" json:"-"`

	FileURL   string    `gorm:"not null" json:"file_url"`
	ObjectKey string    `gorm:"not null" json:"-"`
	MediaType MediaType `gorm:"type:varchar(20);not null" json:"media_type"`
	FileSize  int64     `json:"file_size"`

	Title       string `json:"title,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	IsPrimary   bool   `gorm:"default:false" json:"is_primary"`
	Order       int    `gorm:"default:0" json:"order"`
}

func (TestimonialMedia) TableName() string {
	return "testimonial_media"
}
