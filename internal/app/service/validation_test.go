package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/testimonialhq/testimonials-backend/config"
)

func validatorConfig() *config.TestimonialsConfig {
	return &config.TestimonialsConfig{
		MaxRating:         5,
		MinContentLength:  10,
		MaxContentLength:  5000,
		AllowAnonymous:    true,
		ForbiddenWords:    []string{"spamword", "scam"},
		MaxFileSize:       10 * 1024 * 1024,
		AllowedExtensions: []string{".jpg", ".png", ".mp4", ".pdf"},
	}
}

func TestValidateRating(t *testing.T) {
	v := NewValidator(validatorConfig())

	tests := []struct {
		name    string
		rating  int
		wantErr error
	}{
		{name: "Minimum rating", rating: 1, wantErr: nil},
		{name: "Maximum rating", rating: 5, wantErr: nil},
		{name: "Zero rating", rating: 0, wantErr: ErrInvalidRating},
		{name: "Negative rating", rating: -1, wantErr: ErrInvalidRating},
		{name: "Above maximum", rating: 6, wantErr: ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateRating(tt.rating)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRatingCustomMax(t *testing.T) {
	cfg := validatorConfig()
	cfg.MaxRating = 10
	v := NewValidator(cfg)

	assert.NoError(t, v.ValidateRating(10))
	assert.ErrorIs(t, v.ValidateRating(11), ErrInvalidRating)
}

func TestValidateContent(t *testing.T) {
	v := NewValidator(validatorConfig())

	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "Valid content",
			content: "The service was excellent and the team was responsive.",
			wantErr: nil,
		},
		{
			name:    "Too short",
			content: "Great!",
			wantErr: ErrContentTooShort,
		},
		{
			name:    "Whitespace does not count toward length",
			content: "   hi     ",
			wantErr: ErrContentTooShort,
		},
		{
			name:    "Forbidden word",
			content: "This is honestly a scam operation if you ask me",
			wantErr: ErrContentRejected,
		},
		{
			name:    "Forbidden word case insensitive",
			content: "Definitely a SpamWord heavy experience overall today",
			wantErr: ErrContentRejected,
		},
		{
			name:    "Excessive repetition",
			content: strings.Repeat("good ", 20),
			wantErr: ErrContentRejected,
		},
		{
			name:    "Short phrases skip repetition check",
			content: "good good good",
			wantErr: nil,
		},
		{
			name:    "Multibyte content below minimum",
			content: "좋아요좋",
			wantErr: ErrContentTooShort,
		},
		{
			name:    "Multibyte content at minimum",
			content: "정말 좋은 서비스였어요",
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateContent(tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateContentMaxLength(t *testing.T) {
	cfg := validatorConfig()
	cfg.MaxContentLength = 50
	v := NewValidator(cfg)

	err := v.ValidateContent("This testimonial is deliberately much longer than fifty characters to trip the limit.")
	assert.ErrorIs(t, err, ErrContentTooLong)

	// 50 CJK characters take 150 bytes but still fit a 50 character limit.
	assert.NoError(t, v.ValidateContent(strings.Repeat("좋", 50)))
}

func TestValidateAnonymity(t *testing.T) {
	v := NewValidator(validatorConfig())
	assert.NoError(t, v.ValidateAnonymity(true))
	assert.NoError(t, v.ValidateAnonymity(false))

	cfg := validatorConfig()
	cfg.AllowAnonymous = false
	strict := NewValidator(cfg)
	assert.ErrorIs(t, strict.ValidateAnonymity(true), ErrAnonymousDenied)
	assert.NoError(t, strict.ValidateAnonymity(false))
}

func TestValidateFile(t *testing.T) {
	v := NewValidator(validatorConfig())

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{name: "Valid image", filename: "photo.jpg", size: 1024, wantErr: nil},
		{name: "Uppercase extension", filename: "PHOTO.JPG", size: 1024, wantErr: nil},
		{name: "Disallowed extension", filename: "script.exe", size: 1024, wantErr: ErrFileTypeDenied},
		{name: "No extension", filename: "README", size: 1024, wantErr: ErrFileTypeDenied},
		{name: "Too large", filename: "video.mp4", size: 11 * 1024 * 1024, wantErr: ErrFileTooLarge},
		{name: "Exactly at limit", filename: "video.mp4", size: 10 * 1024 * 1024, wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFile(tt.filename, tt.size)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
