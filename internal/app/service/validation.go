package service

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/testimonialhq/testimonials-backend/config"
)

// Validator applies the configured submission policy: rating bounds,
// content length and quality, anonymity, file constraints.
type Validator struct {
	cfg *config.TestimonialsConfig
}

func NewValidator(cfg *config.TestimonialsConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateRating checks that rating is within [1, MaxRating].
func (v *Validator) ValidateRating(rating int) error {
	if rating < 1 || rating > v.cfg.MaxRating {
		return fmt.Errorf("%w: must be between 1 and %d", ErrInvalidRating, v.cfg.MaxRating)
	}
	return nil
}

// ValidateContent checks length bounds, forbidden words, and basic spam
// repetition. Whitespace is trimmed before measuring length.
func (v *Validator) ValidateContent(content string) error {
	trimmed := strings.TrimSpace(content)

	// Length limits are in characters, not bytes.
	length := utf8.RuneCountInString(trimmed)
	if length < v.cfg.MinContentLength {
		return fmt.Errorf("%w: minimum %d characters", ErrContentTooShort, v.cfg.MinContentLength)
	}
	if v.cfg.MaxContentLength > 0 && length > v.cfg.MaxContentLength {
		return fmt.Errorf("%w: maximum %d characters", ErrContentTooLong, v.cfg.MaxContentLength)
	}

	lower := strings.ToLower(trimmed)
	for _, word := range v.cfg.ForbiddenWords {
		word = strings.TrimSpace(strings.ToLower(word))
		if word != "" && strings.Contains(lower, word) {
			return fmt.Errorf("%w: contains inappropriate language", ErrContentRejected)
		}
	}

	// Repetition check: with more than 5 words, fewer than 30% unique
	// words reads as spam.
	words := strings.Fields(lower)
	if len(words) > 5 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < 0.3 {
			return fmt.Errorf("%w: excessive repetition", ErrContentRejected)
		}
	}

	return nil
}

// ValidateAnonymity rejects anonymous submissions when the policy
// forbids them.
func (v *Validator) ValidateAnonymity(isAnonymous bool) error {
	if isAnonymous && !v.cfg.AllowAnonymous {
		return ErrAnonymousDenied
	}
	return nil
}

// ValidateFile checks extension and size limits for a media upload.
func (v *Validator) ValidateFile(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("%w: missing file extension", ErrFileTypeDenied)
	}

	allowed := false
	for _, allowedExt := range v.cfg.AllowedExtensions {
		if ext == strings.ToLower(strings.TrimSpace(allowedExt)) {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s", ErrFileTypeDenied, ext)
	}

	if size > v.cfg.MaxFileSize {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, v.cfg.MaxFileSize)
	}
	return nil
}
