package service

import "errors"

// Sentinel errors shared across the testimonial services. Controllers
// match on these to pick status codes and error codes.
var (
	ErrTestimonialNotFound = errors.New("testimonial not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrMediaNotFound       = errors.New("media not found")

	ErrPermissionDenied = errors.New("permission denied")
	ErrEditDenied       = errors.New("testimonial can only be edited while pending")

	ErrInvalidRating    = errors.New("rating is out of the allowed range")
	ErrContentTooShort  = errors.New("content is too short")
	ErrContentTooLong   = errors.New("content is too long")
	ErrContentRejected  = errors.New("content failed quality checks")
	ErrAnonymousDenied  = errors.New("anonymous testimonials are not allowed")
	ErrInvalidStatus    = errors.New("unknown testimonial status")
	ErrInvalidSource    = errors.New("unknown testimonial source")

	ErrAlreadyInState     = errors.New("testimonial is already in that state")
	ErrInvalidTransition  = errors.New("transition not allowed from the current state")
	ErrReasonRequired     = errors.New("a rejection reason is required")
	ErrResponseRequired   = errors.New("response text is required")

	ErrMediaDisabled    = errors.New("media uploads are disabled")
	ErrFileTooLarge     = errors.New("file exceeds the maximum allowed size")
	ErrFileTypeDenied   = errors.New("file extension is not allowed")

	ErrCategoryInactive = errors.New("category is inactive")
)
