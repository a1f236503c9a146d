package errors

// Error code constants.
// Format: CATEGORY_SPECIFIC_DETAIL
// Frontends map these codes to localized messages.

const (
	// ==================== Auth (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // bad email/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden     = "AUTHZ_FORBIDDEN"      // no access
	AuthzModeratorOnly = "AUTHZ_MODERATOR_ONLY" // moderators/admins only
	AuthzOwnerOnly     = "AUTHZ_OWNER_ONLY"     // author only

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationTooShort      = "VALIDATION_TOO_SHORT"
	ValidationTooLong       = "VALIDATION_TOO_LONG"
	ValidationRequired      = "VALIDATION_REQUIRED"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Testimonial (TESTIMONIAL_) ====================
	TestimonialNotFound          = "TESTIMONIAL_NOT_FOUND"
	TestimonialInvalidRating     = "TESTIMONIAL_INVALID_RATING"   // rating out of bounds
	TestimonialContentTooShort   = "TESTIMONIAL_CONTENT_TOO_SHORT"
	TestimonialContentTooLong    = "TESTIMONIAL_CONTENT_TOO_LONG"
	TestimonialContentRejected   = "TESTIMONIAL_CONTENT_REJECTED" // forbidden words / low quality
	TestimonialAnonymousDenied   = "TESTIMONIAL_ANONYMOUS_DENIED" // anonymity disabled
	TestimonialAlreadyInState    = "TESTIMONIAL_ALREADY_IN_STATE" // no-op transition
	TestimonialInvalidTransition = "TESTIMONIAL_INVALID_TRANSITION"
	TestimonialReasonRequired    = "TESTIMONIAL_REASON_REQUIRED" // rejection needs a reason
	TestimonialResponseRequired  = "TESTIMONIAL_RESPONSE_REQUIRED"
	TestimonialEditDenied        = "TESTIMONIAL_EDIT_DENIED" // author edits allowed only while pending

	// ==================== Category (CATEGORY_) ====================
	CategoryNotFound = "CATEGORY_NOT_FOUND"
	CategoryInactive = "CATEGORY_INACTIVE"

	// ==================== Media (MEDIA_) ====================
	MediaNotFound        = "MEDIA_NOT_FOUND"
	MediaDisabled        = "MEDIA_DISABLED"
	MediaInvalidFileType = "MEDIA_INVALID_FILE_TYPE"
	MediaFileTooLarge    = "MEDIA_FILE_TOO_LARGE"
	MediaUploadFailed    = "MEDIA_UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
