package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeAuthenticationRequired = "authentication_required"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound = "not_found"

	// Quiz session errors
	ErrCodeLevelLocked         = "level_locked"
	ErrCodeInsufficientContent = "insufficient_content"
	ErrCodeInvalidIndex        = "invalid_index"
	ErrCodeAlreadyFinished     = "already_finished"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
