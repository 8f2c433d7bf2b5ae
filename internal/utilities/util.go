// Package utilities contain utility code that use across the package
package utilities

import (
	"github.com/vgnshlvnz/vgnshlvnz-s3-cv/internal/validation"
)

// Error kinds returned in the response envelope. Validation and not-found
// conditions are normal control flow; storage and internal errors surface
// with sanitized messages only.
const (
	KindValidationError   = "ValidationError"
	KindNotFound          = "NotFound"
	KindRateLimitExceeded = "RateLimitExceeded"
	KindStorageError      = "StorageError"
	KindInternalError     = "InternalError"
)

// ErrorResponse is the error envelope of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ValidationResponse is the error envelope for rejected payloads; Fields
// enumerates every offending field, not just the first.
type ValidationResponse struct {
	Error   string                  `json:"error"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields"`
}

// MessageResponse type for swagger docs
type MessageResponse struct {
	Message string `json:"message"`
}

// NewValidationResponse wraps field errors in the standard envelope.
func NewValidationResponse(fields []validation.FieldError) ValidationResponse {
	return ValidationResponse{
		Error:   KindValidationError,
		Message: "Request payload failed validation",
		Fields:  fields,
	}
}
