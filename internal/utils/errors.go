package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors used across services.
var (
	ErrNotFound         = errors.New("PRODUCT_NOT_FOUND")
	ErrInvalidCode      = errors.New("INVALID_CODE")
	ErrStoreUnavailable = errors.New("STORE_UNAVAILABLE")
)

// ValidationError reports which fields failed schema validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, ", "))
}

// NewValidationError builds a ValidationError for the given field names.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
