package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies pipeline errors by how they propagate: dataset-level
// issues abort the current query, row-level issues are absorbed during
// preprocessing. Statistics with insufficient samples are not errors at all;
// they surface as explicit null results (domain.NullFloat).
type ErrorType string

const (
	// ErrTypeDataUnavailable marks missing or unreadable input files.
	// Fatal to the current query; surfaced to the caller before any
	// derived computation runs.
	ErrTypeDataUnavailable ErrorType = "DATA_UNAVAILABLE"
	// ErrTypeMalformedRecord marks a single row whose nested field failed
	// to parse. Recovered locally by skipping the row or association.
	ErrTypeMalformedRecord ErrorType = "MALFORMED_RECORD"
	// ErrTypeStorage marks cache read/write failures.
	ErrTypeStorage ErrorType = "STORAGE"
	// ErrTypeValidation marks rejected request or config input.
	ErrTypeValidation ErrorType = "VALIDATION"
)

// Sentinel errors for errors.Is checks across package boundaries.
var (
	ErrDataUnavailable = &AppError{Type: ErrTypeDataUnavailable, Message: "input dataset not available"}
	ErrMalformedRecord = &AppError{Type: ErrTypeMalformedRecord, Message: "record failed to parse"}
)

// AppError represents an application-specific error.
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to walk the cause chain.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError of the same type, so wrapped domain errors compare
// equal to the package sentinels.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Type == other.Type
}

// NewAppError creates a new application error.
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{Type: errType, Message: message, Cause: cause}
}

// DataUnavailable wraps cause as a dataset-level availability failure.
func DataUnavailable(message string, cause error) *AppError {
	return NewAppError(ErrTypeDataUnavailable, message, cause)
}

// MalformedRecord wraps cause as a recoverable row-level parse failure.
func MalformedRecord(message string, cause error) *AppError {
	return NewAppError(ErrTypeMalformedRecord, message, cause)
}

// Validation rejects a request parameter with a field-qualified message.
func Validation(field, message string) *AppError {
	return NewAppError(ErrTypeValidation, fmt.Sprintf("%s: %s", field, message), nil)
}
