package errors

import (
	"fmt"
)

// Error types for different categories of failures
const (
	// Input/File errors
	ErrInputRead    = "INPUT_READ_ERROR"
	ErrFileParse    = "FILE_PARSE_ERROR"
	ErrFileNotFound = "FILE_NOT_FOUND"

	// Dialect errors
	ErrUnknownDialect = "UNKNOWN_DIALECT"

	// Configuration errors
	ErrConfigRead       = "CONFIG_READ_ERROR"
	ErrConfigValidation = "CONFIG_VALIDATION_ERROR"
	ErrUnknownOption    = "UNKNOWN_OPTION"

	// Purification errors
	ErrTransformApply = "TRANSFORM_APPLY_ERROR"
	ErrGeneration     = "CODE_GENERATION_ERROR"
	ErrReportEncoding = "REPORT_ENCODING_ERROR"

	// System errors
	ErrPermission = "PERMISSION_ERROR"
	ErrWatch      = "WATCH_ERROR"
)

// PurifyError represents a structured error with type and context
type PurifyError struct {
	Type    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *PurifyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows error unwrapping
func (e *PurifyError) Unwrap() error {
	return e.Cause
}

// New creates a new PurifyError
func New(errorType, message string) *PurifyError {
	return &PurifyError{
		Type:    errorType,
		Message: message,
		Context: make(map[string]interface{}),
	}
}

// Newf creates a new PurifyError with a formatted message
func Newf(errorType, format string, args ...interface{}) *PurifyError {
	return New(errorType, fmt.Sprintf(format, args...))
}

// Wrap creates a new PurifyError wrapping an existing error
func Wrap(errorType, message string, cause error) *PurifyError {
	return &PurifyError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (e *PurifyError) WithContext(key string, value interface{}) *PurifyError {
	e.Context[key] = value
	return e
}

// IsType reports whether err is a PurifyError of the given type
func IsType(err error, errorType string) bool {
	if pe, ok := err.(*PurifyError); ok {
		return pe.Type == errorType
	}
	return false
}
