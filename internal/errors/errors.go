package errors

import (
	stderrors "errors"
	"fmt"
)

// SiftError is the structured error type for codesift.
// Handlers return it so the protocol layer can map failures to stable codes.
type SiftError struct {
	// Code is the unique error code (e.g., "ERR_402_MISSING_PARAM").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *SiftError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SiftError) Unwrap() error {
	return e.Cause
}

// Is matches another SiftError by code, so errors.Is works against a template error.
func (e *SiftError) Is(target error) bool {
	if t, ok := target.(*SiftError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *SiftError) WithDetail(key, value string) *SiftError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new SiftError with the given code and message.
// The category is derived from the code.
func New(code string, message string, cause error) *SiftError {
	return &SiftError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates a SiftError from an existing error.
// The error's message becomes the SiftError message.
func Wrap(code string, err error) *SiftError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *SiftError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// IOError creates an I/O error that is neither a missing file nor a permission problem.
func IOError(message string, cause error) *SiftError {
	return New(ErrCodeIO, message, cause)
}

// MissingParam reports a required request parameter that was not supplied.
func MissingParam(name string) *SiftError {
	return New(ErrCodeMissingParam, fmt.Sprintf("missing required parameter: %s", name), nil).
		WithDetail("param", name)
}

// InvalidParam reports a request parameter with the wrong type or value.
func InvalidParam(name, reason string) *SiftError {
	return New(ErrCodeInvalidParam, fmt.Sprintf("invalid parameter %s: %s", name, reason), nil).
		WithDetail("param", name)
}

// IndexNotBuilt reports a search issued before any file was indexed.
func IndexNotBuilt() *SiftError {
	return New(ErrCodeIndexNotBuilt, "index not built: call build_index first", nil)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *SiftError {
	return New(ErrCodeInternal, message, cause)
}

// GetCode extracts the error code from the first SiftError in the chain.
// Returns empty string if there is none.
func GetCode(err error) string {
	var se *SiftError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// GetCategory extracts the category from the first SiftError in the chain.
// Returns empty string if there is none.
func GetCategory(err error) Category {
	var se *SiftError
	if stderrors.As(err, &se) {
		return se.Category
	}
	return ""
}
