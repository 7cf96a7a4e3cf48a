package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown       ErrorCode = "UNKNOWN"
	ErrInternal      ErrorCode = "INTERNAL"
	ErrInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Schema errors on manifests, customer configs and overrides
	ErrValidation ErrorCode = "VALIDATION"

	// Backend errors (non-success HTTP status or unreachable host)
	ErrBackend        ErrorCode = "BACKEND"
	ErrBackendPartial ErrorCode = "BACKEND_PARTIAL"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// Exit codes returned by the dac binary
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitBackend = 2
)

// DacError represents a structured error with code and details
type DacError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DacError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DacError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DacError) Is(target error) bool {
	var targetErr *DacError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DacError with the given code and message
func New(code ErrorCode, message string) *DacError {
	return &DacError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DacError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DacError {
	return &DacError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DacError
func Wrap(err error, code ErrorCode, message string) *DacError {
	if err == nil {
		return nil
	}
	return &DacError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DacError {
	if err == nil {
		return nil
	}
	return &DacError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DacError) WithDetail(key string, value interface{}) *DacError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *DacError) WithDetails(details map[string]interface{}) *DacError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var dacErr *DacError
	if errors.As(err, &dacErr) {
		return dacErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DacError
func GetErrorCode(err error) ErrorCode {
	var dacErr *DacError
	if errors.As(err, &dacErr) {
		return dacErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DacError
func GetErrorDetails(err error) map[string]interface{} {
	var dacErr *DacError
	if errors.As(err, &dacErr) {
		return dacErr.Details
	}
	return nil
}

// ExitCode maps an error to the process exit code. Configuration and backend
// failures exit 2, everything else that fails exits 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetErrorCode(err) {
	case ErrConfigLoad, ErrConfigValid, ErrBackend, ErrBackendPartial:
		return ExitBackend
	default:
		return ExitFailure
	}
}
