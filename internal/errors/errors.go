package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies application errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeExternal   ErrorType = "external_api"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError carries a type and code alongside the wrapped cause. Inside the
// analysis core only not_found (missing owner/day-log) is allowed to propagate;
// AI-side failures degrade to fallback values instead.
type AppError struct {
	Type     ErrorType
	Code     string
	Message  string
	Internal error
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return errors.Is(e.Internal, target)
}

// New creates a new AppError.
func New(errorType ErrorType, code, message string) *AppError {
	return &AppError{Type: errorType, Code: code, Message: message}
}

// Wrap wraps an existing error into AppError.
func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return &AppError{Type: errorType, Code: code, Message: message, Internal: err}
}

// Predefined errors
var (
	ErrUserNotFound   = New(ErrorTypeNotFound, "USER_NOT_FOUND", "user not found")
	ErrDayLogNotFound = New(ErrorTypeNotFound, "DAY_LOG_NOT_FOUND", "day log not found for date")
	ErrInvalidInput   = New(ErrorTypeValidation, "INVALID_INPUT", "invalid input provided")
)

// NewDatabaseError wraps a persistence failure.
func NewDatabaseError(err error) *AppError {
	return Wrap(err, ErrorTypeDatabase, "DB_ERROR", "database operation failed")
}

// IsNotFound reports whether err is a not_found application error.
func IsNotFound(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == ErrorTypeNotFound
	}
	return false
}
