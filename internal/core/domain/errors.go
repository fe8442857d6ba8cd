package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the services wraps exactly one of them
// so the transport layer can pick a status code with errors.Is.
var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAuthorizationDenied  = errors.New("authorization denied")
	ErrValidationFailed     = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrTooManyAttempts      = errors.New("too many attempts")
)

// Store-level sentinels.
var (
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrPatientNotFound = fmt.Errorf("patient %w", ErrNotFound)
	ErrDuplicateEmail  = errors.New("duplicate email")
	ErrDuplicatePhone  = errors.New("duplicate phone")
	ErrDuplicateCode   = errors.New("duplicate patient code")
)

// Error carries a caller-safe message alongside its kind. Fields holds one
// message per invalid input field for validation failures.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func NewAuthenticationError(msg string) *Error {
	return &Error{Kind: ErrAuthenticationFailed, Message: msg}
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: ErrValidationFailed, Message: msg}
}

// NewFieldValidationError reports several invalid fields at once.
func NewFieldValidationError(fields map[string]string) *Error {
	return &Error{Kind: ErrValidationFailed, Message: "Validation failed", Fields: fields}
}

func NewNotFoundError(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}
