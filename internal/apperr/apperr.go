// Package apperr defines the error taxonomy shared by the ledger, reminder and
// RPC layers. Each type carries a message safe to show to end users.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError indicates the request conflicts with current state,
// e.g. settling a participation twice. Duplicate marks a uniqueness
// violation such as registering an email twice.
type ConflictError struct {
	Message   string
	Duplicate bool
}

func (e *ConflictError) Error() string { return e.Message }

// AuthError indicates an identity or permission failure.
// Forbidden is true when the caller is known but not allowed.
type AuthError struct {
	Message   string
	Forbidden bool
}

func (e *AuthError) Error() string { return e.Message }

// DependencyError indicates a failure in an external collaborator such as
// the SMS provider.
type DependencyError struct {
	Message string
	Err     error
}

func (e *DependencyError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error { return e.Err }

// Validation creates a ValidationError with a formatted message.
func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a NotFoundError with a formatted message.
func NotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a ConflictError with a formatted message.
func Conflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// AlreadyExists creates a ConflictError for a duplicate entity.
func AlreadyExists(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...), Duplicate: true}
}

// Unauthenticated creates an AuthError for a missing or invalid identity.
func Unauthenticated(format string, args ...any) *AuthError {
	return &AuthError{Message: fmt.Sprintf(format, args...)}
}

// Forbidden creates an AuthError for a caller lacking permission.
func Forbidden(format string, args ...any) *AuthError {
	return &AuthError{Message: fmt.Sprintf(format, args...), Forbidden: true}
}

// Dependency wraps err from an external collaborator.
func Dependency(err error, format string, args ...any) *DependencyError {
	return &DependencyError{Message: fmt.Sprintf(format, args...), Err: err}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsAuth reports whether err is or wraps an AuthError.
func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

// IsDependency reports whether err is or wraps a DependencyError.
func IsDependency(err error) bool {
	var target *DependencyError
	return errors.As(err, &target)
}
