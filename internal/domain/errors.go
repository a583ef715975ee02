// Package domain contains the core business entities for Atlas Tasks.
package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.)
// and map one-to-one onto the user-visible outcome taxonomy:
// Unauthenticated, Forbidden, NotFound, Conflict, Invalid.

var (
	// ===========================================
	// Authentication Errors (Unauthenticated)
	// ===========================================

	// ErrUnauthenticated indicates the request carries no verifiable
	// identity. Raised before any policy check executes.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInvalidCredentials indicates a login attempt failed. It is
	// deliberately identical for unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Authorization Errors (Forbidden)
	// ===========================================

	// ErrAccessDenied indicates the authenticated principal is not
	// permitted to perform the action on the resource.
	ErrAccessDenied = errors.New("access denied")

	// ===========================================
	// User Errors
	// ===========================================

	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates a user with the same email already exists.
	ErrEmailTaken = errors.New("email already in use")

	// ErrUserHasTasks indicates deletion was blocked because tasks are
	// still assigned to the user.
	ErrUserHasTasks = errors.New("user still has assigned tasks")

	// ===========================================
	// Task Errors
	// ===========================================

	// ErrTaskNotFound indicates the requested task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ===========================================
	// Validation Errors (Invalid)
	// ===========================================

	// ErrInvalidRole indicates a role outside the enumerated set.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidStatus indicates a task status outside the enumerated set.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrInvalidEmail indicates a malformed email address.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidName indicates an empty or malformed name.
	ErrInvalidName = errors.New("name must not be empty")

	// ErrInvalidPassword indicates a password below the minimum length.
	ErrInvalidPassword = errors.New("invalid password: must be at least 8 characters")

	// ErrInvalidTitle indicates an empty task title.
	ErrInvalidTitle = errors.New("title must not be empty")

	// ErrInvalidDeadline indicates a missing or zero deadline.
	ErrInvalidDeadline = errors.New("deadline is required")

	// ===========================================
	// Infrastructure
	// ===========================================

	// ErrInternal indicates an unexpected infrastructure failure.
	// Never returned for a business rule violation.
	ErrInternal = errors.New("internal error")
)

// DomainError wraps a domain error with additional context.
type DomainError struct {
	// Err is the underlying domain error.
	Err error

	// Message provides additional context.
	Message string

	// Resource identifies the affected resource (e.g., a task or user id).
	Resource string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Err.Error(), e.Message, e.Resource)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError with context.
func NewDomainError(err error, message, resource string) *DomainError {
	return &DomainError{
		Err:      err,
		Message:  message,
		Resource: resource,
	}
}
