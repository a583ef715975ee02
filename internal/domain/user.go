// Package domain contains the core business entities for Atlas Tasks.
// These are pure Go structs with no external dependencies beyond id
// generation, representing the fundamental concepts of the system.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role determines the baseline permissions of a user.
type Role string

const (
	// RoleAdmin grants full access: user management, task creation,
	// reassignment and deletion.
	RoleAdmin Role = "ADMIN"

	// RoleUser grants access to tasks assigned to the user only.
	RoleUser Role = "USER"
)

// ParseRole validates a role string against the enumerated set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	default:
		return "", ErrInvalidRole
	}
}

// IsAdmin reports whether the role carries administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User represents a registered account in the system.
// Users are created by administrators; there is no self-service signup.
type User struct {
	// ID is the unique identifier for the user (UUID, immutable).
	ID string `json:"id"`

	// Name is the display name. Must be non-empty.
	Name string `json:"name"`

	// Email is the unique email address, case-sensitive as stored.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never exposed in API responses.
	PasswordHash string `json:"-"`

	// Role is the user's role. Defaults to RoleUser.
	Role Role `json:"role"`

	// CreatedAt is set once at creation and never mutated.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp of the last modification.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with default values.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
