// Package repository defines data access interfaces for Atlas Tasks.
// These interfaces abstract database operations, allowing for different
// implementations (PostgreSQL, SQLite, in-memory for testing) while
// keeping the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/atlas-tasks/internal/domain"
)

// ListOptions holds pagination parameters for list operations.
type ListOptions struct {
	Limit  int
	Offset int
}

// ListResult holds a page of items plus the total count.
type ListResult[T any] struct {
	Items  []*T
	Total  int64
	Offset int
	Limit  int
}

// TaskFilter narrows task queries to a permitted subset. The zero value
// matches every task.
type TaskFilter struct {
	// AssigneeID restricts results to tasks assigned to this user.
	// Empty means no restriction.
	AssigneeID string

	// Status restricts results to tasks in this state.
	// Empty means no restriction.
	Status domain.TaskStatus
}

// Matches reports whether a task satisfies the filter. Store
// implementations must return exactly the set of tasks for which
// Matches is true.
func (f TaskFilter) Matches(t *domain.Task) bool {
	if f.AssigneeID != "" && t.AssignedToID != f.AssigneeID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	return true
}

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
// Implementations return domain sentinel errors (domain.ErrUserNotFound,
// domain.ErrEmailTaken) for business-visible conditions.
type UserRepository interface {
	// Create inserts a new user. Returns domain.ErrEmailTaken if the
	// email uniqueness constraint is violated.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email (unique field lookup).
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByEmail checks whether a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Update persists changes to an existing user. Returns
	// domain.ErrEmailTaken if an email change collides.
	Update(ctx context.Context, user *domain.User) error

	// Delete removes a user by ID.
	Delete(ctx context.Context, id string) error

	// List returns users with pagination, newest first.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)
}

// =============================================================================
// Task Repository
// =============================================================================

// TaskRepository defines the interface for task data access.
type TaskRepository interface {
	// Create inserts a new task.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	GetByID(ctx context.Context, id string) (*domain.Task, error)

	// Update persists changes to an existing task.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID.
	Delete(ctx context.Context, id string) error

	// List returns the tasks matching the filter, newest first.
	List(ctx context.Context, filter TaskFilter, opts ListOptions) (*ListResult[domain.Task], error)

	// CountByAssignee returns the number of tasks assigned to a user.
	CountByAssignee(ctx context.Context, userID string) (int64, error)
}
