// Package domain contains the core business entities for Atlas Tasks.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a task.
// The set is flat: any permitted update may move a task between any two
// states. No transition graph is enforced.
type TaskStatus string

const (
	// StatusPending is the initial state of every task.
	StatusPending TaskStatus = "PENDING"

	// StatusInProgress marks a task being worked on.
	StatusInProgress TaskStatus = "IN_PROGRESS"

	// StatusDone marks a completed task.
	StatusDone TaskStatus = "DONE"
)

// ParseTaskStatus validates a status string against the enumerated set.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case StatusPending, StatusInProgress, StatusDone:
		return TaskStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Task represents a unit of work assigned to exactly one user.
type Task struct {
	// ID is the unique identifier for the task (UUID, immutable).
	ID string `json:"id"`

	// Title is the short, non-empty summary of the task.
	Title string `json:"title"`

	// Description is optional free text. Defaults to empty.
	Description string `json:"description"`

	// Status is the lifecycle state. Defaults to StatusPending.
	Status TaskStatus `json:"status"`

	// Deadline is the required completion timestamp.
	Deadline time.Time `json:"deadline"`

	// AssignedToID references the user responsible for completing the
	// task. Must reference an existing user at all times.
	AssignedToID string `json:"assigned_to_id"`

	// CreatedByID references the user who created the task.
	// Set once at creation and never mutated.
	CreatedByID string `json:"created_by_id"`

	// CreatedAt is the timestamp when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the task was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a new Task in the pending state.
func NewTask(title, description string, deadline time.Time, assignedToID, createdByID string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:           uuid.NewString(),
		Title:        title,
		Description:  description,
		Status:       StatusPending,
		Deadline:     deadline,
		AssignedToID: assignedToID,
		CreatedByID:  createdByID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// IsAssignedTo reports whether the task is assigned to the given user.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssignedToID == userID
}
