// Package authz is the authorization core of Atlas Tasks: pure decision
// functions mapping (principal, action, resource) to permit/deny, and a
// scope filter for collection reads. The package holds no state, touches
// no storage and knows nothing about transports, which keeps every rule
// testable in isolation.
package authz

import (
	"github.com/prn-tf/atlas-tasks/internal/auth"
	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/repository"
)

// Action is a named operation subject to authorization.
type Action string

const (
	// ActionCreateTask covers task creation. Admin-only.
	ActionCreateTask Action = "task:create"

	// ActionReadTask covers reading a single task or listing tasks.
	ActionReadTask Action = "task:read"

	// ActionUpdateTask covers mutating an existing task.
	ActionUpdateTask Action = "task:update"

	// ActionDeleteTask covers task deletion. Admin-only; ownership alone
	// never authorizes deletion.
	ActionDeleteTask Action = "task:delete"

	// ActionManageUsers covers every account management operation.
	// Admin-only.
	ActionManageUsers Action = "user:manage"
)

// CanPerform decides whether a principal may perform an action, optionally
// on a concrete task. Deny is terminal: callers must not fetch or mutate
// the resource further after a deny.
//
// For ActionReadTask and ActionUpdateTask the decision depends on the
// resource: non-admins are permitted only on tasks assigned to them, so
// callers must fetch the task first and pass it here. The task argument is
// ignored for the role-gated actions.
func CanPerform(p auth.Principal, action Action, task *domain.Task) bool {
	switch action {
	case ActionManageUsers, ActionCreateTask, ActionDeleteTask:
		return p.IsAdmin()

	case ActionReadTask, ActionUpdateTask:
		if p.IsAdmin() {
			return true
		}
		return task != nil && task.IsAssignedTo(p.UserID)

	default:
		return false
	}
}

// CanReassign decides the field-level reassignment rule: changing a task's
// assignee is an administrator-only mutation, even when the top-level
// update check passed because the principal owns the task.
func CanReassign(p auth.Principal) bool {
	return p.IsAdmin()
}

// TaskScope returns the filter that narrows task listings to what the
// principal is permitted to see. Admins see everything; regular users see
// exactly the tasks assigned to them.
//
// The filter is defined to agree with CanPerform(p, ActionReadTask, t) for
// every task t; the two paths are interchangeable and services need no
// per-item check after applying the scope.
func TaskScope(p auth.Principal) repository.TaskFilter {
	if p.IsAdmin() {
		return repository.TaskFilter{}
	}
	return repository.TaskFilter{AssigneeID: p.UserID}
}
