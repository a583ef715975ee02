package authz

import (
	"testing"

	"github.com/prn-tf/atlas-tasks/internal/auth"
	"github.com/prn-tf/atlas-tasks/internal/domain"
)

var (
	admin = auth.Principal{UserID: "admin-1", Role: domain.RoleAdmin}
	owner = auth.Principal{UserID: "user-1", Role: domain.RoleUser}
	other = auth.Principal{UserID: "user-2", Role: domain.RoleUser}
)

func taskAssignedTo(userID string) *domain.Task {
	return &domain.Task{
		ID:           "task-1",
		Title:        "write report",
		Status:       domain.StatusPending,
		AssignedToID: userID,
		CreatedByID:  "admin-1",
	}
}

func TestCanPerform_RoleGatedActions(t *testing.T) {
	actions := []Action{ActionCreateTask, ActionDeleteTask, ActionManageUsers}

	for _, action := range actions {
		if !CanPerform(admin, action, nil) {
			t.Errorf("admin should be permitted %s", action)
		}
		if CanPerform(owner, action, nil) {
			t.Errorf("regular user should be denied %s", action)
		}
		// A task resource must not change the outcome for role-gated actions.
		if CanPerform(owner, action, taskAssignedTo(owner.UserID)) {
			t.Errorf("ownership should not grant %s", action)
		}
	}
}

func TestCanPerform_OwnershipActions(t *testing.T) {
	task := taskAssignedTo(owner.UserID)

	for _, action := range []Action{ActionReadTask, ActionUpdateTask} {
		if !CanPerform(admin, action, task) {
			t.Errorf("admin should be permitted %s on any task", action)
		}
		if !CanPerform(owner, action, task) {
			t.Errorf("assignee should be permitted %s on own task", action)
		}
		if CanPerform(other, action, task) {
			t.Errorf("non-assignee should be denied %s", action)
		}
		// Without a resource there is no ownership to establish.
		if CanPerform(owner, action, nil) {
			t.Errorf("non-admin should be denied %s with no resource", action)
		}
	}
}

func TestCanPerform_UnknownAction(t *testing.T) {
	if CanPerform(admin, Action("task:exfiltrate"), nil) {
		t.Error("unknown actions must be denied, even for admins")
	}
}

func TestCanReassign(t *testing.T) {
	if !CanReassign(admin) {
		t.Error("admin should be permitted to reassign")
	}
	if CanReassign(owner) {
		t.Error("non-admin should be denied reassignment, ownership notwithstanding")
	}
}

// TestTaskScope_AgreesWithCanPerform checks the defining property of the
// scope filter: for every principal and task, the filter accepts the task
// iff CanPerform permits reading it.
func TestTaskScope_AgreesWithCanPerform(t *testing.T) {
	principals := []auth.Principal{admin, owner, other}
	tasks := []*domain.Task{
		taskAssignedTo(admin.UserID),
		taskAssignedTo(owner.UserID),
		taskAssignedTo(other.UserID),
		taskAssignedTo("user-3"),
	}

	for _, p := range principals {
		scope := TaskScope(p)
		for _, task := range tasks {
			byFilter := scope.Matches(task)
			byDecision := CanPerform(p, ActionReadTask, task)
			if byFilter != byDecision {
				t.Errorf("principal %s (role %s), task assigned to %s: filter says %v, decision says %v",
					p.UserID, p.Role, task.AssignedToID, byFilter, byDecision)
			}
		}
	}
}

func TestTaskScope_AdminUnrestricted(t *testing.T) {
	scope := TaskScope(admin)
	if scope.AssigneeID != "" {
		t.Errorf("admin scope should be unrestricted, got assignee %q", scope.AssigneeID)
	}
}
