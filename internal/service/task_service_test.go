package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/auth"
	"github.com/prn-tf/atlas-tasks/internal/domain"
)

func newTaskService(taskRepo *MockTaskRepository, userRepo *MockUserRepository) *TaskService {
	return NewTaskService(taskRepo, userRepo, zerolog.Nop())
}

func seedTask(repo *MockTaskRepository, id, assignedTo string) *domain.Task {
	task := domain.NewTask("task "+id, "", time.Now().Add(24*time.Hour), assignedTo, "admin-1")
	task.ID = id
	repo.tasks[id] = task
	return task
}

func TestTaskService_Create(t *testing.T) {
	deadline := time.Now().Add(48 * time.Hour).UTC()

	tests := []struct {
		name      string
		principal auth.Principal
		input     CreateTaskInput
		wantErr   error
	}{
		{
			name:      "success",
			principal: adminPrincipal,
			input: CreateTaskInput{
				Title:        "write report",
				Description:  "quarterly numbers",
				Deadline:     deadline,
				AssignedToID: "user-1",
			},
		},
		{
			name:      "non-admin denied",
			principal: userPrincipal,
			input: CreateTaskInput{
				Title:        "write report",
				Deadline:     deadline,
				AssignedToID: "user-1",
			},
			wantErr: domain.ErrAccessDenied,
		},
		{
			name:      "empty title",
			principal: adminPrincipal,
			input: CreateTaskInput{
				Deadline:     deadline,
				AssignedToID: "user-1",
			},
			wantErr: domain.ErrInvalidTitle,
		},
		{
			name:      "missing deadline",
			principal: adminPrincipal,
			input: CreateTaskInput{
				Title:        "write report",
				AssignedToID: "user-1",
			},
			wantErr: domain.ErrInvalidDeadline,
		},
		{
			name:      "dangling assignee",
			principal: adminPrincipal,
			input: CreateTaskInput{
				Title:        "write report",
				Deadline:     deadline,
				AssignedToID: "ghost",
			},
			wantErr: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := NewMockUserRepository()
			seedUser(userRepo, "user-1", "one@example.com", domain.RoleUser)
			taskRepo := NewMockTaskRepository()
			svc := newTaskService(taskRepo, userRepo)

			task, err := svc.Create(context.Background(), tt.principal, tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				if len(taskRepo.tasks) != 0 {
					t.Error("no task should be stored after a failed creation")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if task.Status != domain.StatusPending {
				t.Errorf("expected initial status PENDING, got %s", task.Status)
			}
			if task.CreatedByID != tt.principal.UserID {
				t.Errorf("expected created_by %s, got %s", tt.principal.UserID, task.CreatedByID)
			}
			if !task.Deadline.Equal(deadline) {
				t.Errorf("expected deadline %v, got %v", deadline, task.Deadline)
			}
		})
	}
}

// TestTaskService_OwnershipScenario walks the end-to-end scenario: admin A
// creates user U and task X assigned to U; U reads and updates X, a
// non-assigned user V cannot, and only A may reassign X to V.
func TestTaskService_OwnershipScenario(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	taskRepo := NewMockTaskRepository()
	seedUser(userRepo, "admin-1", "a@example.com", domain.RoleAdmin)
	seedUser(userRepo, "user-1", "u@example.com", domain.RoleUser)
	seedUser(userRepo, "user-2", "v@example.com", domain.RoleUser)
	svc := newTaskService(taskRepo, userRepo)

	principalU := auth.Principal{UserID: "user-1", Role: domain.RoleUser}
	principalV := auth.Principal{UserID: "user-2", Role: domain.RoleUser}

	taskX, err := svc.Create(ctx, adminPrincipal, CreateTaskInput{
		Title:        "task X",
		Deadline:     time.Now().Add(24 * time.Hour),
		AssignedToID: "user-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// U reads its own task.
	got, err := svc.Get(ctx, principalU, taskX.ID)
	if err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if got.ID != taskX.ID {
		t.Fatalf("owner read returned wrong task %s", got.ID)
	}

	// V is not assigned and is denied.
	if _, err := svc.Get(ctx, principalV, taskX.ID); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("non-owner read: expected access denied, got %v", err)
	}

	// U moves the task to IN_PROGRESS.
	inProgress := domain.StatusInProgress
	updated, err := svc.Update(ctx, principalU, taskX.ID, UpdateTaskInput{Status: &inProgress})
	if err != nil {
		t.Fatalf("owner status update: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", updated.Status)
	}

	// U may not reassign, even on its own task.
	reassignTo := "user-2"
	if _, err := svc.Update(ctx, principalU, taskX.ID, UpdateTaskInput{AssignedToID: &reassignTo}); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("owner reassignment: expected access denied, got %v", err)
	}
	if stored, _ := taskRepo.GetByID(ctx, taskX.ID); stored.AssignedToID != "user-1" {
		t.Fatalf("assignee changed by a denied update: %s", stored.AssignedToID)
	}

	// A performs the same reassignment successfully.
	updated, err = svc.Update(ctx, adminPrincipal, taskX.ID, UpdateTaskInput{AssignedToID: &reassignTo})
	if err != nil {
		t.Fatalf("admin reassignment: %v", err)
	}
	if updated.AssignedToID != "user-2" {
		t.Fatalf("expected assignee user-2, got %s", updated.AssignedToID)
	}
}

func TestTaskService_List_ScopedByPrincipal(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	taskRepo := NewMockTaskRepository()
	seedTask(taskRepo, "task-1", "user-1")
	seedTask(taskRepo, "task-2", "user-1")
	seedTask(taskRepo, "task-3", "user-2")
	svc := newTaskService(taskRepo, userRepo)

	// Admin sees everything.
	out, err := svc.List(ctx, adminPrincipal, ListTasksInput{})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(out.Tasks) != 3 {
		t.Errorf("admin should see 3 tasks, got %d", len(out.Tasks))
	}

	// A regular user sees exactly the tasks assigned to them, and the
	// listing agrees with per-item read authorization.
	out, err = svc.List(ctx, userPrincipal, ListTasksInput{})
	if err != nil {
		t.Fatalf("user list: %v", err)
	}
	if len(out.Tasks) != 2 {
		t.Errorf("user-1 should see 2 tasks, got %d", len(out.Tasks))
	}
	for _, task := range out.Tasks {
		if _, err := svc.Get(ctx, userPrincipal, task.ID); err != nil {
			t.Errorf("listed task %s not readable by the same principal: %v", task.ID, err)
		}
	}
	if _, err := svc.Get(ctx, userPrincipal, "task-3"); !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("unlisted task should be unreadable, got %v", err)
	}
}

func TestTaskService_Update_DanglingAssigneeLeavesTaskUnchanged(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	taskRepo := NewMockTaskRepository()
	seedUser(userRepo, "user-1", "one@example.com", domain.RoleUser)
	seedTask(taskRepo, "task-1", "user-1")
	svc := newTaskService(taskRepo, userRepo)

	ghost := "ghost"
	_, err := svc.Update(ctx, adminPrincipal, "task-1", UpdateTaskInput{AssignedToID: &ghost})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected not found for dangling assignee, got %v", err)
	}

	stored, _ := taskRepo.GetByID(ctx, "task-1")
	if stored.AssignedToID != "user-1" {
		t.Errorf("prior assignee should be unchanged, got %s", stored.AssignedToID)
	}
}

func TestTaskService_Update_DescriptionClearVsOmit(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	taskRepo := NewMockTaskRepository()
	task := seedTask(taskRepo, "task-1", "user-1")
	task.Description = "original"
	svc := newTaskService(taskRepo, userRepo)

	// Omitted description is "no change".
	title := "new title"
	updated, err := svc.Update(ctx, userPrincipal, "task-1", UpdateTaskInput{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Description != "original" {
		t.Errorf("omitted description should be untouched, got %q", updated.Description)
	}

	// An explicitly empty description clears the field.
	empty := ""
	updated, err = svc.Update(ctx, userPrincipal, "task-1", UpdateTaskInput{Description: &empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Description != "" {
		t.Errorf("explicit empty description should clear, got %q", updated.Description)
	}
}

func TestTaskService_Update_InvalidStatus(t *testing.T) {
	userRepo := NewMockUserRepository()
	taskRepo := NewMockTaskRepository()
	seedTask(taskRepo, "task-1", "user-1")
	svc := newTaskService(taskRepo, userRepo)

	bogus := domain.TaskStatus("ARCHIVED")
	_, err := svc.Update(context.Background(), userPrincipal, "task-1", UpdateTaskInput{Status: &bogus})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	userRepo := NewMockUserRepository()
	taskRepo := NewMockTaskRepository()
	seedTask(taskRepo, "task-1", "user-1")
	svc := newTaskService(taskRepo, userRepo)

	// Ownership alone never authorizes deletion.
	if err := svc.Delete(ctx, userPrincipal, "task-1"); !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("owner delete: expected access denied, got %v", err)
	}
	if _, ok := taskRepo.tasks["task-1"]; !ok {
		t.Fatal("task removed by a denied delete")
	}

	if err := svc.Delete(ctx, adminPrincipal, "missing"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("expected not found for unknown id, got %v", err)
	}

	if err := svc.Delete(ctx, adminPrincipal, "task-1"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, ok := taskRepo.tasks["task-1"]; ok {
		t.Error("task still present after delete")
	}
}
