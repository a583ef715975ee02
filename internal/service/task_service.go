// Package service provides business logic services for Atlas Tasks.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/auth"
	"github.com/prn-tf/atlas-tasks/internal/authz"
	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/repository"
)

// TaskService owns the task lifecycle. Every operation consults the authz
// policy before touching the task store: single-resource operations after
// the fetch (ownership is resource-dependent), collection reads through
// the scope filter at query time.
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
		logger:   logger.With().Str("service", "task").Logger(),
	}
}

// CreateTaskInput contains the data needed to create a task.
type CreateTaskInput struct {
	Title        string
	Description  string
	Deadline     time.Time
	AssignedToID string
}

// Create creates a new task. Administrator-only. The assignee reference is
// resolved synchronously against the user store; a dangling reference
// fails NotFound before anything is written.
func (s *TaskService) Create(ctx context.Context, principal auth.Principal, input CreateTaskInput) (*domain.Task, error) {
	if !authz.CanPerform(principal, authz.ActionCreateTask, nil) {
		return nil, domain.ErrAccessDenied
	}

	if input.Title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if input.Deadline.IsZero() {
		return nil, domain.ErrInvalidDeadline
	}

	if _, err := s.resolveAssignee(ctx, input.AssignedToID); err != nil {
		return nil, err
	}

	task := domain.NewTask(input.Title, input.Description, input.Deadline, input.AssignedToID, principal.UserID)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		s.logger.Error().Err(err).Msg("failed to create task")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("assigned_to", task.AssignedToID).
		Str("created_by", task.CreatedByID).
		Msg("task created")

	return task, nil
}

// ListTasksInput contains pagination options for listing tasks.
type ListTasksInput struct {
	Status domain.TaskStatus // optional; narrows within the permitted scope
	Limit  int
	Offset int
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Tasks      []*domain.Task
	TotalCount int64
}

// List returns the tasks the principal is permitted to see. The scope
// filter is applied at query time and is equivalent to a per-item read
// check, so no second pass is needed.
func (s *TaskService) List(ctx context.Context, principal auth.Principal, input ListTasksInput) (*ListTasksOutput, error) {
	filter := authz.TaskScope(principal)
	filter.Status = input.Status

	if input.Limit <= 0 {
		input.Limit = 50
	}
	if input.Limit > 200 {
		input.Limit = 200
	}

	result, err := s.taskRepo.List(ctx, filter, repository.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list tasks")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	return &ListTasksOutput{
		Tasks:      result.Items,
		TotalCount: result.Total,
	}, nil
}

// Get retrieves a single task. The task is fetched first, then the policy
// is consulted with the concrete resource; non-admins get the task only
// when assigned to it.
func (s *TaskService) Get(ctx context.Context, principal auth.Principal, id string) (*domain.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		s.logger.Error().Err(err).Str("task_id", id).Msg("failed to get task")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	if !authz.CanPerform(principal, authz.ActionReadTask, task) {
		return nil, domain.ErrAccessDenied
	}

	return task, nil
}

// UpdateTaskInput contains the fields to change on a task. Nil pointers
// mean "no change": a description explicitly set to the empty string is
// distinct from an omitted description.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *domain.TaskStatus
	Deadline     *time.Time
	AssignedToID *string
}

// Update applies only the supplied fields to a task. Fetch-then-authorize
// mirrors Get exactly. Reassignment is additionally gated by the
// field-level rule: a non-admin update that changes the assignee fails
// Forbidden regardless of ownership. A new assignee that does not resolve
// fails NotFound and leaves the task untouched.
func (s *TaskService) Update(ctx context.Context, principal auth.Principal, id string, input UpdateTaskInput) (*domain.Task, error) {
	task, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if input.AssignedToID != nil && *input.AssignedToID != task.AssignedToID {
		if !authz.CanReassign(principal) {
			return nil, domain.ErrAccessDenied
		}
		if _, err := s.resolveAssignee(ctx, *input.AssignedToID); err != nil {
			return nil, err
		}
		task.AssignedToID = *input.AssignedToID
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, domain.ErrInvalidTitle
		}
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if _, err := domain.ParseTaskStatus(string(*input.Status)); err != nil {
			return nil, err
		}
		task.Status = *input.Status
	}
	if input.Deadline != nil {
		if input.Deadline.IsZero() {
			return nil, domain.ErrInvalidDeadline
		}
		task.Deadline = *input.Deadline
	}

	task.UpdatedAt = time.Now().UTC()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		s.logger.Error().Err(err).Str("task_id", id).Msg("failed to update task")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().Str("task_id", task.ID).Msg("task updated")
	return task, nil
}

// Delete removes a task. Administrator-only: ownership alone never
// authorizes deletion. A missing task fails NotFound before the permit
// check is reported, matching the fetch-then-authorize order used
// everywhere else.
func (s *TaskService) Delete(ctx context.Context, principal auth.Principal, id string) error {
	if _, err := s.taskRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.ErrTaskNotFound
		}
		s.logger.Error().Err(err).Str("task_id", id).Msg("failed to get task")
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	if !authz.CanPerform(principal, authz.ActionDeleteTask, nil) {
		return domain.ErrAccessDenied
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.ErrTaskNotFound
		}
		s.logger.Error().Err(err).Str("task_id", id).Msg("failed to delete task")
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().Str("task_id", id).Msg("task deleted")
	return nil
}

// resolveAssignee checks that an assignee reference points at an existing
// user. Dangling references surface as NotFound, never as an internal
// error.
func (s *TaskService) resolveAssignee(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.NewDomainError(domain.ErrUserNotFound, "assignee does not exist", userID)
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to resolve assignee")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return user, nil
}
