package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/repository"
)

// taskRepository implements repository.TaskRepository for SQLite.
type taskRepository struct {
	db *DB
}

// NewTaskRepository creates a new SQLite task repository.
func NewTaskRepository(db *DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, description, status, deadline, assigned_to_id, created_by_id, created_at, updated_at`

// Create inserts a new task.
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, status, deadline, assigned_to_id, created_by_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		task.Deadline.Format(time.RFC3339Nano),
		task.AssignedToID,
		task.CreatedByID,
		task.CreatedAt.Format(time.RFC3339Nano),
		task.UpdatedAt.Format(time.RFC3339Nano),
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetByID retrieves a task by ID.
func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Update updates an existing task.
func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, deadline = ?, assigned_to_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		task.Deadline.Format(time.RFC3339Nano),
		task.AssignedToID,
		task.UpdatedAt.Format(time.RFC3339Nano),
		task.ID,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// Delete deletes a task by ID.
func (r *taskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// List returns the tasks matching the filter, newest first. The filter is
// translated into WHERE clauses so scoping happens at query time.
func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter, opts repository.ListOptions) (*repository.ListResult[domain.Task], error) {
	where := ` WHERE 1=1`
	args := []any{}
	if filter.AssigneeID != "" {
		where += ` AND assigned_to_id = ?`
		args = append(args, filter.AssigneeID)
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(filter.Status))
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return &repository.ListResult[domain.Task]{
		Items:  tasks,
		Total:  total,
		Offset: opts.Offset,
		Limit:  opts.Limit,
	}, nil
}

// CountByAssignee returns the number of tasks assigned to a user.
func (r *taskRepository) CountByAssignee(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE assigned_to_id = ?`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks by assignee: %w", err)
	}
	return count, nil
}

// scanTask reads one task row in taskColumns order.
func scanTask(scan func(dest ...any) error) (*domain.Task, error) {
	task := &domain.Task{}
	var status, deadline, createdAt, updatedAt string

	if err := scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&deadline,
		&task.AssignedToID,
		&task.CreatedByID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Deadline, _ = time.Parse(time.RFC3339Nano, deadline)
	task.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	task.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return task, nil
}

// Ensure taskRepository implements repository.TaskRepository.
var _ repository.TaskRepository = (*taskRepository)(nil)
