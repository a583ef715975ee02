package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/repository"
)

// taskRepository implements repository.TaskRepository for PostgreSQL.
type taskRepository struct {
	db *DB
}

// NewTaskRepository creates a new PostgreSQL task repository.
func NewTaskRepository(db *DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, description, status, deadline, assigned_to_id, created_by_id, created_at, updated_at`

// Create inserts a new task.
func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, title, description, status, deadline, assigned_to_id, created_by_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		task.Deadline.UTC(),
		task.AssignedToID,
		task.CreatedByID,
		task.CreatedAt.UTC(),
		task.UpdatedAt.UTC(),
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
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(r.db.Pool.QueryRow(ctx, query, id).Scan)
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
		SET title = $1, description = $2, status = $3, deadline = $4, assigned_to_id = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.db.Pool.Exec(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		task.Deadline.UTC(),
		task.AssignedToID,
		task.UpdatedAt.UTC(),
		task.ID,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to update task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// Delete deletes a task by ID.
func (r *taskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if result.RowsAffected() == 0 {
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
		args = append(args, filter.AssigneeID)
		where += fmt.Sprintf(` AND assigned_to_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT `+taskColumns+` FROM tasks%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
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
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE assigned_to_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks by assignee: %w", err)
	}
	return count, nil
}

// scanTask reads one task row in taskColumns order.
func scanTask(scan func(dest ...any) error) (*domain.Task, error) {
	task := &domain.Task{}
	var status string
	var deadline, createdAt, updatedAt time.Time

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
	task.Deadline = deadline
	task.CreatedAt = createdAt
	task.UpdatedAt = updatedAt

	return task, nil
}

// Ensure taskRepository implements repository.TaskRepository.
var _ repository.TaskRepository = (*taskRepository)(nil)
