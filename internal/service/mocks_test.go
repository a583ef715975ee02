package service

import (
	"context"
	"sort"

	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/repository"
)

// MockUserRepository is an in-memory implementation of
// repository.UserRepository for tests.
type MockUserRepository struct {
	users     map[string]*domain.User
	createErr error
	getErr    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for _, u := range m.users {
		if u.ID != user.ID && u.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserRepository) List(ctx context.Context, opts repository.ListOptions) (*repository.ListResult[domain.User], error) {
	var users []*domain.User
	for _, u := range m.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	total := int64(len(users))
	if opts.Offset < len(users) {
		users = users[opts.Offset:]
	} else {
		users = nil
	}
	if opts.Limit > 0 && opts.Limit < len(users) {
		users = users[:opts.Limit]
	}
	return &repository.ListResult[domain.User]{Items: users, Total: total, Offset: opts.Offset, Limit: opts.Limit}, nil
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

// MockTaskRepository is an in-memory implementation of
// repository.TaskRepository for tests.
type MockTaskRepository struct {
	tasks     map[string]*domain.Task
	createErr error
	getErr    error
}

func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{tasks: make(map[string]*domain.Task)}
}

func (m *MockTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if t, ok := m.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, domain.ErrTaskNotFound
}

func (m *MockTaskRepository) Update(ctx context.Context, task *domain.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *MockTaskRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *MockTaskRepository) List(ctx context.Context, filter repository.TaskFilter, opts repository.ListOptions) (*repository.ListResult[domain.Task], error) {
	var tasks []*domain.Task
	for _, t := range m.tasks {
		if filter.Matches(t) {
			cp := *t
			tasks = append(tasks, &cp)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	total := int64(len(tasks))
	if opts.Offset < len(tasks) {
		tasks = tasks[opts.Offset:]
	} else {
		tasks = nil
	}
	if opts.Limit > 0 && opts.Limit < len(tasks) {
		tasks = tasks[:opts.Limit]
	}
	return &repository.ListResult[domain.Task]{Items: tasks, Total: total, Offset: opts.Offset, Limit: opts.Limit}, nil
}

func (m *MockTaskRepository) CountByAssignee(ctx context.Context, userID string) (int64, error) {
	var count int64
	for _, t := range m.tasks {
		if t.AssignedToID == userID {
			count++
		}
	}
	return count, nil
}

var _ repository.TaskRepository = (*MockTaskRepository)(nil)
