package repository

import (
	"context"
)

// Repositories holds all repository instances.
type Repositories struct {
	Users UserRepository
	Tasks TaskRepository
}

// DatabaseHealth is an interface for database health checks.
// Both the PostgreSQL and SQLite backends satisfy it, so health
// endpoints don't care which driver is configured.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Close() error
}
