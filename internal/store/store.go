// Package store opens the configured database backend and constructs
// the repository set on top of it. It is the single place where the
// driver choice (PostgreSQL or SQLite) is resolved.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/config"
	"github.com/prn-tf/atlas-tasks/internal/repository"
	"github.com/prn-tf/atlas-tasks/internal/repository/postgres"
	"github.com/prn-tf/atlas-tasks/internal/repository/sqlite"
)

// Store bundles the repositories with the underlying database handle.
type Store struct {
	Repos    *repository.Repositories
	Database repository.DatabaseHealth

	migrate func(ctx context.Context) error
	version func(ctx context.Context) (int, error)
}

// Open connects to the configured database backend and builds the
// repositories. The caller owns the returned store and must Close it.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	switch cfg.Driver {
	case "postgres":
		return openPostgres(ctx, cfg, logger)
	case "sqlite":
		return openSQLite(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	db, err := postgres.NewDB(ctx, cfg, logger.With().Str("component", "postgres").Logger())
	if err != nil {
		return nil, err
	}

	return &Store{
		Repos: &repository.Repositories{
			Users: postgres.NewUserRepository(db),
			Tasks: postgres.NewTaskRepository(db),
		},
		Database: db,
		migrate:  db.Migrate,
		version:  db.Version,
	}, nil
}

func openSQLite(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*Store, error) {
	sqliteCfg := sqlite.DefaultConfig(cfg.Path)
	if cfg.JournalMode != "" {
		sqliteCfg.JournalMode = cfg.JournalMode
	}
	if cfg.BusyTimeout > 0 {
		sqliteCfg.BusyTimeout = cfg.BusyTimeout
	}

	db, err := sqlite.NewDB(ctx, sqliteCfg, logger.With().Str("component", "sqlite").Logger())
	if err != nil {
		return nil, err
	}

	return &Store{
		Repos: &repository.Repositories{
			Users: sqlite.NewUserRepository(db),
			Tasks: sqlite.NewTaskRepository(db),
		},
		Database: db,
		migrate:  db.Migrate,
		version:  db.Version,
	}, nil
}

// Migrate applies pending schema migrations for the opened backend.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

// Version returns the current schema version.
func (s *Store) Version(ctx context.Context) (int, error) {
	return s.version(ctx)
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.Database.Close()
}
