package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/atlas-tasks/internal/domain"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	cfg := DefaultConfig(filepath.Join(t.TempDir(), "atlas.db"))
	db, err := NewDB(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestNewDBAppliesPragmas(t *testing.T) {
	db := newTestDB(t)

	var fk int
	require.NoError(t, db.QueryRowContext(context.Background(), "PRAGMA foreign_keys").Scan(&fk))
	require.Equal(t, 1, fk, "foreign_keys pragma must be on")
}

func TestTaskRepositoryForeignKeyEnforced(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	tasks := NewTaskRepository(db)

	deadline := time.Now().Add(24 * time.Hour).UTC()

	// An assignee nothing resolves must be rejected by the schema,
	// not just the service pre-check.
	dangling := domain.NewTask("Ship report", "", deadline, "no-such-user", "also-missing")
	err := tasks.Create(ctx, dangling)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = tasks.GetByID(ctx, dangling.ID)
	require.ErrorIs(t, err, domain.ErrTaskNotFound)

	owner := domain.NewUser("Mira", "mira@example.com", "hash")
	require.NoError(t, users.Create(ctx, owner))

	task := domain.NewTask("Ship report", "quarterly numbers", deadline, owner.ID, owner.ID)
	require.NoError(t, tasks.Create(ctx, task))

	got, err := tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, task.Title, got.Title)
	require.Equal(t, owner.ID, got.AssignedToID)

	// Reassignment to an unknown user must fail the same way and
	// leave the stored row untouched.
	task.AssignedToID = "no-such-user"
	err = tasks.Update(ctx, task)
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	got, err = tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, owner.ID, got.AssignedToID)
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)

	first := domain.NewUser("Mira", "mira@example.com", "hash")
	require.NoError(t, users.Create(ctx, first))

	second := domain.NewUser("Imposter", "mira@example.com", "hash2")
	err := users.Create(ctx, second)
	require.ErrorIs(t, err, domain.ErrEmailTaken)

	// Exactly one record survives.
	exists, err := users.ExistsByEmail(ctx, "mira@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	got, err := users.GetByEmail(ctx, "mira@example.com")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
}
