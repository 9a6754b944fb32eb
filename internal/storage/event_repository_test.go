package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventlist-manager/backend/internal/storage/models"
)

func newTestRepo(t *testing.T) *EventRepository {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, RunMigrations(context.Background(), db))
	return NewEventRepository(db)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db, err := NewDB(filepath.Join(t.TempDir(), "nested", "events.db"))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, RunMigrations(ctx, db))
	require.NoError(t, RunMigrations(ctx, db))

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM _migrations").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestEventCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)

	first, err := repo.Create(ctx, models.Event{Name: "Sync", Start: "2024-01-01", End: "2024-01-02"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	second, err := repo.Create(ctx, models.Event{Name: "Retro", Start: "2024-01-05", End: "2024-01-05"})
	require.NoError(t, err)

	events, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Event{first, second}, events)

	first.Name = "Sync v2"
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMissingEvent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.ErrorIs(t, repo.Update(ctx, models.Event{ID: "nope", Name: "x", Start: "2024-01-01", End: "2024-01-01"}), ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "nope"), ErrNotFound)
}

func TestImport(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.Import(ctx, []models.Event{
		{ID: "1", Name: "Sync", Start: "2024-01-01", End: "2024-01-02"},
		{Name: "No id", Start: "2024-01-03", End: "2024-01-03"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Sync", got.Name)

	events, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.NotEmpty(t, events[1].ID)
}
