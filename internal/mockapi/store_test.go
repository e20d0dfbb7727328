package mockapi

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/pbconsole/internal/testutil"
	"github.com/leapstack-labs/pbconsole/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedTime = time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "backend.db"), testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := setupTestStore(t)
	inserted, err := store.Seed(context.Background(), seedTime)
	require.NoError(t, err)
	require.True(t, inserted)
	return store
}

func TestStore_Seed(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	playbooks, err := store.Playbooks(ctx)
	require.NoError(t, err)
	require.Len(t, playbooks, 3)
	assert.Equal(t, "pb-001", playbooks[0].ID)
	assert.Equal(t, core.PlaybookRunning, playbooks[0].State)
	assert.Equal(t, "Mitigation", playbooks[0].Type)
	assert.Equal(t, core.PlaybookEnded, playbooks[2].State)

	inserted, err := store.Seed(ctx, seedTime)
	require.NoError(t, err)
	assert.False(t, inserted, "seeding twice must not duplicate data")

	playbooks, err = store.Playbooks(ctx)
	require.NoError(t, err)
	assert.Len(t, playbooks, 3)
}

func TestStore_EmptyPlaybooks(t *testing.T) {
	store := setupTestStore(t)

	playbooks, err := store.Playbooks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, playbooks)
	assert.Empty(t, playbooks)
}

func TestStore_Steps(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	steps, err := store.Steps(ctx, "pb-001")
	require.NoError(t, err)
	require.Len(t, steps, 4)

	assert.Equal(t, "pb-001-s1", steps[0].ID)
	assert.Equal(t, "pb-001", steps[0].PlaybookID)
	assert.Equal(t, core.StepCompleted, steps[0].Status())
	assert.Equal(t, core.StepRunning, steps[1].Status())
	assert.Equal(t, core.StepNotStarted, steps[3].Status())

	_, err = store.Steps(ctx, "missing")
	assert.ErrorIs(t, err, ErrPlaybookNotFound)
}

func TestStore_LogShapes(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	logs, err := store.Logs(ctx, "pb-001")
	require.NoError(t, err)
	require.Len(t, logs, 3)

	assert.Equal(t, map[string]any{
		"text":      "Playbook started",
		"timestamp": "Tue, 05 Mar 2024 08:50:30 GMT",
	}, logs[0])
	assert.Equal(t, map[string]any{
		"message": "Encryption activity confirmed on host-17",
		"level":   "info",
	}, logs[1])
	assert.Equal(t, "Isolating host-17", logs[2])

	_, err = store.Logs(ctx, "missing")
	assert.ErrorIs(t, err, ErrPlaybookNotFound)
}

func TestStore_AdvanceUntilEnd(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	tick := seedTime.Add(time.Minute)
	n, err := store.Advance(ctx, tick)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "both running playbooks advance")

	steps, err := store.Steps(ctx, "pb-001")
	require.NoError(t, err)
	assert.Equal(t, core.StepCompleted, steps[1].Status())
	assert.Equal(t, core.StepRunning, steps[2].Status())
	assert.Equal(t, tick.Format(time.RFC3339), steps[2].LastModified)

	for range 2 {
		_, err := store.Advance(ctx, tick)
		require.NoError(t, err)
	}

	playbooks, err := store.Playbooks(ctx)
	require.NoError(t, err)
	for _, pb := range playbooks {
		assert.Equal(t, core.PlaybookEnded, pb.State, pb.ID)
	}

	steps, err = store.Steps(ctx, "pb-001")
	require.NoError(t, err)
	for _, st := range steps {
		assert.Equal(t, core.StepCompleted, st.Status(), st.ID)
	}

	logs, err := store.Logs(ctx, "pb-001")
	require.NoError(t, err)
	assert.Len(t, logs, 9)
	assert.Equal(t, "Playbook finished", logs[len(logs)-1])

	n, err = store.Advance(ctx, tick)
	require.NoError(t, err)
	assert.Zero(t, n, "ended playbooks stay put")
}

func TestStore_AdvanceStartsFirstPendingStep(t *testing.T) {
	ctx := context.Background()
	store := seededStore(t)

	_, err := store.db.ExecContext(ctx, `UPDATE steps SET active = 0 WHERE playbook_id = 'pb-002'`)
	require.NoError(t, err)

	_, err = store.Advance(ctx, seedTime)
	require.NoError(t, err)

	steps, err := store.Steps(ctx, "pb-002")
	require.NoError(t, err)
	assert.Equal(t, core.StepRunning, steps[0].Status())
	assert.Equal(t, core.StepNotStarted, steps[1].Status())
}

func TestStore_QueryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("playbooks", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT id, name").WillReturnError(assert.AnError)

		_, err = NewStore(db, nil).Playbooks(ctx)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("advance rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT id FROM playbooks").WillReturnError(assert.AnError)
		mock.ExpectRollback()

		_, err = NewStore(db, nil).Advance(ctx, seedTime)
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("seed skips populated store", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT COUNT").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		inserted, err := NewStore(db, nil).Seed(ctx, seedTime)
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("steps lookup", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT COUNT").WithArgs("pb-001").WillReturnError(assert.AnError)

		_, err = NewStore(db, nil).Steps(ctx, "pb-001")
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
