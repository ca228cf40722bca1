package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/todoapp-go/internal/todo"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "todos.db")
	s, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSQLite_CreatesNewDatabase(t *testing.T) {
	s := newTestSQLiteStore(t)

	_, err := os.Stat(s.Path())
	assert.NoError(t, err, "database file was not created")
}

func TestOpenSQLite_Pragmas(t *testing.T) {
	s := newTestSQLiteStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")
	for i := 0; i < 3; i++ {
		s, err := OpenSQLite(path, nil)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestOpenSQLite_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")
	s, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = OpenSQLite(path, nil)
	assert.ErrorContains(t, err, "newer than supported")
}

func TestSQLiteStore_LoadEmpty(t *testing.T) {
	s := newTestSQLiteStore(t)

	tasks, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestSQLiteStore_RoundTripPreservesOrder(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	want := sampleTasks()

	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Reverse order and drop one; the next load reflects exactly that.
	reordered := []todo.Task{want[2], want[0]}
	require.NoError(t, s.Save(ctx, reordered))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, reordered, got)
}

func TestSQLiteStore_SaveNil(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleTasks()))
	require.NoError(t, s.Save(ctx, nil))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_DuplicateIDRollsBack(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleTasks()))

	dup := []todo.Task{{ID: "X", Text: "a"}, {ID: "X", Text: "b"}}
	assert.Error(t, s.Save(ctx, dup))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), got, "failed save must leave previous rows intact")
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todos.db")
	ctx := context.Background()

	s1, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	require.NoError(t, s1.Save(ctx, sampleTasks()))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer s2.Close()
	got, err := s2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), got)
}
