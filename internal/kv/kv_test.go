package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the same contract checks against every backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	// Missing key.
	v, ok, err := s.Get(ctx, "recipeUser")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)

	// Set then get.
	require.NoError(t, s.Set(ctx, "recipeUser", `{"name":"Ana"}`))
	v, ok, err = s.Get(ctx, "recipeUser")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"name":"Ana"}`, v)

	// Overwrite.
	require.NoError(t, s.Set(ctx, "recipeUser", `{"name":"Bo"}`))
	v, _, err = s.Get(ctx, "recipeUser")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Bo"}`, v)

	// Keys are independent.
	require.NoError(t, s.Set(ctx, "allRecipes", "{}"))
	v, _, err = s.Get(ctx, "recipeUser")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Bo"}`, v)

	// Delete, twice.
	require.NoError(t, s.Delete(ctx, "recipeUser"))
	require.NoError(t, s.Delete(ctx, "recipeUser"))
	_, ok, err = s.Get(ctx, "recipeUser")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chefsnap.db")
	s, err := NewSQLStore(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	exerciseStore(t, s)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chefsnap.db")

	s, err := NewSQLStore(ctx, DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "allRecipes", `{"Pancakes":{}}`))
	require.NoError(t, s.Close())

	s, err = NewSQLStore(ctx, DriverSQLite, path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, "allRecipes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"Pancakes":{}}`, v)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := NewSQLStore(context.Background(), DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, "memory")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	path := filepath.Join(t.TempDir(), "open.db")
	s, err = Open(ctx, path)
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "other.sqlite"))
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, "redis://localhost")
	assert.Error(t, err)
}

func TestWithSQLitePragmas(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)", withSQLitePragmas("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)", withSQLitePragmas("file:a.db?mode=rwc"))
	assert.Equal(t, ":memory:", withSQLitePragmas(":memory:"))
}
