package gitstore

import (
	"context"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvdberg/klusplan/internal/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	repo, err := git.PlainInit(t.TempDir(), false)
	require.NoError(t, err)

	return NewWithRepo(repo, "klusplan-test")
}

func TestStore_ReadMissingDocument(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Read(context.Background(), domain.TasksPath)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_WriteAndRead(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	version, err := store.Write(ctx, domain.TasksPath, "Update tasks", []byte(`[]`), "")
	require.NoError(t, err)
	assert.NotEmpty(t, version)

	doc, err := store.Read(ctx, domain.TasksPath)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), doc.Content)
	assert.Equal(t, version, doc.Version)
}

func TestStore_WriteUpdatesVersion(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	v1, err := store.Write(ctx, domain.PeoplePath, "Update people", []byte(`[]`), "")
	require.NoError(t, err)

	v2, err := store.Write(ctx, domain.PeoplePath, "Update people", []byte(`[{"id":"mark"}]`), v1)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)

	doc, err := store.Read(ctx, domain.PeoplePath)
	require.NoError(t, err)
	assert.Equal(t, v2, doc.Version)
	assert.Equal(t, []byte(`[{"id":"mark"}]`), doc.Content)
}

func TestStore_WriteStaleVersionConflicts(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	v1, err := store.Write(ctx, domain.ConfigPath, "Update config", []byte(`{}`), "")
	require.NoError(t, err)

	_, err = store.Write(ctx, domain.ConfigPath, "Update config", []byte(`{"a":1}`), v1)
	require.NoError(t, err)

	// Writing with the superseded token must be rejected.
	_, err = store.Write(ctx, domain.ConfigPath, "Update config", []byte(`{"b":2}`), v1)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_WriteWithoutVersionConflictsWhenPresent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, domain.TasksPath, "Update tasks", []byte(`[]`), "")
	require.NoError(t, err)

	_, err = store.Write(ctx, domain.TasksPath, "Update tasks", []byte(`[1]`), "")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_DocumentsAreIndependent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, domain.TasksPath, "Update tasks", []byte(`[1]`), "")
	require.NoError(t, err)
	_, err = store.Write(ctx, domain.PeoplePath, "Update people", []byte(`[2]`), "")
	require.NoError(t, err)

	tasks, err := store.Read(ctx, domain.TasksPath)
	require.NoError(t, err)
	people, err := store.Read(ctx, domain.PeoplePath)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), tasks.Content)
	assert.Equal(t, []byte(`[2]`), people.Content)
}

func TestStore_Validate(t *testing.T) {
	store := setupTestStore(t)

	assert.NoError(t, store.Validate(context.Background()))
}
