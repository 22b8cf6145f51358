package connection

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	return NewStore(filepath.Join(dir, "mappings.json"), filepath.Join(dir, "deleted.json"))
}

// TestStore_PutGetResolve covers the basic mapping round-trip that backs
// auth.ConnectionResolver.
func TestStore_PutGetResolve(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, entity.EmployeeConnectionMapping{
		Identifier:   "jane@techcorp.example",
		ConnectionID: "conn-1",
		Email:        "jane@techcorp.example",
		Name:         "Jane Employee",
	}))

	m, ok := s.Get(ctx, "jane@techcorp.example")
	require.True(t, ok)
	assert.Equal(t, "conn-1", m.ConnectionID)

	connectionID, _, err := s.ResolveConnection(ctx, "jane@techcorp.example")
	require.NoError(t, err)
	assert.Equal(t, "conn-1", connectionID)
}

func TestStore_ResolveConnection_UnknownIdentifier(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, _, err := s.ResolveConnection(ctx, "nobody@techcorp.example")
	assert.ErrorIs(t, err, entity.ErrEmployeeNotFound)
}

// TestStore_CrashRecovery covers spec.md §8 S2's persistence-durability
// property applied to the connection mapping table: a second Store pointed
// at the same files must reload everything a first Store wrote.
func TestStore_CrashRecovery(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	mappingsPath := filepath.Join(dir, "mappings.json")
	deletedPath := filepath.Join(dir, "deleted.json")

	first := NewStore(mappingsPath, deletedPath)
	require.NoError(t, first.Put(ctx, entity.EmployeeConnectionMapping{Identifier: "jane@techcorp.example", ConnectionID: "conn-1"}))
	require.NoError(t, first.SoftDelete(ctx, "acme", "conn-1"))

	second := NewStore(mappingsPath, deletedPath)
	require.NoError(t, second.Load(ctx))

	m, ok := second.Get(ctx, "jane@techcorp.example")
	require.True(t, ok)
	assert.Equal(t, "conn-1", m.ConnectionID)
	assert.True(t, second.IsSoftDeleted("acme", "conn-1"))
}

func TestStore_Load_MissingFilesStartsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Load(ctx))

	_, ok := s.Get(ctx, "anyone@techcorp.example")
	assert.False(t, ok)
}

// TestStore_SoftDelete_IsScopedPerCompany covers the "per-company
// soft-deleted-connection set" wording: the same connectionID hidden from
// one company must remain visible under another.
func TestStore_SoftDelete_IsScopedPerCompany(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SoftDelete(ctx, "acme", "conn-1"))

	assert.True(t, s.IsSoftDeleted("acme", "conn-1"))
	assert.False(t, s.IsSoftDeleted("globex", "conn-1"))
	assert.False(t, s.IsSoftDeleted("acme", "conn-2"))
}

func TestStore_WriteJSONAtomic_LeavesNoTempFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewStore(filepath.Join(dir, "mappings.json"), filepath.Join(dir, "deleted.json"))

	require.NoError(t, s.Put(ctx, entity.EmployeeConnectionMapping{Identifier: "jane@techcorp.example", ConnectionID: "conn-1"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}
