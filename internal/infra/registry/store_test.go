package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

func testSignatureKey() []byte {
	return []byte("test-registry-signing-key-0123456789")
}

func newTestDocument(id string) *entity.Document {
	return &entity.Document{
		DocumentID:            id,
		Title:                 "Q3 Infrastructure Plan",
		OverallClassification: entity.ClassificationConfidential,
		ReleasableTo:          []string{"did:prism:ACME"},
		BloomFilter:           entity.NewBloomFilter([]string{"did:prism:ACME"}),
		ContentEncryptionKey:  "wrapped-key-ref",
	}
}

// TestStore_CrashRecovery covers spec.md §8 S2: register two documents,
// persist, restart into a fresh Store, and load must reproduce the same
// records.
func TestStore_CrashRecovery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.json")
	key := testSignatureKey()

	s1 := NewStore(path, key)
	require.NoError(t, s1.Load(ctx))
	require.NoError(t, s1.Put(ctx, newTestDocument("did:document:one")))
	require.NoError(t, s1.Put(ctx, newTestDocument("did:document:two")))
	require.NoError(t, s1.Persist(ctx))

	s2 := NewStore(path, key)
	require.NoError(t, s2.Load(ctx))

	docs := s2.All(ctx)
	assert.Len(t, docs, 2)

	_, ok := s2.Get(ctx, "did:document:one")
	assert.True(t, ok)
	_, ok = s2.Get(ctx, "did:document:two")
	assert.True(t, ok)
}

// TestStore_TamperedFileRefusesLoad covers spec.md §8 invariant 3: flipping
// any byte of the persisted file causes load to raise IntegrityViolation.
func TestStore_TamperedFileRefusesLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "registry.json")
	key := testSignatureKey()

	s1 := NewStore(path, key)
	require.NoError(t, s1.Load(ctx))
	require.NoError(t, s1.Put(ctx, newTestDocument("did:document:one")))
	require.NoError(t, s1.Persist(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	tampered := make([]byte, len(data))
	copy(tampered, data)
	// Flip a single bit well inside the JSON body.
	flipIdx := len(tampered) / 2
	tampered[flipIdx] ^= 0x01
	require.NoError(t, os.WriteFile(path, tampered, 0o644))

	s2 := NewStore(path, key)
	err = s2.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrIntegrityViolation)
}

func TestStore_MissingFileLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	s := NewStore(path, testSignatureKey())
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.All(ctx))
}

func TestStore_DeleteIsSoftAndPreservesGet(t *testing.T) {
	ctx := context.Background()
	s := NewStore(filepath.Join(t.TempDir(), "registry.json"), testSignatureKey())
	require.NoError(t, s.Put(ctx, newTestDocument("did:document:one")))

	require.NoError(t, s.Delete(ctx, "did:document:one"))

	doc, ok := s.Get(ctx, "did:document:one")
	require.True(t, ok, "soft-deleted document must still be retrievable by Get")
	assert.True(t, doc.Deleted())

	assert.Empty(t, s.All(ctx), "All must exclude soft-deleted documents")
}
