package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// fakeStore is a minimal in-memory port.RegistryStore test double.
type fakeStore struct {
	docs map[string]*entity.Document
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]*entity.Document)}
}

func (f *fakeStore) Load(ctx context.Context) error    { return nil }
func (f *fakeStore) Persist(ctx context.Context) error { return nil }

func (f *fakeStore) Put(ctx context.Context, doc *entity.Document) error {
	f.docs[doc.DocumentID] = doc
	return nil
}

func (f *fakeStore) Get(ctx context.Context, documentID string) (*entity.Document, bool) {
	doc, ok := f.docs[documentID]
	return doc, ok
}

func (f *fakeStore) Delete(ctx context.Context, documentID string) error {
	doc, ok := f.docs[documentID]
	if !ok {
		return entity.ErrDocumentNotFound
	}
	now := doc.CreatedAt
	doc.DeletedAt = &now
	return nil
}

func (f *fakeStore) All(ctx context.Context) []*entity.Document {
	out := make([]*entity.Document, 0, len(f.docs))
	for _, d := range f.docs {
		if d.Deleted() {
			continue
		}
		out = append(out, d)
	}
	return out
}

// TestRegistry_RegisterAndFilterByCompany covers spec.md §8 S1: a document
// releasable only to ACME must never surface for a TECHCORP issuer, and must
// respect the caller's clearance once the issuer does match.
func TestRegistry_RegisterAndFilterByCompany(t *testing.T) {
	ctx := context.Background()
	reg := New(newFakeStore())

	_, err := reg.Register(ctx, RegisterParams{
		Title:                 "Infrastructure Plan",
		OverallClassification: entity.ClassificationConfidential,
		ReleasableTo:          []string{"did:prism:ACME"},
		ContentEncryptionKey:  "wrapped-key-ref",
	})
	require.NoError(t, err)

	restricted := entity.ClassificationRestricted
	results, err := reg.Discover(ctx, "did:prism:TECHCORP", &restricted)
	require.NoError(t, err)
	assert.Empty(t, results, "wrong issuer must never see the record regardless of clearance")

	results, err = reg.Discover(ctx, "did:prism:ACME", nil)
	require.NoError(t, err)
	assert.Empty(t, results, "nil/UNCLASSIFIED clearance must not clear a CONFIDENTIAL record")

	confidential := entity.ClassificationConfidential
	results, err = reg.Discover(ctx, "did:prism:ACME", &confidential)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Infrastructure Plan", results[0].Title)
}

func TestRegistry_Register_RequiresDocumentIDOnlyWhenSupplied(t *testing.T) {
	ctx := context.Background()
	reg := New(newFakeStore())

	minted, err := reg.Register(ctx, RegisterParams{
		Title:                 "Auto-minted",
		OverallClassification: entity.ClassificationInternal,
		ReleasableTo:          []string{"did:prism:ACME"},
	})
	require.NoError(t, err)
	assert.Contains(t, minted.DocumentID, "did:document:")

	explicit, err := reg.Register(ctx, RegisterParams{
		DocumentID:            "did:document:external-123",
		Title:                 "Externally minted",
		OverallClassification: entity.ClassificationInternal,
		ReleasableTo:          []string{"did:prism:ACME"},
	})
	require.NoError(t, err)
	assert.Equal(t, "did:document:external-123", explicit.DocumentID)
}

func TestRegistry_Register_RejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	reg := New(newFakeStore())

	_, err := reg.Register(ctx, RegisterParams{
		Title:                 "",
		OverallClassification: entity.ClassificationInternal,
		ReleasableTo:          []string{"did:prism:ACME"},
	})
	assert.ErrorIs(t, err, entity.ErrInputInvalid)

	_, err = reg.Register(ctx, RegisterParams{
		Title:                 "No releasable companies",
		OverallClassification: entity.ClassificationInternal,
	})
	assert.ErrorIs(t, err, entity.ErrInputInvalid)
}

func TestRegistry_Get_DistinguishesGoneFromNotFound(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	reg := New(store)

	doc, err := reg.Register(ctx, RegisterParams{
		Title:                 "To be deleted",
		OverallClassification: entity.ClassificationInternal,
		ReleasableTo:          []string{"did:prism:ACME"},
	})
	require.NoError(t, err)

	_, err = reg.Get(ctx, "did:document:never-existed")
	assert.ErrorIs(t, err, entity.ErrDocumentNotFound)

	require.NoError(t, reg.Delete(ctx, doc.DocumentID))
	_, err = reg.Get(ctx, doc.DocumentID)
	assert.ErrorIs(t, err, entity.ErrDocumentGone)
}
