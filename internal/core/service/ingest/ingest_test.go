package ingest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/port"
	"github.com/techcorp/classified-doc-broker/internal/core/service/registry"
	"github.com/techcorp/classified-doc-broker/internal/core/service/sectioncrypto"
)

type fakeParser struct {
	format   entity.SourceFormat
	parsed   *entity.ParsedDocument
	parseErr error
}

func (f *fakeParser) Parse(raw []byte, format entity.SourceFormat) (*entity.ParsedDocument, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.parsed, nil
}
func (f *fakeParser) Format() entity.SourceFormat { return f.format }

type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: make(map[string][]byte)} }

func (f *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.objects[key] = data
	return nil
}
func (f *fakeStorage) Download(ctx context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, entity.ErrDocumentNotFound
	}
	return data, nil
}
func (f *fakeStorage) GetURL(ctx context.Context, key string) (string, error) { return "", nil }
func (f *fakeStorage) Delete(ctx context.Context, key string) error           { return nil }
func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error)   { return true, nil }

type fakeRegistryStore struct {
	docs map[string]*entity.Document
}

func newFakeRegistryStore() *fakeRegistryStore {
	return &fakeRegistryStore{docs: make(map[string]*entity.Document)}
}

func (f *fakeRegistryStore) Load(ctx context.Context) error    { return nil }
func (f *fakeRegistryStore) Persist(ctx context.Context) error { return nil }
func (f *fakeRegistryStore) Put(ctx context.Context, doc *entity.Document) error {
	f.docs[doc.DocumentID] = doc
	return nil
}
func (f *fakeRegistryStore) Get(ctx context.Context, documentID string) (*entity.Document, bool) {
	doc, ok := f.docs[documentID]
	return doc, ok
}
func (f *fakeRegistryStore) Delete(ctx context.Context, documentID string) error {
	delete(f.docs, documentID)
	return nil
}
func (f *fakeRegistryStore) All(ctx context.Context) []*entity.Document {
	out := make([]*entity.Document, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d)
	}
	return out
}

func threeSectionDoc() *entity.ParsedDocument {
	return &entity.ParsedDocument{
		Title: "Q3 Infrastructure Plan",
		Sections: []entity.Section{
			{SectionID: "s1", Clearance: entity.ClassificationInternal, Content: "Overview"},
			{SectionID: "s2", Clearance: entity.ClassificationConfidential, Content: "Budget detail"},
			{SectionID: "s3", Clearance: entity.ClassificationTopSecret, Content: "Datacenter coordinates"},
		},
		Metadata: entity.SectionMetadataSummary{SourceFormat: entity.SourceFormatHTML},
	}
}

func newTestService(parsed *entity.ParsedDocument) (*Service, *fakeStorage, *fakeRegistryStore) {
	storage := newFakeStorage()
	regStore := newFakeRegistryStore()
	reg := registry.New(regStore)
	parsers := map[entity.SourceFormat]port.SectionParser{
		entity.SourceFormatHTML: &fakeParser{format: entity.SourceFormatHTML, parsed: parsed},
	}
	svc := New(parsers, sectioncrypto.New(), storage, reg, nil)
	return svc, storage, regStore
}

// TestService_Upload_RegistersDocumentWithComputedOverallClassification
// covers the C4->C5->C2->C7 pipeline end to end: the overall classification
// must be the max across all sections, and the stored package must decrypt
// back to the original content.
func TestService_Upload_RegistersDocumentWithComputedOverallClassification(t *testing.T) {
	ctx := context.Background()
	svc, storage, regStore := newTestService(threeSectionDoc())

	result, err := svc.Upload(ctx, UploadParams{
		Raw:          []byte("<html>...</html>"),
		Format:       entity.SourceFormatHTML,
		ReleasableTo: []string{"did:prism:ACME"},
		AuthorID:     "admin-1",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ClassificationTopSecret, result.Document.OverallClassification)
	assert.Equal(t, 1, result.PerLevelCounts[entity.ClassificationTopSecret])
	assert.Equal(t, 1, result.PerLevelCounts[entity.ClassificationConfidential])
	assert.Equal(t, 1, result.PerLevelCounts[entity.ClassificationInternal])

	stored, ok := regStore.Get(ctx, result.Document.DocumentID)
	require.True(t, ok)
	assert.Equal(t, result.Document.DocumentID, stored.DocumentID)

	raw, err := storage.Download(ctx, stored.Storage.PackageFileID)
	require.NoError(t, err)
	var pkg entity.EncryptedSectionPackage
	require.NoError(t, json.Unmarshal(raw, &pkg))
	assert.Len(t, pkg.EncryptedSections, 3)
}

// TestService_Upload_NoTaggedSections covers spec.md §8's boundary
// behavior: an upload with zero tagged sections must fail input validation,
// never reach storage or the registry.
func TestService_Upload_NoTaggedSections(t *testing.T) {
	ctx := context.Background()
	svc, storage, regStore := newTestService(&entity.ParsedDocument{Title: "Empty", Sections: nil})

	_, err := svc.Upload(ctx, UploadParams{
		Raw:          []byte("<html></html>"),
		Format:       entity.SourceFormatHTML,
		ReleasableTo: []string{"did:prism:ACME"},
	})
	assert.ErrorIs(t, err, entity.ErrNoTaggedContent)
	assert.Empty(t, storage.objects)
	assert.Empty(t, regStore.docs)
}

func TestService_Upload_UnknownFormat(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(threeSectionDoc())

	_, err := svc.Upload(ctx, UploadParams{
		Raw:          []byte("whatever"),
		Format:       entity.SourceFormatDOCX,
		ReleasableTo: []string{"did:prism:ACME"},
	})
	assert.ErrorIs(t, err, entity.ErrInputInvalid)
}

// TestService_Upload_RetainsOriginalForDOCX covers the redaction package's
// need for the untouched source bytes when the upload is a DOCX (C6's
// per-request redactor is constructed fresh from this original).
func TestService_Upload_RetainsOriginalForDOCX(t *testing.T) {
	ctx := context.Background()
	storage := newFakeStorage()
	regStore := newFakeRegistryStore()
	reg := registry.New(regStore)
	parsers := map[entity.SourceFormat]port.SectionParser{
		entity.SourceFormatDOCX: &fakeParser{format: entity.SourceFormatDOCX, parsed: threeSectionDoc()},
	}
	svc := New(parsers, sectioncrypto.New(), storage, reg, nil)

	original := []byte("PK\x03\x04 fake docx bytes")
	result, err := svc.Upload(ctx, UploadParams{
		Raw:            original,
		Format:         entity.SourceFormatDOCX,
		ReleasableTo:   []string{"did:prism:ACME"},
		RetainOriginal: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Document.Storage.OriginalFileID)

	stored, err := storage.Download(ctx, result.Document.Storage.OriginalFileID)
	require.NoError(t, err)
	assert.Equal(t, original, stored)
}
