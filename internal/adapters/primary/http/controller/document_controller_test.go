package controller

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/port"
	"github.com/techcorp/classified-doc-broker/internal/core/service/ingest"
	"github.com/techcorp/classified-doc-broker/internal/core/service/registry"
	"github.com/techcorp/classified-doc-broker/internal/core/service/sectioncrypto"
)

type fakeParser struct{ format entity.SourceFormat }

func (f *fakeParser) Parse(raw []byte, format entity.SourceFormat) (*entity.ParsedDocument, error) {
	return &entity.ParsedDocument{
		Title:    "Uploaded",
		Sections: []entity.Section{{SectionID: "s1", Clearance: entity.ClassificationInternal, Content: "hello"}},
		Metadata: entity.SectionMetadataSummary{SourceFormat: f.format},
	}, nil
}
func (f *fakeParser) Format() entity.SourceFormat { return f.format }

type fakeStorage struct{ objects map[string][]byte }

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: make(map[string][]byte)} }
func (f *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	f.objects[key] = data
	return nil
}
func (f *fakeStorage) Download(ctx context.Context, key string) ([]byte, error) { return f.objects[key], nil }
func (f *fakeStorage) GetURL(ctx context.Context, key string) (string, error)   { return "", nil }
func (f *fakeStorage) Delete(ctx context.Context, key string) error            { return nil }
func (f *fakeStorage) Exists(ctx context.Context, key string) (bool, error)     { return true, nil }

type fakeRegistryStore struct{ docs map[string]*entity.Document }

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

func newTestDocumentController() *DocumentController {
	regStore := newFakeRegistryStore()
	reg := registry.New(regStore)
	parsers := map[entity.SourceFormat]port.SectionParser{
		entity.SourceFormatHTML: &fakeParser{format: entity.SourceFormatHTML},
		entity.SourceFormatDOCX: &fakeParser{format: entity.SourceFormatDOCX},
	}
	ing := ingest.New(parsers, sectioncrypto.New(), newFakeStorage(), reg, nil)
	return NewDocumentController(reg, ing, nil)
}

func newTestRouter(c *DocumentController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	c.RegisterRoutes(r.Group("/"), r.Group("/"))
	return r
}

func TestDocumentController_Discover_RequiresIssuerDID(t *testing.T) {
	r := newTestRouter(newTestDocumentController())

	req := httptest.NewRequest(http.MethodGet, "/documents/discover", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentController_Discover_ReturnsMatchingDocuments(t *testing.T) {
	c := newTestDocumentController()
	ctx := context.Background()
	_, err := c.registry.Register(ctx, registry.RegisterParams{
		Title:                 "Q3 Plan",
		OverallClassification: entity.ClassificationInternal,
		ReleasableTo:          []string{"did:prism:ACME"},
		ContentEncryptionKey:  "deadbeef",
	})
	require.NoError(t, err)

	r := newTestRouter(c)
	req := httptest.NewRequest(http.MethodGet, "/documents/discover?issuerDID=did:prism:ACME", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Q3 Plan")
}

func multipartUploadRequest(t *testing.T, content []byte, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("releasableTo", "did:prism:ACME"))
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/classified-documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDocumentController_Upload_HappyPath(t *testing.T) {
	r := newTestRouter(newTestDocumentController())

	req := multipartUploadRequest(t, []byte("<html><body>hi</body></html>"), "doc.html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "documentDID")
}

// TestDocumentController_Upload_RejectsOversizedFile covers spec.md §8's
// named boundary: an upload exceeding 40MB must fail before ever reaching
// the ingest pipeline.
func TestDocumentController_Upload_RejectsOversizedFile(t *testing.T) {
	r := newTestRouter(newTestDocumentController())

	oversized := bytes.Repeat([]byte("a"), maxUploadSize+1)
	req := multipartUploadRequest(t, oversized, "doc.html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds maximum upload size")
}

func TestDocumentController_Upload_RequiresReleasableTo(t *testing.T) {
	r := newTestRouter(newTestDocumentController())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "doc.html")
	require.NoError(t, err)
	_, err = part.Write([]byte("<html></html>"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/classified-documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
