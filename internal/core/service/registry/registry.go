package registry

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/port"
)

// Registry implements the C7 Document Registry Core: registration, bloom
// filter construction, per-company encrypted metadata, and bloom-gated
// discovery. It delegates durable storage to a port.RegistryStore (C3).
type Registry struct {
	store port.RegistryStore
	now   func() time.Time
}

// New constructs a Registry backed by store.
func New(store port.RegistryStore) *Registry {
	return &Registry{store: store, now: time.Now}
}

// RegisterParams carries everything the registration entry point needs.
type RegisterParams struct {
	// DocumentID is used verbatim when set (POST /documents/register
	// accepts a DID already minted upstream). Left empty, Register mints a
	// fresh one, as the admin upload path (C4-C7) does.
	DocumentID            string
	Title                 string
	OverallClassification entity.ClassificationLevel
	ReleasableTo          []string
	ContentEncryptionKey  string
	Storage               entity.DocumentStorageRef
	Metadata              entity.DocumentMetadata
	// CompanySecrets maps each releasable company to its metadata-encryption
	// secret (Company.SectionEncryptionSecret), so the per-company encrypted
	// metadata view can be produced in the same call.
	CompanySecrets map[string][]byte
}

// Register implements C7.Register (spec.md §4.7).
func (r *Registry) Register(ctx context.Context, p RegisterParams) (*entity.Document, error) {
	if p.Title == "" || len(p.ReleasableTo) == 0 || !p.OverallClassification.IsValid() {
		return nil, entity.ErrInputInvalid
	}

	bloom := entity.NewBloomFilter(p.ReleasableTo)

	encMetadata := make(map[string]entity.EncryptedMetadataBlob, len(p.ReleasableTo))
	for _, companyID := range p.ReleasableTo {
		secret, ok := p.CompanySecrets[companyID]
		if !ok {
			continue
		}
		blob, err := encryptMetadataView(p.Title, p.OverallClassification, p.Metadata, secret)
		if err != nil {
			return nil, err
		}
		encMetadata[companyID] = *blob
	}

	documentID := p.DocumentID
	if documentID == "" {
		documentID = "did:document:" + uuid.NewString()
	}

	now := r.now()
	doc := &entity.Document{
		DocumentID:            documentID,
		Title:                 p.Title,
		OverallClassification: p.OverallClassification,
		ReleasableTo:          p.ReleasableTo,
		BloomFilter:           bloom,
		EncryptedMetadata:     encMetadata,
		ContentEncryptionKey:  p.ContentEncryptionKey,
		Storage:               p.Storage,
		Metadata:              p.Metadata,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := r.store.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("registry: put: %w", err)
	}
	if err := r.store.Persist(ctx); err != nil {
		return nil, fmt.Errorf("registry: persist: %w", err)
	}
	return doc, nil
}

// Discover implements C7.Discover: queryByIssuer(issuerDID, clearanceLevel?).
// The bloom filter is consulted first to skip documents that provably are
// not releasable to issuerDID; ReleasableTo is always re-checked directly
// before a record is returned (spec.md §9 Open Question 4 — the filter
// never substitutes for the authoritative check).
func (r *Registry) Discover(ctx context.Context, issuerDID string, clearance *entity.ClassificationLevel) ([]entity.DocumentSummary, error) {
	effective := entity.EffectiveClearance(clearance)
	var out []entity.DocumentSummary

	for _, doc := range r.store.All(ctx) {
		if doc.Deleted() {
			continue
		}
		if doc.BloomFilter != nil && !doc.BloomFilter.Contains(issuerDID) {
			continue
		}
		if !releasableTo(doc.ReleasableTo, issuerDID) {
			continue
		}
		if !effective.AtLeast(doc.OverallClassification) {
			continue
		}
		out = append(out, entity.DocumentSummary{
			DocumentID:           doc.DocumentID,
			Title:                doc.Title,
			ClassificationLevel:  doc.OverallClassification,
			ContentEncryptionKey: doc.ContentEncryptionKey,
			CreatedAt:            doc.CreatedAt,
			Metadata:             doc.Metadata,
		})
	}
	return out, nil
}

// Get retrieves a document by ID, distinguishing Gone from NotFound.
func (r *Registry) Get(ctx context.Context, documentID string) (*entity.Document, error) {
	doc, ok := r.store.Get(ctx, documentID)
	if !ok {
		return nil, entity.ErrDocumentNotFound
	}
	if doc.Deleted() {
		return nil, fmt.Errorf("document %s: %w", documentID, entity.ErrDocumentGone)
	}
	return doc, nil
}

// Delete soft-deletes a document record.
func (r *Registry) Delete(ctx context.Context, documentID string) error {
	if err := r.store.Delete(ctx, documentID); err != nil {
		return err
	}
	return r.store.Persist(ctx)
}

func releasableTo(companies []string, issuerDID string) bool {
	for _, c := range companies {
		if c == issuerDID {
			return true
		}
	}
	return false
}

// metadataView is the plaintext JSON shape encrypted per-company, per
// spec.md §3 ("AEAD ciphertext of a JSON object describing title,
// classification, and custom fields").
type metadataView struct {
	Title          string                 `json:"title"`
	Classification entity.ClassificationLevel `json:"classification"`
	Custom         map[string]any         `json:"custom,omitempty"`
}

func encryptMetadataView(title string, level entity.ClassificationLevel, metadata entity.DocumentMetadata, secret []byte) (*entity.EncryptedMetadataBlob, error) {
	payload, err := json.Marshal(metadataView{Title: title, Classification: level, Custom: metadata.Custom})
	if err != nil {
		return nil, fmt.Errorf("registry: marshal metadata view: %w", err)
	}

	block, err := aes.NewCipher(secret)
	if err != nil {
		return nil, fmt.Errorf("registry: metadata cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("registry: metadata aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("registry: metadata nonce: %w", err)
	}
	ciphertext := aead.Seal(nil, nonce, payload, nil)

	return &entity.EncryptedMetadataBlob{Ciphertext: ciphertext, Nonce: nonce}, nil
}

// DecryptMetadataView decrypts a company's encrypted metadata blob, for
// callers (e.g. an admin tool) that need to verify what was encrypted.
func DecryptMetadataView(blob entity.EncryptedMetadataBlob, secret []byte) (title string, level entity.ClassificationLevel, err error) {
	block, err := aes.NewCipher(secret)
	if err != nil {
		return "", "", fmt.Errorf("registry: metadata cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", "", fmt.Errorf("registry: metadata aead: %w", err)
	}
	plain, err := aead.Open(nil, blob.Nonce, blob.Ciphertext, nil)
	if err != nil {
		return "", "", fmt.Errorf("registry: decrypt metadata view: %w", entity.ErrIntegrityViolation)
	}
	var v metadataView
	if err := json.Unmarshal(plain, &v); err != nil {
		return "", "", fmt.Errorf("registry: unmarshal metadata view: %w", err)
	}
	return v.Title, v.Classification, nil
}
