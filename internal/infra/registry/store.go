// Package registry provides the concrete, signed, JSON-at-rest
// implementation of port.RegistryStore (C3, spec.md §4.3): a single file
// `{registryState, signature, signedAt}` where the signature is an
// HMAC-SHA256 over the canonical JSON of registryState.
//
// Grounded structurally on this codebase's mutex-guarded, single-writer
// in-memory-map style (previously an injector registry in this same
// package) — the mutation pattern survives, retargeted at
// entity.Document and given real durable persistence.
package registry

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/port"
)

// registryState is the signed payload (spec.md §4.3).
type registryState struct {
	Version       int                `json:"version"`
	SavedAt       time.Time          `json:"savedAt"`
	DocumentCount int                `json:"documentCount"`
	Documents     []*entity.Document `json:"documents"`
}

// onDiskFile is the full file shape: state plus its signature.
type onDiskFile struct {
	RegistryState registryState `json:"registryState"`
	Signature     string        `json:"signature"` // hex-encoded HMAC-SHA256
	SignedAt      time.Time     `json:"signedAt"`
}

// Store is the file-backed, HMAC-signed document registry.
type Store struct {
	path          string
	signatureKey  []byte
	now           func() time.Time

	mu        sync.RWMutex
	documents map[string]*entity.Document
}

// NewStore constructs a Store. signatureKey is the process-wide HMAC key
// (spec.md §4.3: "a process-wide configuration secret").
func NewStore(path string, signatureKey []byte) *Store {
	return &Store{
		path:         path,
		signatureKey: signatureKey,
		now:          time.Now,
		documents:    make(map[string]*entity.Document),
	}
}

// Load reads and signature-verifies the persisted registry (spec.md §4.3
// load). A missing file is not an error — the registry starts empty. A
// signature mismatch is fatal: the caller must refuse to start rather than
// trust a tampered file (spec.md §7 IntegrityViolation).
func (s *Store) Load(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("registry store: read: %w", err)
	}

	var file onDiskFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("registry store: unmarshal: %v: %w", err, entity.ErrIntegrityViolation)
	}

	canonical, err := canonicalJSON(file.RegistryState)
	if err != nil {
		return fmt.Errorf("registry store: canonicalize: %w", err)
	}
	expected := sign(s.signatureKey, canonical)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(file.Signature)) != 1 {
		return entity.ErrIntegrityViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make(map[string]*entity.Document, len(file.RegistryState.Documents))
	for _, doc := range file.RegistryState.Documents {
		s.documents[doc.DocumentID] = doc
	}
	return nil
}

// Persist serializes the current in-memory registry, signs it, and writes
// it atomically (temp + rename), per spec.md §4.3 save and §5's atomicity
// requirement.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.RLock()
	docs := make([]*entity.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	state := registryState{
		Version:       1,
		SavedAt:       s.now(),
		DocumentCount: len(docs),
		Documents:     docs,
	}
	canonical, err := canonicalJSON(state)
	if err != nil {
		return fmt.Errorf("registry store: canonicalize: %w", err)
	}
	signature := sign(s.signatureKey, canonical)

	file := onDiskFile{RegistryState: state, Signature: signature, SignedAt: s.now()}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("registry store: marshal: %w", err)
	}
	return writeAtomic(s.path, data)
}

// Put inserts or replaces a document record in memory. Callers must call
// Persist to make the change durable (spec.md §4.3: "saves are
// fire-and-forget from C7 but must complete before the next save begins").
func (s *Store) Put(ctx context.Context, doc *entity.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.DocumentID] = doc
	return nil
}

// Get retrieves a document record by ID, including soft-deleted ones.
func (s *Store) Get(ctx context.Context, documentID string) (*entity.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[documentID]
	return doc, ok
}

// Delete soft-deletes a document record (tombstone, spec.md §8: Gone, not
// NotFound).
func (s *Store) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[documentID]
	if !ok {
		return entity.ErrDocumentNotFound
	}
	now := s.now()
	doc.DeletedAt = &now
	doc.UpdatedAt = now
	return nil
}

// All returns every non-deleted document record.
func (s *Store) All(ctx context.Context) []*entity.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		if doc.Deleted() {
			continue
		}
		out = append(out, doc)
	}
	return out
}

func sign(key, data []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return fmt.Sprintf("%x", mac.Sum(nil))
}

// canonicalJSON produces a deterministic encoding of v: encoding/json
// already sorts map keys, and registryState's fields are an ordered struct
// and slice, so a single Marshal is already canonical here.
func canonicalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("registry store: mkdir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(dir, ".tmp-registry-*")
	if err != nil {
		return fmt.Errorf("registry store: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("registry store: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("registry store: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("registry store: rename temp file: %w", err)
	}
	return nil
}

var _ port.RegistryStore = (*Store)(nil)
