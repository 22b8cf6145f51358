package port

import (
	"context"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// RegistryStore persists the signed document registry (C3): a JSON-at-rest
// catalogue of every Document the broker knows about, protected against
// tampering by an HMAC signature over the serialized contents (spec.md §4.3,
// §8 invariant "the registry file's signature must verify before any record
// in it is trusted").
//
// Implemented by internal/infra/registry's Store: a mutex-guarded,
// single-writer in-memory map that the registry core persists after every
// Register and Delete.
type RegistryStore interface {
	// Load reads and signature-verifies the persisted registry, returning
	// ErrIntegrityViolation if the signature does not match.
	Load(ctx context.Context) error

	// Persist serializes the current in-memory registry and (re)signs it.
	Persist(ctx context.Context) error

	// Put inserts or replaces a document record.
	Put(ctx context.Context, doc *entity.Document) error

	// Get retrieves a document record by ID, including soft-deleted ones so
	// callers can distinguish Gone from NotFound.
	Get(ctx context.Context, documentID string) (*entity.Document, bool)

	// Delete performs a soft-delete (tombstone), keeping the record
	// discoverable as gone rather than absent (spec.md §8 boundary:
	// deleted documents return Gone, not NotFound).
	Delete(ctx context.Context, documentID string) error

	// All returns every non-deleted document record.
	All(ctx context.Context) []*entity.Document
}
