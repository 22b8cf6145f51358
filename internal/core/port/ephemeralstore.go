package port

import (
	"context"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// EphemeralStore persists the two record kinds C8 manages: ephemeral
// identifier metadata (keyed by EphemeralDID) and pickup records (keyed by
// PickupID), per spec.md §4.8.
type EphemeralStore interface {
	PutMetadata(ctx context.Context, m *entity.EphemeralIdentifierMetadata) error
	GetMetadata(ctx context.Context, ephemeralDID string) (*entity.EphemeralIdentifierMetadata, bool)
	DeleteMetadata(ctx context.Context, ephemeralDID string) error
	AllMetadata(ctx context.Context) []*entity.EphemeralIdentifierMetadata

	PutPickup(ctx context.Context, p *entity.EphemeralPickup) error
	GetPickup(ctx context.Context, pickupID string) (*entity.EphemeralPickup, bool)
	DeletePickup(ctx context.Context, pickupID string) error
	AllPickups(ctx context.Context) []*entity.EphemeralPickup
}

// PreparedDownloadStore persists staged downloads between C9.PrepareDownload
// and C9.CompleteDownload, keyed by StorageID.
type PreparedDownloadStore interface {
	Put(ctx context.Context, p *entity.PreparedDownload) error
	Get(ctx context.Context, storageID string) (*entity.PreparedDownload, bool)
	Delete(ctx context.Context, storageID string) error
	All(ctx context.Context) []*entity.PreparedDownload
}
