package store

import (
	"context"
	"sync"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// Ephemeral implements port.EphemeralStore: the ephemeral-identifier
// metadata table and the pickup table, each guarded by its own mutex.
type Ephemeral struct {
	metaMu sync.RWMutex
	meta   map[string]*entity.EphemeralIdentifierMetadata // ephemeralDID -> metadata

	pickupMu sync.RWMutex
	pickups  map[string]*entity.EphemeralPickup // pickupID -> pickup
}

// NewEphemeral constructs an empty Ephemeral store.
func NewEphemeral() *Ephemeral {
	return &Ephemeral{
		meta:    make(map[string]*entity.EphemeralIdentifierMetadata),
		pickups: make(map[string]*entity.EphemeralPickup),
	}
}

// PutMetadata inserts or replaces an ephemeral identifier's metadata.
func (e *Ephemeral) PutMetadata(ctx context.Context, m *entity.EphemeralIdentifierMetadata) error {
	e.metaMu.Lock()
	defer e.metaMu.Unlock()
	e.meta[m.EphemeralDID] = m
	return nil
}

// GetMetadata retrieves an ephemeral identifier's metadata.
func (e *Ephemeral) GetMetadata(ctx context.Context, ephemeralDID string) (*entity.EphemeralIdentifierMetadata, bool) {
	e.metaMu.RLock()
	defer e.metaMu.RUnlock()
	m, ok := e.meta[ephemeralDID]
	return m, ok
}

// DeleteMetadata removes an ephemeral identifier's metadata (spec.md §4.8:
// swept once the identifier's TTL has elapsed).
func (e *Ephemeral) DeleteMetadata(ctx context.Context, ephemeralDID string) error {
	e.metaMu.Lock()
	defer e.metaMu.Unlock()
	delete(e.meta, ephemeralDID)
	return nil
}

// AllMetadata returns every ephemeral identifier's metadata, for the
// Janitor's expiry sweep.
func (e *Ephemeral) AllMetadata(ctx context.Context) []*entity.EphemeralIdentifierMetadata {
	e.metaMu.RLock()
	defer e.metaMu.RUnlock()
	out := make([]*entity.EphemeralIdentifierMetadata, 0, len(e.meta))
	for _, m := range e.meta {
		out = append(out, m)
	}
	return out
}

// PutPickup inserts or replaces a pickup record.
func (e *Ephemeral) PutPickup(ctx context.Context, p *entity.EphemeralPickup) error {
	e.pickupMu.Lock()
	defer e.pickupMu.Unlock()
	e.pickups[p.PickupID] = p
	return nil
}

// GetPickup retrieves a pickup record by ID.
func (e *Ephemeral) GetPickup(ctx context.Context, pickupID string) (*entity.EphemeralPickup, bool) {
	e.pickupMu.RLock()
	defer e.pickupMu.RUnlock()
	p, ok := e.pickups[pickupID]
	return p, ok
}

// DeletePickup removes a pickup record (spec.md §4.9 step 5: deleted on
// expiry, and once views are exhausted).
func (e *Ephemeral) DeletePickup(ctx context.Context, pickupID string) error {
	e.pickupMu.Lock()
	defer e.pickupMu.Unlock()
	delete(e.pickups, pickupID)
	return nil
}

// AllPickups returns every pickup record, for the Janitor's unread-expired
// sweep.
func (e *Ephemeral) AllPickups(ctx context.Context) []*entity.EphemeralPickup {
	e.pickupMu.RLock()
	defer e.pickupMu.RUnlock()
	out := make([]*entity.EphemeralPickup, 0, len(e.pickups))
	for _, p := range e.pickups {
		out = append(out, p)
	}
	return out
}
