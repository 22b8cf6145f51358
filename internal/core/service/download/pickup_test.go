package download

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

type fakeEphemeralStore struct {
	metadata map[string]*entity.EphemeralIdentifierMetadata
	pickups  map[string]*entity.EphemeralPickup
}

func newFakeEphemeralStore() *fakeEphemeralStore {
	return &fakeEphemeralStore{
		metadata: make(map[string]*entity.EphemeralIdentifierMetadata),
		pickups:  make(map[string]*entity.EphemeralPickup),
	}
}

func (f *fakeEphemeralStore) PutMetadata(ctx context.Context, m *entity.EphemeralIdentifierMetadata) error {
	f.metadata[m.EphemeralDID] = m
	return nil
}

func (f *fakeEphemeralStore) GetMetadata(ctx context.Context, ephemeralDID string) (*entity.EphemeralIdentifierMetadata, bool) {
	m, ok := f.metadata[ephemeralDID]
	return m, ok
}

func (f *fakeEphemeralStore) DeleteMetadata(ctx context.Context, ephemeralDID string) error {
	delete(f.metadata, ephemeralDID)
	return nil
}

func (f *fakeEphemeralStore) AllMetadata(ctx context.Context) []*entity.EphemeralIdentifierMetadata {
	out := make([]*entity.EphemeralIdentifierMetadata, 0, len(f.metadata))
	for _, m := range f.metadata {
		out = append(out, m)
	}
	return out
}

func (f *fakeEphemeralStore) PutPickup(ctx context.Context, p *entity.EphemeralPickup) error {
	f.pickups[p.PickupID] = p
	return nil
}

func (f *fakeEphemeralStore) GetPickup(ctx context.Context, pickupID string) (*entity.EphemeralPickup, bool) {
	p, ok := f.pickups[pickupID]
	return p, ok
}

func (f *fakeEphemeralStore) DeletePickup(ctx context.Context, pickupID string) error {
	delete(f.pickups, pickupID)
	return nil
}

func (f *fakeEphemeralStore) AllPickups(ctx context.Context) []*entity.EphemeralPickup {
	out := make([]*entity.EphemeralPickup, 0, len(f.pickups))
	for _, p := range f.pickups {
		out = append(out, p)
	}
	return out
}

// TestPipeline_Pickup_ExpiresAfterTTL covers spec.md §8 S4/invariant 5: once
// now is past a pickup's expiresAt, GET must report Gone and the record
// must no longer be retrievable.
func TestPipeline_Pickup_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	ephStore := newFakeEphemeralStore()

	created := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	pickup := &entity.EphemeralPickup{
		PickupID:         "pickup-1",
		EncryptedContent: []byte("ciphertext"),
		ExpiresAt:        created.Add(time.Hour),
		ViewsRemaining:   entity.UnlimitedViews,
	}
	require.NoError(t, ephStore.PutPickup(ctx, pickup))

	p := &Pipeline{ephStore: ephStore, now: func() time.Time { return created.Add(30 * time.Minute) }}
	got, err := p.Pickup(ctx, "pickup-1")
	require.NoError(t, err)
	assert.Equal(t, pickup.EncryptedContent, got.EncryptedContent)

	p.now = func() time.Time { return created.Add(time.Hour + time.Second) }
	_, err = p.Pickup(ctx, "pickup-1")
	assert.ErrorIs(t, err, entity.ErrPickupExpired)

	_, stillThere := ephStore.GetPickup(ctx, "pickup-1")
	assert.False(t, stillThere, "expired pickup must be deleted, not just rejected")
}

// TestPipeline_Pickup_ViewsExhausted covers the limited-view branch: once
// ViewsRemaining hits zero, the next pickup is treated the same as expiry.
func TestPipeline_Pickup_ViewsExhausted(t *testing.T) {
	ctx := context.Background()
	ephStore := newFakeEphemeralStore()
	now := time.Now()

	require.NoError(t, ephStore.PutPickup(ctx, &entity.EphemeralPickup{
		PickupID:       "pickup-1",
		ExpiresAt:      now.Add(time.Hour),
		ViewsRemaining: 1,
	}))

	p := &Pipeline{ephStore: ephStore, now: func() time.Time { return now }}
	_, err := p.Pickup(ctx, "pickup-1")
	require.NoError(t, err)

	got, ok := ephStore.GetPickup(ctx, "pickup-1")
	require.True(t, ok)
	assert.Equal(t, 0, got.ViewsRemaining)

	_, err = p.Pickup(ctx, "pickup-1")
	assert.ErrorIs(t, err, entity.ErrPickupExpired)
}

func TestPipeline_Pickup_NotFound(t *testing.T) {
	ctx := context.Background()
	p := &Pipeline{ephStore: newFakeEphemeralStore(), now: time.Now}
	_, err := p.Pickup(ctx, "missing")
	assert.ErrorIs(t, err, entity.ErrPickupNotFound)
}
