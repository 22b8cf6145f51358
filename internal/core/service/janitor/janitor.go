// Package janitor implements C13, the periodic expiry sweep over every
// time-bounded table: sessions, pending authorizations, short URLs, and
// ephemeral pickups/metadata (spec.md §4.13, §5 concurrency model).
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/infra/scheduler"
)

// SessionTable is the subset of auth.SessionStore the janitor needs to
// enumerate and evict expired entries.
type SessionTable interface {
	All(ctx context.Context) []*entity.Session
	Delete(ctx context.Context, sessionToken string) error
}

// PendingAuthTable mirrors auth.PendingAuthStore plus All.
type PendingAuthTable interface {
	All(ctx context.Context) []*entity.PendingAuth
	Delete(ctx context.Context, presentationID string) error
}

// PendingResourceAuthTable mirrors resourceauth.PendingStore.
type PendingResourceAuthTable interface {
	All(ctx context.Context) []*entity.PendingResourceAuthorization
	Delete(ctx context.Context, sessionID string) error
}

// ShortURLTable enumerates and evicts short URLs past their TTL.
type ShortURLTable interface {
	All(ctx context.Context) []*entity.ShortURL
	Delete(ctx context.Context, shortID string) error
}

// EphemeralMetadataTable enumerates and evicts ephemeral identifier records.
type EphemeralMetadataTable interface {
	AllMetadata(ctx context.Context) []*entity.EphemeralIdentifierMetadata
	DeleteMetadata(ctx context.Context, ephemeralDID string) error
}

// PickupTable enumerates and evicts staged ephemeral pickups.
type PickupTable interface {
	AllPickups(ctx context.Context) []*entity.EphemeralPickup
	DeletePickup(ctx context.Context, pickupID string) error
}

// PreparedDownloadTable enumerates and evicts staged prepared downloads.
type PreparedDownloadTable interface {
	All(ctx context.Context) []*entity.PreparedDownload
	Delete(ctx context.Context, storageID string) error
}

// Janitor wires one sweep function per table onto a shared scheduler. Every
// dependency is optional: a nil table is simply skipped, so a deployment can
// opt out of wiring a table it doesn't use (e.g. short URLs, per spec.md §6
// Non-goals) without the janitor failing to start.
type Janitor struct {
	sessions          SessionTable
	pendingAuths      PendingAuthTable
	pendingResAuths   PendingResourceAuthTable
	shortURLs         ShortURLTable
	ephemeralMeta     EphemeralMetadataTable
	pickups           PickupTable
	preparedDownloads PreparedDownloadTable
	now               func() time.Time
}

// New constructs a Janitor. Pass nil for any table the deployment does not
// wire; Register skips nil dependencies.
func New(
	sessions SessionTable,
	pendingAuths PendingAuthTable,
	pendingResAuths PendingResourceAuthTable,
	shortURLs ShortURLTable,
	ephemeralMeta EphemeralMetadataTable,
	pickups PickupTable,
	preparedDownloads PreparedDownloadTable,
) *Janitor {
	return &Janitor{
		sessions:          sessions,
		pendingAuths:      pendingAuths,
		pendingResAuths:   pendingResAuths,
		shortURLs:         shortURLs,
		ephemeralMeta:     ephemeralMeta,
		pickups:           pickups,
		preparedDownloads: preparedDownloads,
		now:               time.Now,
	}
}

// Register adds one sweep job per non-nil table to s, all on the same
// interval (spec.md §6 Configuration: "janitor.interval", default 60s).
func (j *Janitor) Register(s *scheduler.Scheduler, interval time.Duration) {
	if j.sessions != nil {
		s.RegisterJob("janitor.sessions", interval, j.sweepSessions)
	}
	if j.pendingAuths != nil {
		s.RegisterJob("janitor.pending_auths", interval, j.sweepPendingAuths)
	}
	if j.pendingResAuths != nil {
		s.RegisterJob("janitor.pending_resource_auths", interval, j.sweepPendingResourceAuths)
	}
	if j.shortURLs != nil {
		s.RegisterJob("janitor.short_urls", interval, j.sweepShortURLs)
	}
	if j.ephemeralMeta != nil {
		s.RegisterJob("janitor.ephemeral_metadata", interval, j.sweepEphemeralMetadata)
	}
	if j.pickups != nil {
		s.RegisterJob("janitor.pickups", interval, j.sweepPickups)
	}
	if j.preparedDownloads != nil {
		s.RegisterJob("janitor.prepared_downloads", interval, j.sweepPreparedDownloads)
	}
}

func (j *Janitor) sweepSessions(ctx context.Context) error {
	now := j.now()
	swept := 0
	for _, s := range j.sessions.All(ctx) {
		if s.Expired(now) {
			if err := j.sessions.Delete(ctx, s.SessionToken); err != nil {
				return err
			}
			swept++
		}
	}
	if swept > 0 {
		slog.InfoContext(ctx, "janitor swept sessions", slog.Int("count", swept))
	}
	return nil
}

func (j *Janitor) sweepPendingAuths(ctx context.Context) error {
	now := j.now()
	swept := 0
	for _, p := range j.pendingAuths.All(ctx) {
		if p.Expired(now) {
			if err := j.pendingAuths.Delete(ctx, p.PresentationID); err != nil {
				return err
			}
			swept++
		}
	}
	if swept > 0 {
		slog.InfoContext(ctx, "janitor swept pending auths", slog.Int("count", swept))
	}
	return nil
}

func (j *Janitor) sweepPendingResourceAuths(ctx context.Context) error {
	now := j.now()
	swept := 0
	for _, p := range j.pendingResAuths.All(ctx) {
		if p.Expired(now) {
			if err := j.pendingResAuths.Delete(ctx, p.SessionID); err != nil {
				return err
			}
			swept++
		}
	}
	if swept > 0 {
		slog.InfoContext(ctx, "janitor swept pending resource auths", slog.Int("count", swept))
	}
	return nil
}

func (j *Janitor) sweepShortURLs(ctx context.Context) error {
	now := j.now()
	swept := 0
	for _, u := range j.shortURLs.All(ctx) {
		if u.Expired(now) {
			if err := j.shortURLs.Delete(ctx, u.ShortID); err != nil {
				return err
			}
			swept++
		}
	}
	if swept > 0 {
		slog.InfoContext(ctx, "janitor swept short URLs", slog.Int("count", swept))
	}
	return nil
}

func (j *Janitor) sweepEphemeralMetadata(ctx context.Context) error {
	now := j.now()
	swept := 0
	for _, m := range j.ephemeralMeta.AllMetadata(ctx) {
		if m.Expired(now) {
			if err := j.ephemeralMeta.DeleteMetadata(ctx, m.EphemeralDID); err != nil {
				return err
			}
			swept++
		}
	}
	if swept > 0 {
		slog.InfoContext(ctx, "janitor swept ephemeral metadata", slog.Int("count", swept))
	}
	return nil
}

func (j *Janitor) sweepPickups(ctx context.Context) error {
	now := j.now()
	swept := 0
	for _, p := range j.pickups.AllPickups(ctx) {
		if p.Expired(now) || p.ViewsRemaining == 0 {
			if err := j.pickups.DeletePickup(ctx, p.PickupID); err != nil {
				return err
			}
			swept++
		}
	}
	if swept > 0 {
		slog.InfoContext(ctx, "janitor swept ephemeral pickups", slog.Int("count", swept))
	}
	return nil
}

func (j *Janitor) sweepPreparedDownloads(ctx context.Context) error {
	now := j.now()
	swept := 0
	for _, pd := range j.preparedDownloads.All(ctx) {
		if pd.Expired(now) {
			if err := j.preparedDownloads.Delete(ctx, pd.StorageID); err != nil {
				return err
			}
			swept++
		}
	}
	if swept > 0 {
		slog.InfoContext(ctx, "janitor swept prepared downloads", slog.Int("count", swept))
	}
	return nil
}
