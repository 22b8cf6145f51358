package store

import (
	"context"
	"sync"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// PreparedDownloads implements port.PreparedDownloadStore.
type PreparedDownloads struct {
	mu sync.RWMutex
	m  map[string]*entity.PreparedDownload // storageID -> prepared download
}

// NewPreparedDownloads constructs an empty table.
func NewPreparedDownloads() *PreparedDownloads {
	return &PreparedDownloads{m: make(map[string]*entity.PreparedDownload)}
}

// Put inserts or replaces a staged download.
func (p *PreparedDownloads) Put(ctx context.Context, pd *entity.PreparedDownload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[pd.StorageID] = pd
	return nil
}

// Get retrieves a staged download by storage ID.
func (p *PreparedDownloads) Get(ctx context.Context, storageID string) (*entity.PreparedDownload, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pd, ok := p.m[storageID]
	return pd, ok
}

// Delete removes a staged download (spec.md §4.9 step 4: "deletes the
// prepared entry" once complete-download has run).
func (p *PreparedDownloads) Delete(ctx context.Context, storageID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, storageID)
	return nil
}

// All returns every staged download, for the Janitor's 10-minute expiry
// sweep.
func (p *PreparedDownloads) All(ctx context.Context) []*entity.PreparedDownload {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*entity.PreparedDownload, 0, len(p.m))
	for _, pd := range p.m {
		out = append(out, pd)
	}
	return out
}
