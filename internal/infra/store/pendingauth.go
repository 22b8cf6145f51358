package store

import (
	"context"
	"sync"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// PendingAuths implements auth.PendingAuthStore.
type PendingAuths struct {
	mu sync.RWMutex
	m  map[string]*entity.PendingAuth // presentationID -> pending auth
}

// NewPendingAuths constructs an empty PendingAuths table.
func NewPendingAuths() *PendingAuths {
	return &PendingAuths{m: make(map[string]*entity.PendingAuth)}
}

// Put inserts or replaces a pending auth record.
func (p *PendingAuths) Put(ctx context.Context, pending *entity.PendingAuth) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[pending.PresentationID] = pending
	return nil
}

// Get retrieves a pending auth record by presentation ID.
func (p *PendingAuths) Get(ctx context.Context, presentationID string) (*entity.PendingAuth, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pending, ok := p.m[presentationID]
	if !ok {
		return nil, entity.ErrPendingAuthNotFound
	}
	return pending, nil
}

// Delete removes a pending auth record.
func (p *PendingAuths) Delete(ctx context.Context, presentationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, presentationID)
	return nil
}

// All returns every pending auth, for the Janitor's minute-granular sweep.
func (p *PendingAuths) All(ctx context.Context) []*entity.PendingAuth {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*entity.PendingAuth, 0, len(p.m))
	for _, pending := range p.m {
		out = append(out, pending)
	}
	return out
}
