package store

import (
	"context"
	"sync"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// PendingResourceAuths implements resourceauth.PendingStore.
type PendingResourceAuths struct {
	mu sync.RWMutex
	m  map[string]*entity.PendingResourceAuthorization // sessionID -> pending
}

// NewPendingResourceAuths constructs an empty table.
func NewPendingResourceAuths() *PendingResourceAuths {
	return &PendingResourceAuths{m: make(map[string]*entity.PendingResourceAuthorization)}
}

// Put inserts or replaces a pending dual-VP authorization.
func (p *PendingResourceAuths) Put(ctx context.Context, pending *entity.PendingResourceAuthorization) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.m[pending.SessionID] = pending
	return nil
}

// Get retrieves a pending dual-VP authorization by session ID.
func (p *PendingResourceAuths) Get(ctx context.Context, sessionID string) (*entity.PendingResourceAuthorization, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pending, ok := p.m[sessionID]
	if !ok {
		return nil, entity.ErrPendingResourceAuthNotFound
	}
	return pending, nil
}

// Delete removes a pending dual-VP authorization.
func (p *PendingResourceAuths) Delete(ctx context.Context, sessionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.m, sessionID)
	return nil
}

// All returns every pending dual-VP authorization, for the Janitor sweep.
func (p *PendingResourceAuths) All(ctx context.Context) []*entity.PendingResourceAuthorization {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*entity.PendingResourceAuthorization, 0, len(p.m))
	for _, pending := range p.m {
		out = append(out, pending)
	}
	return out
}
