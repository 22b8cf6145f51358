// Package store holds the plain in-memory, mutex-guarded tables spec.md §5
// describes: "a shared set of mutable in-memory tables... each guarded by
// its own mutex; no table needs a global lock." Grounded on
// internal/infra/registry's mutex-guarded map idiom, applied to every other
// table the core needs.
package store

import (
	"context"
	"sync"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// Sessions implements auth.SessionStore.
type Sessions struct {
	mu sync.RWMutex
	m  map[string]*entity.Session // token -> session
}

// NewSessions constructs an empty Sessions table.
func NewSessions() *Sessions {
	return &Sessions{m: make(map[string]*entity.Session)}
}

// Put inserts or replaces a session.
func (s *Sessions) Put(ctx context.Context, sess *entity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.SessionToken] = sess
	return nil
}

// Get retrieves a session by token.
func (s *Sessions) Get(ctx context.Context, token string) (*entity.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.m[token]
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session.
func (s *Sessions) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}

// All returns every session, for the Janitor's expiry sweep.
func (s *Sessions) All(ctx context.Context) []*entity.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Session, 0, len(s.m))
	for _, sess := range s.m {
		out = append(out, sess)
	}
	return out
}
