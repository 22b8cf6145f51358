package store

import (
	"context"
	"sync"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// ShortURLs is the shortID -> destination URL table (spec.md §3, §4.13).
type ShortURLs struct {
	mu sync.RWMutex
	m  map[string]*entity.ShortURL
}

// NewShortURLs constructs an empty ShortURLs table.
func NewShortURLs() *ShortURLs {
	return &ShortURLs{m: make(map[string]*entity.ShortURL)}
}

// Put inserts or replaces a short URL record.
func (s *ShortURLs) Put(ctx context.Context, su *entity.ShortURL) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[su.ShortID] = su
	return nil
}

// Get retrieves a short URL record by its short ID.
func (s *ShortURLs) Get(ctx context.Context, shortID string) (*entity.ShortURL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	su, ok := s.m[shortID]
	if !ok {
		return nil, entity.ErrShortURLNotFound
	}
	return su, nil
}

// Delete removes a short URL record.
func (s *ShortURLs) Delete(ctx context.Context, shortID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, shortID)
	return nil
}

// All returns every short URL record, for the Janitor's 24h expiry sweep.
func (s *ShortURLs) All(ctx context.Context) []*entity.ShortURL {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.ShortURL, 0, len(s.m))
	for _, su := range s.m {
		out = append(out, su)
	}
	return out
}
