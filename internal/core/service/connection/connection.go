// Package connection implements the employee-to-connection mapping and the
// per-company soft-deleted-connection set described in spec.md §6 and §4.7,
// backed by the two persisted JSON files named there.
package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
)

// Store holds the employee-connection mapping table and the per-company
// soft-deleted-connection set, each guarded by its own mutex (spec.md §5
// concurrency model: one table, one mutex).
//
// Grounded structurally on internal/infra/registry's mutex-guarded map, the
// same single-writer discipline spec.md §5 requires of every in-memory
// table here.
type Store struct {
	mappingsPath string
	deletedPath  string

	mappingsMu sync.RWMutex
	mappings   map[string]entity.EmployeeConnectionMapping // identifier -> mapping

	deletedMu sync.RWMutex
	deleted   map[string]map[string]struct{} // companyID -> connectionID set
}

// NewStore constructs a Store backed by the two given file paths. Load must
// be called once at startup to populate it from disk.
func NewStore(mappingsPath, deletedPath string) *Store {
	return &Store{
		mappingsPath: mappingsPath,
		deletedPath:  deletedPath,
		mappings:     make(map[string]entity.EmployeeConnectionMapping),
		deleted:      make(map[string]map[string]struct{}),
	}
}

// Load reads both JSON files from disk. A missing file is not an error —
// the store simply starts empty.
func (s *Store) Load(ctx context.Context) error {
	if err := s.loadMappings(); err != nil {
		return err
	}
	return s.loadDeleted()
}

func (s *Store) loadMappings() error {
	data, err := os.ReadFile(s.mappingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("connection: read mappings: %w", err)
	}
	var m map[string]entity.EmployeeConnectionMapping
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("connection: unmarshal mappings: %w", err)
	}
	s.mappingsMu.Lock()
	defer s.mappingsMu.Unlock()
	s.mappings = m
	return nil
}

func (s *Store) loadDeleted() error {
	data, err := os.ReadFile(s.deletedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("connection: read soft-deleted connections: %w", err)
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("connection: unmarshal soft-deleted connections: %w", err)
	}
	s.deletedMu.Lock()
	defer s.deletedMu.Unlock()
	for companyID, ids := range raw {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		s.deleted[companyID] = set
	}
	return nil
}

// ResolveConnection implements auth.ConnectionResolver: mapping a login
// identifier (email or DID string) to its known connectionID (spec.md §4.10
// Initiate). The mapping records no issuer, so the issuerDID result is
// always empty.
func (s *Store) ResolveConnection(ctx context.Context, identifier string) (connectionID string, issuerDID string, err error) {
	s.mappingsMu.RLock()
	defer s.mappingsMu.RUnlock()
	m, ok := s.mappings[identifier]
	if !ok {
		return "", "", entity.ErrEmployeeNotFound
	}
	return m.ConnectionID, "", nil
}

// Put inserts or replaces a mapping and persists the table.
func (s *Store) Put(ctx context.Context, m entity.EmployeeConnectionMapping) error {
	s.mappingsMu.Lock()
	s.mappings[m.Identifier] = m
	snapshot := make(map[string]entity.EmployeeConnectionMapping, len(s.mappings))
	for k, v := range s.mappings {
		snapshot[k] = v
	}
	s.mappingsMu.Unlock()
	return writeJSONAtomic(s.mappingsPath, snapshot)
}

// Get retrieves a mapping by identifier.
func (s *Store) Get(ctx context.Context, identifier string) (entity.EmployeeConnectionMapping, bool) {
	s.mappingsMu.RLock()
	defer s.mappingsMu.RUnlock()
	m, ok := s.mappings[identifier]
	return m, ok
}

// SoftDelete hides connectionID from companyID's listings (spec.md §4.7
// Soft-delete) and persists the set.
func (s *Store) SoftDelete(ctx context.Context, companyID, connectionID string) error {
	s.deletedMu.Lock()
	if s.deleted[companyID] == nil {
		s.deleted[companyID] = make(map[string]struct{})
	}
	s.deleted[companyID][connectionID] = struct{}{}
	snapshot := make(map[string][]string, len(s.deleted))
	for company, set := range s.deleted {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		snapshot[company] = ids
	}
	s.deletedMu.Unlock()
	return writeJSONAtomic(s.deletedPath, snapshot)
}

// IsSoftDeleted reports whether connectionID is hidden from companyID's
// listings.
func (s *Store) IsSoftDeleted(companyID, connectionID string) bool {
	s.deletedMu.RLock()
	defer s.deletedMu.RUnlock()
	_, hidden := s.deleted[companyID][connectionID]
	return hidden
}

// writeJSONAtomic serializes v and writes it to path via temp file + rename
// (spec.md §5: "writes must be atomic (temp + rename)").
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("connection: marshal: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("connection: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("connection: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("connection: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("connection: rename temp file: %w", err)
	}
	return nil
}
