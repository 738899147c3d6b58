// Package memory provides an in-process DocumentStore used by tests and
// ephemeral deployments.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"hostelcore/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.DocumentStore = (*Store)(nil)

// Store keeps every collection as a map of raw JSON payloads.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage

	// FailNext, when non-nil, is returned by the next write call and then
	// cleared. Tests use it to exercise rollback paths.
	FailNext error
}

// NewStore constructs an empty in-memory document store.
func NewStore() *Store {
	return &Store{collections: make(map[string]map[string]json.RawMessage)}
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

// Load returns all documents of a collection sorted by id.
func (s *Store) Load(_ context.Context, collection string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.Document, 0, len(s.collections[collection]))
	for id, payload := range s.collections[collection] {
		docs = append(docs, domain.Document{ID: id, Payload: append(json.RawMessage(nil), payload...)})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// Save overwrites-or-creates a document.
func (s *Store) Save(_ context.Context, collection, id string, payload json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]json.RawMessage)
		s.collections[collection] = docs
	}
	docs[id] = append(json.RawMessage(nil), payload...)
	return nil
}

// Update merges the patch's top-level keys into the stored payload. Absent
// ids are a no-op.
func (s *Store) Update(_ context.Context, collection, id string, patch json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	current, ok := s.collections[collection][id]
	if !ok {
		return nil
	}
	merged, err := domain.MergePatch(current, patch)
	if err != nil {
		return err
	}
	s.collections[collection][id] = merged
	return nil
}

// Delete removes a document; deleting an absent id succeeds.
func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	delete(s.collections[collection], id)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
