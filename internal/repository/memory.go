package repository

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/yourorg/toolshare/internal/domain"
)

// MemoryStore implements domain.RecordStore in process memory. It is the
// default backend for single-node development runs and for tests.
//
// Records are held as JSON documents, matching the Redis and Postgres
// backends, so fetched values never alias stored state.
type MemoryStore[T any] struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory record store
func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{docs: make(map[string][]byte)}
}

// Get returns the record for id
func (s *MemoryStore[T]) Get(id string) (T, error) {
	var value T

	s.mu.RLock()
	data, ok := s.docs[id]
	s.mu.RUnlock()

	if !ok {
		return value, fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("failed to unmarshal record %q: %w", id, err)
	}
	return value, nil
}

// Insert stores value under id, replacing any existing record
func (s *MemoryStore[T]) Insert(id string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal record %q: %w", id, err)
	}

	s.mu.Lock()
	s.docs[id] = data
	s.mu.Unlock()
	return nil
}

// Remove deletes the record for id
func (s *MemoryStore[T]) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("record %q: %w", id, domain.ErrNotFound)
	}
	delete(s.docs, id)
	return nil
}

// Values returns all records in unspecified order
func (s *MemoryStore[T]) Values() ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]T, 0, len(s.docs))
	for id, data := range s.docs {
		var value T
		if err := json.Unmarshal(data, &value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %q: %w", id, err)
		}
		values = append(values, value)
	}
	return values, nil
}
