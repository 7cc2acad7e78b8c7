package store

import (
	"context"
	"sync"

	"fraudgate/internal/ruleset"
)

// MemoryStore is an in-memory Store for tests and single-node deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	fields map[ruleset.Field]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{fields: make(map[ruleset.Field]string)}
}

// NewMemoryStoreWith seeds the store with initial field values.
func NewMemoryStoreWith(fields map[ruleset.Field]string) *MemoryStore {
	s := NewMemoryStore()
	for f, v := range fields {
		s.fields[f] = v
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, field ruleset.Field) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields[field], nil
}

func (s *MemoryStore) GetAll(_ context.Context) (map[ruleset.Field]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[ruleset.Field]string, len(s.fields))
	for f, v := range s.fields {
		out[f] = v
	}
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, field ruleset.Field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields[field] = value
	return nil
}
