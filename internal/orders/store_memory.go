package orders

import (
	"context"
	"sync"
	"time"

	dErrors "fraudgate/pkg/domain-errors"
)

// MemoryStore is an in-memory Store for tests and single-node deployments.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]*Order
}

// NewMemoryStore creates an empty in-memory order state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]*Order)}
}

func (s *MemoryStore) Get(_ context.Context, orderID string) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "order state not found")
	}
	clone := *o
	clone.Notes = append([]Note(nil), o.Notes...)
	return &clone, nil
}

func (s *MemoryStore) IncrementFraudAttempts(_ context.Context, orderID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.ensure(orderID)
	pre := o.FraudAttempts
	o.FraudAttempts++
	o.UpdatedAt = time.Now()
	return pre, nil
}

func (s *MemoryStore) SetSkipBlacklist(_ context.Context, orderID string, skip bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.ensure(orderID)
	o.SkipBlacklist = skip
	o.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) MarkCancelled(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.ensure(orderID)
	o.Cancelled = true
	o.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) AddNote(_ context.Context, orderID string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.ensure(orderID)
	o.Notes = append(o.Notes, Note{Text: text, CreatedAt: time.Now()})
	o.UpdatedAt = time.Now()
	return nil
}

// ensure returns the state for orderID, creating it lazily. Caller holds the
// lock.
func (s *MemoryStore) ensure(orderID string) *Order {
	if o, ok := s.orders[orderID]; ok {
		return o
	}
	now := time.Now()
	o := &Order{ID: orderID, CreatedAt: now, UpdatedAt: now}
	s.orders[orderID] = o
	return o
}
