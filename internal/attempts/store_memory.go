package attempts

import (
	"context"
	"sync"

	dErrors "fraudgate/pkg/domain-errors"
)

// MemoryStore is an in-memory Store for tests and single-node deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*FraudAttemptRecord
}

// NewMemoryStore creates an empty in-memory attempt store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, record *FraudAttemptRecord) error {
	if record == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "fraud attempt record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	s.records = append(s.records, &clone)
	return nil
}

func (s *MemoryStore) CountMatching(_ context.Context, query MatchQuery) (int, error) {
	if query.Empty() {
		return 0, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.records {
		if matches(r, query) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*FraudAttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*FraudAttemptRecord, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		clone := *s.records[i]
		out = append(out, &clone)
	}
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.records {
		if r.ID.String() == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "fraud attempt record not found")
}

func matches(r *FraudAttemptRecord, q MatchQuery) bool {
	if q.IPAddress != "" && r.IPAddress == q.IPAddress {
		return true
	}
	if q.BillingEmail != "" && r.BillingEmail == q.BillingEmail {
		return true
	}
	if q.BillingPhone != "" && r.BillingPhone == q.BillingPhone {
		return true
	}
	return false
}
