package store

import (
	"context"
	"sync"
	"time"

	"fraudgate/internal/ruleset"

	"golang.org/x/sync/singleflight"
)

// CachedStore wraps a Store with an in-process TTL snapshot of all fields.
// Checkout evaluation reads the full ruleset on every request, so reads are
// served from the snapshot; concurrent refreshes collapse through
// singleflight. Writes flow to the inner store and drop the snapshot before
// returning, so a read issued after Set never sees the stale value.
type CachedStore struct {
	inner Store
	ttl   time.Duration

	group singleflight.Group

	mu        sync.RWMutex
	snapshot  map[ruleset.Field]string
	fetchedAt time.Time

	// Hit and Miss are invoked on snapshot hits and refreshes when set.
	Hit  func()
	Miss func()
}

// NewCached wraps inner with a TTL-bounded read cache.
func NewCached(inner Store, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, ttl: ttl}
}

func (s *CachedStore) Get(ctx context.Context, field ruleset.Field) (string, error) {
	fields, err := s.GetAll(ctx)
	if err != nil {
		return "", err
	}
	return fields[field], nil
}

func (s *CachedStore) GetAll(ctx context.Context) (map[ruleset.Field]string, error) {
	if snap, ok := s.cached(); ok {
		if s.Hit != nil {
			s.Hit()
		}
		return snap, nil
	}

	v, err, _ := s.group.Do("ruleset", func() (any, error) {
		if snap, ok := s.cached(); ok {
			return snap, nil
		}
		if s.Miss != nil {
			s.Miss()
		}
		fields, err := s.inner.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.snapshot = fields
		s.fetchedAt = time.Now()
		s.mu.Unlock()
		return fields, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneFields(v.(map[ruleset.Field]string)), nil
}

func (s *CachedStore) Set(ctx context.Context, field ruleset.Field, value string) error {
	if err := s.inner.Set(ctx, field, value); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// Invalidate drops the snapshot so the next read refreshes from the inner store.
func (s *CachedStore) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

func (s *CachedStore) cached() (map[ruleset.Field]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil || time.Since(s.fetchedAt) > s.ttl {
		return nil, false
	}
	return cloneFields(s.snapshot), true
}

func cloneFields(in map[ruleset.Field]string) map[ruleset.Field]string {
	out := make(map[ruleset.Field]string, len(in))
	for f, v := range in {
		out[f] = v
	}
	return out
}
