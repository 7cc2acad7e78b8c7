package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudgate/internal/ruleset"
)

type readCountingStore struct {
	*MemoryStore
	reads int
}

func (s *readCountingStore) GetAll(ctx context.Context) (map[ruleset.Field]string, error) {
	s.reads++
	return s.MemoryStore.GetAll(ctx)
}

func TestCachedStore_ServesSnapshotWithinTTL(t *testing.T) {
	ctx := context.Background()
	inner := &readCountingStore{MemoryStore: NewMemoryStoreWith(map[ruleset.Field]string{
		ruleset.FieldIPs: "10.0.0.1",
	})}
	cached := NewCached(inner, time.Minute)

	var hits, misses int
	cached.Hit = func() { hits++ }
	cached.Miss = func() { misses++ }

	first, err := cached.GetAll(ctx)
	require.NoError(t, err)
	second, err := cached.GetAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.reads)
	assert.Equal(t, 1, misses)
	assert.Equal(t, 1, hits)
}

func TestCachedStore_SetInvalidatesBeforeReturning(t *testing.T) {
	ctx := context.Background()
	inner := &readCountingStore{MemoryStore: NewMemoryStore()}
	cached := NewCached(inner, time.Minute)

	_, err := cached.GetAll(ctx)
	require.NoError(t, err)

	require.NoError(t, cached.Set(ctx, ruleset.FieldEmails, "fraud@example.com"))

	value, err := cached.Get(ctx, ruleset.FieldEmails)
	require.NoError(t, err)
	assert.Equal(t, "fraud@example.com", value)
	assert.Equal(t, 2, inner.reads, "read after write must refresh from the inner store")
}

func TestCachedStore_ExpiredSnapshotRefreshes(t *testing.T) {
	ctx := context.Background()
	inner := &readCountingStore{MemoryStore: NewMemoryStore()}
	cached := NewCached(inner, -time.Second)

	_, err := cached.GetAll(ctx)
	require.NoError(t, err)
	_, err = cached.GetAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.reads)
}

func TestCachedStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	inner := &readCountingStore{MemoryStore: NewMemoryStoreWith(map[ruleset.Field]string{
		ruleset.FieldIPs: "10.0.0.1",
	})}
	cached := NewCached(inner, time.Minute)

	first, err := cached.GetAll(ctx)
	require.NoError(t, err)
	first[ruleset.FieldIPs] = "tampered"

	second, err := cached.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", second[ruleset.FieldIPs])
}
