package attempts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fraudgate/pkg/domain-errors"
)

func record(ip, email, phone string) *FraudAttemptRecord {
	return &FraudAttemptRecord{
		ID:           uuid.New(),
		OrderID:      "order-1",
		IPAddress:    ip,
		BillingEmail: email,
		BillingPhone: phone,
		CreatedAt:    time.Now(),
	}
}

func TestMemoryStore_CountMatching(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Append(ctx, record("198.51.100.7", "a@example.com", "111")))
	require.NoError(t, s.Append(ctx, record("198.51.100.7", "b@example.com", "222")))
	require.NoError(t, s.Append(ctx, record("203.0.113.9", "a@example.com", "333")))

	t.Run("by ip", func(t *testing.T) {
		n, err := s.CountMatching(ctx, MatchQuery{IPAddress: "198.51.100.7"})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("ip or email", func(t *testing.T) {
		n, err := s.CountMatching(ctx, MatchQuery{IPAddress: "198.51.100.7", BillingEmail: "a@example.com"})
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("empty signals never match", func(t *testing.T) {
		require.NoError(t, s.Append(ctx, record("", "", "")))
		n, err := s.CountMatching(ctx, MatchQuery{BillingPhone: "999"})
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		n, err = s.CountMatching(ctx, MatchQuery{})
		require.NoError(t, err)
		assert.Equal(t, 0, n)
	})
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	first := record("1.1.1.1", "", "")
	second := record("2.2.2.2", "", "")
	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, second))

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := record("1.1.1.1", "", "")
	require.NoError(t, s.Append(ctx, r))

	require.NoError(t, s.Delete(ctx, r.ID.String()))

	err := s.Delete(ctx, r.ID.String())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	records, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}
