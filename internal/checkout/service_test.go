package checkout

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudgate/internal/audit"
	"fraudgate/internal/match"
	"fraudgate/internal/orders"
	"fraudgate/internal/profile"
	"fraudgate/internal/ruleset"
	"fraudgate/internal/ruleset/store"
)

func newTestService(t *testing.T, fields map[ruleset.Field]string) (*Service, *audit.MemoryStore) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	rulesetSvc := ruleset.NewService(store.NewMemoryStoreWith(fields), logger)
	blockedLog := audit.NewMemoryStore()
	svc := NewService(rulesetSvc, match.NewEngine(), audit.NewPublisher(blockedLog), logger)
	return svc, blockedLog
}

func rawCheckout() profile.RawFields {
	return profile.RawFields{
		"billing_first_name": "John",
		"billing_last_name":  "Doe",
		"ip_address":         "198.51.100.7",
		"billing_email":      "john.doe@example.com",
		"billing_phone":      "+15550100",
		"payment_method":     "stripe",
	}
}

func TestEvaluate_CleanCustomerAllowed(t *testing.T) {
	svc, blockedLog := newTestService(t, nil)

	decision, err := svc.Evaluate(context.Background(), rawCheckout(), nil, match.Identity{})
	require.NoError(t, err)
	assert.True(t, decision.Allow)
	assert.Empty(t, decision.Reason)

	events, _ := blockedLog.List(context.Background())
	assert.Empty(t, events)
}

func TestEvaluate_BlacklistedCustomerRejected(t *testing.T) {
	svc, blockedLog := newTestService(t, map[ruleset.Field]string{
		ruleset.FieldIPs: "198.51.100.7",
	})

	decision, err := svc.Evaluate(context.Background(), rawCheckout(), nil, match.Identity{})
	require.NoError(t, err)
	assert.False(t, decision.Allow)
	assert.Equal(t, match.ReasonIPAddress, decision.Reason)
	assert.Equal(t, ruleset.DefaultBlockedMessage, decision.Message)

	events, _ := blockedLog.List(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, match.ReasonIPAddress, events[0].Reason)
	assert.Equal(t, "198.51.100.7", events[0].IPAddress)
}

func TestEvaluate_WhitelistBeatsBlacklist(t *testing.T) {
	svc, blockedLog := newTestService(t, map[ruleset.Field]string{
		ruleset.FieldIPs:               "198.51.100.7",
		ruleset.FieldWhitelistGateways: "stripe",
	})

	decision, err := svc.Evaluate(context.Background(), rawCheckout(), nil, match.Identity{})
	require.NoError(t, err)
	assert.True(t, decision.Allow)

	events, _ := blockedLog.List(context.Background())
	assert.Empty(t, events)
}

func TestEvaluate_CustomerWhitelistBeatsBlacklist(t *testing.T) {
	svc, _ := newTestService(t, map[ruleset.Field]string{
		ruleset.FieldEmails:             "john.doe@example.com",
		ruleset.FieldWhitelistCustomers: "42",
	})

	decision, err := svc.Evaluate(context.Background(), rawCheckout(), nil, match.Identity{ID: 42})
	require.NoError(t, err)
	assert.True(t, decision.Allow)
}

func TestEvaluate_ProductScoping(t *testing.T) {
	fields := map[ruleset.Field]string{
		ruleset.FieldIPs:          "198.51.100.7",
		ruleset.FieldProductTypes: "variable",
	}

	t.Run("out-of-scope cart passes", func(t *testing.T) {
		svc, _ := newTestService(t, fields)
		items := []orders.LineItem{{ProductType: "simple"}}

		decision, err := svc.Evaluate(context.Background(), rawCheckout(), items, match.Identity{})
		require.NoError(t, err)
		assert.True(t, decision.Allow)
	})

	t.Run("in-scope cart is evaluated", func(t *testing.T) {
		svc, _ := newTestService(t, fields)
		items := []orders.LineItem{{ProductType: "simple"}, {ProductType: "variable"}}

		decision, err := svc.Evaluate(context.Background(), rawCheckout(), items, match.Identity{})
		require.NoError(t, err)
		assert.False(t, decision.Allow)
	})

	t.Run("unknown cart contents are evaluated", func(t *testing.T) {
		svc, _ := newTestService(t, fields)

		decision, err := svc.Evaluate(context.Background(), rawCheckout(), nil, match.Identity{})
		require.NoError(t, err)
		assert.False(t, decision.Allow)
	})
}

func TestEvaluate_CustomBlockedMessage(t *testing.T) {
	svc, _ := newTestService(t, map[ruleset.Field]string{
		ruleset.FieldIPs:            "198.51.100.7",
		ruleset.FieldBlockedMessage: "Contact support.",
	})

	decision, err := svc.Evaluate(context.Background(), rawCheckout(), nil, match.Identity{})
	require.NoError(t, err)
	assert.Equal(t, "Contact support.", decision.Message)
}
