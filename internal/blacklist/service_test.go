package blacklist

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudgate/internal/audit"
	"fraudgate/internal/orders"
	"fraudgate/internal/profile"
	"fraudgate/internal/ruleset"
	"fraudgate/internal/ruleset/store"
)

func testProfile() profile.CustomerProfile {
	return profile.CustomerProfile{
		FullName:        "John Doe",
		IPAddress:       "198.51.100.7",
		BillingEmail:    "john.doe@example.com",
		BillingPhone:    "+15550100",
		BillingAddress:  []string{"12 Elm St", "Springfield", "US"},
		ShippingAddress: []string{"99 Oak Ave", "Shelbyville", "US"},
	}
}

func newTestService(t *testing.T) (*Service, *ruleset.Service, *orders.MemoryStore, *audit.MemoryStore) {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	rulesetSvc := ruleset.NewService(store.NewMemoryStore(), logger)
	orderStore := orders.NewMemoryStore()
	blockedLog := audit.NewMemoryStore()
	svc := NewService(rulesetSvc, orderStore, audit.NewPublisher(blockedLog), logger)
	return svc, rulesetSvc, orderStore, blockedLog
}

func TestApply_AddWritesEnabledFields(t *testing.T) {
	svc, rulesetSvc, _, _ := newTestService(t)
	ctx := context.Background()
	flags := ruleset.RuleSet{AllowByName: true, AllowByAddress: true}

	require.NoError(t, svc.Apply(ctx, testProfile(), flags, ruleset.ActionAdd))

	rs, err := rulesetSvc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"John Doe"}, rs.Names)
	assert.Equal(t, []string{"198.51.100.7"}, rs.IPs)
	assert.Equal(t, []string{"+15550100"}, rs.Phones)
	assert.Equal(t, []string{"john.doe@example.com"}, rs.Emails)
	assert.Equal(t, []ruleset.AddressRule{
		"12 Elm St,Springfield,US",
		"99 Oak Ave,Shelbyville,US",
	}, rs.Addresses)
}

func TestApply_FlagsGateNameAndAddress(t *testing.T) {
	svc, rulesetSvc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Apply(ctx, testProfile(), ruleset.RuleSet{}, ruleset.ActionAdd))

	rs, err := rulesetSvc.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, rs.Names)
	assert.Empty(t, rs.Addresses)
	assert.Equal(t, []string{"198.51.100.7"}, rs.IPs)
}

func TestApply_RemoveDeletesEntries(t *testing.T) {
	svc, rulesetSvc, _, _ := newTestService(t)
	ctx := context.Background()
	flags := ruleset.RuleSet{AllowByAddress: true}

	require.NoError(t, svc.Apply(ctx, testProfile(), flags, ruleset.ActionAdd))
	require.NoError(t, svc.Apply(ctx, testProfile(), flags, ruleset.ActionRemove))

	rs, err := rulesetSvc.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, rs.IPs)
	assert.Empty(t, rs.Emails)
	assert.Empty(t, rs.Phones)
	assert.Empty(t, rs.Addresses)
}

func TestBlock_CancelsOrderAndLogs(t *testing.T) {
	svc, _, orderStore, blockedLog := newTestService(t)
	ctx := context.Background()

	err := svc.Block(ctx, "order-1", testProfile(), ruleset.RuleSet{}, "Max Fraud Attempts exceeded")
	require.NoError(t, err)

	o, err := orderStore.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.True(t, o.Cancelled)
	require.Len(t, o.Notes, 1)
	assert.Equal(t, "Order details blacklisted for future checkout.", o.Notes[0].Text)

	events, err := blockedLog.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Max Fraud Attempts exceeded", events[0].Reason)
	assert.Equal(t, "John Doe", events[0].FullName)
}

func TestRelease_NotesOrderWithoutCancelling(t *testing.T) {
	svc, _, orderStore, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Release(ctx, "order-1", testProfile(), ruleset.RuleSet{}))

	o, err := orderStore.Get(ctx, "order-1")
	require.NoError(t, err)
	assert.False(t, o.Cancelled)
	require.Len(t, o.Notes, 1)
	assert.Equal(t, "Order details removed from blacklist.", o.Notes[0].Text)
}

func TestCombinedAddressEntry(t *testing.T) {
	t.Run("billing only", func(t *testing.T) {
		p := profile.CustomerProfile{BillingAddress: []string{"12 Elm St", "US"}}
		assert.Equal(t, "12 Elm St,US", combinedAddressEntry(p))
	})

	t.Run("identical shipping collapses", func(t *testing.T) {
		p := profile.CustomerProfile{
			BillingAddress:  []string{"12 Elm St", "US"},
			ShippingAddress: []string{"12 Elm St", "US"},
		}
		assert.Equal(t, "12 Elm St,US", combinedAddressEntry(p))
	})

	t.Run("distinct shipping adds a line", func(t *testing.T) {
		p := profile.CustomerProfile{
			BillingAddress:  []string{"12 Elm St", "US"},
			ShippingAddress: []string{"99 Oak Ave", "US"},
		}
		assert.Equal(t, "12 Elm St,US\n99 Oak Ave,US", combinedAddressEntry(p))
	})
}
