package ruleset_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudgate/internal/ruleset"
	"fraudgate/internal/ruleset/store"
)

// countingStore wraps the memory store so tests can assert whether a
// mutation actually persisted.
type countingStore struct {
	*store.MemoryStore
	sets int
}

func (s *countingStore) Set(ctx context.Context, field ruleset.Field, value string) error {
	s.sets++
	return s.MemoryStore.Set(ctx, field, value)
}

func newTestService(t *testing.T) (*ruleset.Service, *countingStore) {
	t.Helper()
	cs := &countingStore{MemoryStore: store.NewMemoryStore()}
	logger := slog.New(slog.DiscardHandler)
	return ruleset.NewService(cs, logger), cs
}

func TestService_UpdateList_AddSplitsLines(t *testing.T) {
	svc, cs := newTestService(t)
	ctx := context.Background()

	err := svc.UpdateList(ctx, ruleset.FieldEmails, []string{"a\nb"}, ruleset.ActionAdd)
	require.NoError(t, err)

	raw, err := cs.Get(ctx, ruleset.FieldEmails)
	require.NoError(t, err)
	assert.Equal(t, "a\nb", raw)

	// Same input again is a no-op and must not rewrite the store.
	before := cs.sets
	err = svc.UpdateList(ctx, ruleset.FieldEmails, []string{"a\nb"}, ruleset.ActionAdd)
	require.NoError(t, err)
	assert.Equal(t, before, cs.sets)

	raw, _ = cs.Get(ctx, ruleset.FieldEmails)
	assert.Equal(t, "a\nb", raw)
}

func TestService_UpdateList_AddPreservesOrder(t *testing.T) {
	svc, cs := newTestService(t)
	ctx := context.Background()
	require.NoError(t, cs.MemoryStore.Set(ctx, ruleset.FieldIPs, "10.0.0.1\n10.0.0.2"))

	err := svc.UpdateList(ctx, ruleset.FieldIPs, []string{"10.0.0.2", "10.0.0.3"}, ruleset.ActionAdd)
	require.NoError(t, err)

	raw, _ := cs.Get(ctx, ruleset.FieldIPs)
	assert.Equal(t, "10.0.0.1\n10.0.0.2\n10.0.0.3", raw)
}

func TestService_UpdateList_RemoveExactMatches(t *testing.T) {
	svc, cs := newTestService(t)
	ctx := context.Background()
	require.NoError(t, cs.MemoryStore.Set(ctx, ruleset.FieldPhones, "111\n222\n333"))

	err := svc.UpdateList(ctx, ruleset.FieldPhones, []string{"222"}, ruleset.ActionRemove)
	require.NoError(t, err)

	raw, _ := cs.Get(ctx, ruleset.FieldPhones)
	assert.Equal(t, "111\n333", raw)

	// Removing something absent changes nothing and skips the write.
	before := cs.sets
	err = svc.UpdateList(ctx, ruleset.FieldPhones, []string{"999"}, ruleset.ActionRemove)
	require.NoError(t, err)
	assert.Equal(t, before, cs.sets)
}

func TestService_UpdateList_RemoveDeletesOneOccurrence(t *testing.T) {
	svc, cs := newTestService(t)
	ctx := context.Background()

	// Duplicates never come from Add, but lists edited out of band may
	// carry them; a single remove takes out the first hit only.
	require.NoError(t, cs.MemoryStore.Set(ctx, ruleset.FieldEmails, "a@x.com\nb@x.com\na@x.com"))

	err := svc.UpdateList(ctx, ruleset.FieldEmails, []string{"a@x.com"}, ruleset.ActionRemove)
	require.NoError(t, err)

	raw, _ := cs.Get(ctx, ruleset.FieldEmails)
	assert.Equal(t, "b@x.com\na@x.com", raw)
}

func TestService_UpdateList_AddressKeepsLineStructure(t *testing.T) {
	svc, cs := newTestService(t)
	ctx := context.Background()

	err := svc.UpdateList(ctx, ruleset.FieldAddresses,
		[]string{"12 Elm St, Springfield, US\n%elm%"}, ruleset.ActionAdd)
	require.NoError(t, err)

	raw, _ := cs.Get(ctx, ruleset.FieldAddresses)
	assert.Equal(t, "12 Elm St, Springfield, US\n%elm%", raw)
}

func TestService_UpdateList_RejectsNonListField(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.UpdateList(context.Background(), ruleset.FieldBlockedMessage, []string{"x"}, ruleset.ActionAdd)
	assert.Error(t, err)
}

func TestService_UpdateList_RejectsUnknownAction(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.UpdateList(context.Background(), ruleset.FieldIPs, []string{"10.0.0.1"}, ruleset.Action("merge"))
	assert.Error(t, err)
}

func TestService_SetField(t *testing.T) {
	svc, cs := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetField(ctx, ruleset.FieldAllowByName, "yes"))
	require.NoError(t, svc.SetField(ctx, ruleset.FieldFraudAttemptLimit, "7"))

	err := svc.SetField(ctx, ruleset.FieldIPs, "10.0.0.1")
	assert.Error(t, err, "list fields must go through UpdateList")

	rs, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, rs.AllowByName)
	assert.Equal(t, 7, rs.FraudAttemptLimit)
	_ = cs
}

func TestService_Get_AssemblesTypedRuleSet(t *testing.T) {
	svc, cs := newTestService(t)
	ctx := context.Background()
	require.NoError(t, cs.MemoryStore.Set(ctx, ruleset.FieldEmails, "fraud@example.com"))

	rs, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fraud@example.com"}, rs.Emails)
	assert.Equal(t, ruleset.DefaultBlockedMessage, rs.BlockedMessage)
}
