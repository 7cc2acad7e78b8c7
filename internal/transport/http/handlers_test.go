package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudgate/internal/attempts"
	"fraudgate/internal/attempts/tracker"
	"fraudgate/internal/audit"
	"fraudgate/internal/blacklist"
	"fraudgate/internal/checkout"
	"fraudgate/internal/jwtoken"
	"fraudgate/internal/match"
	"fraudgate/internal/orders"
	"fraudgate/internal/ruleset"
	"fraudgate/internal/ruleset/store"
)

type env struct {
	server     *httptest.Server
	tokens     *jwtoken.Service
	rulesetSvc *ruleset.Service
	orders     *orders.MemoryStore
	attempts   *attempts.MemoryStore
}

func newEnv(t *testing.T, fields map[ruleset.Field]string) *env {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	rulesetSvc := ruleset.NewService(store.NewMemoryStoreWith(fields), logger)
	attemptStore := attempts.NewMemoryStore()
	orderStore := orders.NewMemoryStore()
	publisher := audit.NewPublisher(audit.NewMemoryStore())
	bl := blacklist.NewService(rulesetSvc, orderStore, publisher, logger)
	tokens := jwtoken.NewService("test-signing-key", time.Hour)

	router := NewRouter(Services{
		Checkout:   checkout.NewService(rulesetSvc, match.NewEngine(), publisher, logger),
		Tracker:    tracker.New(rulesetSvc, attemptStore, orderStore, bl, logger),
		Ruleset:    rulesetSvc,
		Attempts:   attemptStore,
		Orders:     orderStore,
		BlockedLog: publisher,
		Tokens:     tokens,
	}, logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &env{
		server:     server,
		tokens:     tokens,
		rulesetSvc: rulesetSvc,
		orders:     orderStore,
		attempts:   attemptStore,
	}
}

func (e *env) request(t *testing.T, method, path string, body any, token string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *env) operatorToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.GenerateOperatorToken("ops@example.com", "admin")
	require.NoError(t, err)
	return token
}

func checkoutBody() map[string]any {
	return map[string]any{
		"customer": map[string]string{
			"billing_first_name": "John",
			"billing_last_name":  "Doe",
			"ip_address":         "198.51.100.7",
			"billing_email":      "john.doe@example.com",
			"billing_phone":      "+15550100",
			"payment_method":     "stripe",
		},
	}
}

func TestCheckoutEvaluate(t *testing.T) {
	t.Run("clean customer", func(t *testing.T) {
		e := newEnv(t, nil)
		resp := e.request(t, http.MethodPost, "/checkout/evaluate", checkoutBody(), "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var decision checkout.Decision
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decision))
		assert.True(t, decision.Allow)
	})

	t.Run("blacklisted customer", func(t *testing.T) {
		e := newEnv(t, map[ruleset.Field]string{
			ruleset.FieldIPs: "198.51.100.7",
		})
		resp := e.request(t, http.MethodPost, "/checkout/evaluate", checkoutBody(), "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var decision checkout.Decision
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decision))
		assert.False(t, decision.Allow)
		assert.Equal(t, match.ReasonIPAddress, decision.Reason)
		assert.Equal(t, ruleset.DefaultBlockedMessage, decision.Message)
	})

	t.Run("malformed body", func(t *testing.T) {
		e := newEnv(t, nil)
		req, err := http.NewRequest(http.MethodPost, e.server.URL+"/checkout/evaluate", bytes.NewBufferString("{"))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestPaymentFailure(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.request(t, http.MethodPost, "/orders/order-1/payment-failure", checkoutBody(), "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	records, err := e.attempts.List(t.Context())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "order-1", records[0].OrderID)
}

func TestPaymentFailure_EscalationCancelsOrder(t *testing.T) {
	e := newEnv(t, map[ruleset.Field]string{
		ruleset.FieldFraudAttemptLimit: "1",
	})

	for i := 0; i < 2; i++ {
		resp := e.request(t, http.MethodPost, fmt.Sprintf("/orders/order-%d/payment-failure", i), checkoutBody(), "")
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	rs, err := e.rulesetSvc.Get(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"198.51.100.7"}, rs.IPs)

	o, err := e.orders.Get(t.Context(), "order-1")
	require.NoError(t, err)
	assert.True(t, o.Cancelled)
}

func TestBypassEndpointsRequireOperator(t *testing.T) {
	e := newEnv(t, nil)

	resp := e.request(t, http.MethodPut, "/orders/order-1/bypass", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := e.operatorToken(t)
	resp = e.request(t, http.MethodPut, "/orders/order-1/bypass", nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	o, err := e.orders.Get(t.Context(), "order-1")
	require.NoError(t, err)
	assert.True(t, o.SkipBlacklist)

	resp = e.request(t, http.MethodDelete, "/orders/order-1/bypass", nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	o, err = e.orders.Get(t.Context(), "order-1")
	require.NoError(t, err)
	assert.False(t, o.SkipBlacklist)
}

func TestRulesetEndpoints(t *testing.T) {
	e := newEnv(t, nil)
	token := e.operatorToken(t)

	resp := e.request(t, http.MethodPost, "/ruleset/blacklist_ips", map[string]any{
		"entries": []string{"10.0.0.1"},
		"action":  "add",
	}, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.request(t, http.MethodPost, "/ruleset/blocked_message", map[string]any{
		"value": "Contact support.",
	}, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.request(t, http.MethodGet, "/ruleset", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var rs ruleset.RuleSet
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rs))
	assert.Equal(t, []string{"10.0.0.1"}, rs.IPs)
	assert.Equal(t, "Contact support.", rs.BlockedMessage)

	t.Run("unknown action rejected", func(t *testing.T) {
		resp := e.request(t, http.MethodPost, "/ruleset/blacklist_ips", map[string]any{
			"entries": []string{"10.0.0.2"},
			"action":  "merge",
		}, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAttemptEndpoints(t *testing.T) {
	e := newEnv(t, nil)
	token := e.operatorToken(t)

	resp := e.request(t, http.MethodPost, "/orders/order-1/payment-failure", checkoutBody(), "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.request(t, http.MethodGet, "/attempts?ip=198.51.100.7", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Attempts []*attempts.FraudAttemptRecord `json:"attempts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Len(t, listing.Attempts, 1)

	resp = e.request(t, http.MethodDelete, "/attempts/"+listing.Attempts[0].ID.String(), nil, token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = e.request(t, http.MethodDelete, "/attempts/"+listing.Attempts[0].ID.String(), nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBlockedLogEndpoint(t *testing.T) {
	e := newEnv(t, map[ruleset.Field]string{
		ruleset.FieldIPs: "198.51.100.7",
	})
	token := e.operatorToken(t)

	resp := e.request(t, http.MethodPost, "/checkout/evaluate", checkoutBody(), "")
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = e.request(t, http.MethodGet, "/blocked-log", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listing struct {
		Blocked []audit.Event `json:"blocked"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	require.Len(t, listing.Blocked, 1)
	assert.Equal(t, match.ReasonIPAddress, listing.Blocked[0].Reason)
}
