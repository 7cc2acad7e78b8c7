package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fraudgate/internal/attempts/tracker"
	"fraudgate/internal/match"
	"fraudgate/internal/orders"
	"fraudgate/internal/profile"
	"fraudgate/pkg/httputil"
)

type identityPayload struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
}

type checkoutEvaluateRequest struct {
	Customer map[string]string `json:"customer"`
	Items    []orders.LineItem `json:"items,omitempty"`
	Identity *identityPayload  `json:"identity,omitempty"`
}

// handleCheckoutEvaluate runs the blacklist evaluation for a checkout.
// Allowed checkouts answer 200, blocked ones 403 with the configured
// customer-facing message.
func (h *Handler) handleCheckoutEvaluate(w http.ResponseWriter, r *http.Request) {
	var req checkoutEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid_request", "error_description": "malformed JSON body",
		})
		return
	}

	raw := profile.RawFields(req.Customer)
	if raw == nil {
		raw = profile.RawFields{}
	}
	if raw.Get("ip_address") == "" {
		raw["ip_address"] = clientIP(r)
	}

	var identity match.Identity
	if req.Identity != nil {
		identity = match.Identity{ID: req.Identity.ID, Email: req.Identity.Email}
	}

	decision, err := h.services.Checkout.Evaluate(r.Context(), raw, req.Items, identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	status := http.StatusOK
	if !decision.Allow {
		status = http.StatusForbidden
	}
	httputil.WriteJSON(w, status, decision)
}

type paymentFailureRequest struct {
	Customer map[string]string `json:"customer"`
	Items    []orders.LineItem `json:"items,omitempty"`
}

// handlePaymentFailure records a failed-order event. The response is 204
// whether or not the event escalated; the host platform observes escalations
// through the order state.
func (h *Handler) handlePaymentFailure(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var req paymentFailureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid_request", "error_description": "malformed JSON body",
		})
		return
	}

	raw := profile.RawFields(req.Customer)
	if raw == nil {
		raw = profile.RawFields{}
	}
	if raw.Get("ip_address") == "" {
		raw["ip_address"] = clientIP(r)
	}

	event := tracker.FailureEvent{
		OrderID:   orderID,
		Raw:       raw,
		Items:     req.Items,
		UserAgent: summarizeUserAgent(r.UserAgent()),
	}
	if _, err := h.services.Tracker.HandleFailure(r.Context(), event); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
