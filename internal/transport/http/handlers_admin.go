package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fraudgate/internal/attempts"
	"fraudgate/internal/platform/middleware"
	"fraudgate/internal/ruleset"
	"fraudgate/pkg/httputil"
)

// handleSetBypass sets the operator skip flag on an order so the tracker
// ignores its failures.
func (h *Handler) handleSetBypass(w http.ResponseWriter, r *http.Request) {
	h.setBypass(w, r, true)
}

func (h *Handler) handleClearBypass(w http.ResponseWriter, r *http.Request) {
	h.setBypass(w, r, false)
}

func (h *Handler) setBypass(w http.ResponseWriter, r *http.Request, skip bool) {
	orderID := chi.URLParam(r, "orderID")
	if err := h.services.Orders.SetSkipBlacklist(r.Context(), orderID, skip); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.Info("order bypass flag changed",
		"order_id", orderID,
		"skip", skip,
		"operator", middleware.GetOperator(r.Context()),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetRuleset(w http.ResponseWriter, r *http.Request) {
	rs, err := h.services.Ruleset.Get(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rs)
}

type rulesetUpdateRequest struct {
	Entries []string `json:"entries"`
	Action  string   `json:"action"`
	// Value sets non-list fields (flags, limit, blocked message).
	Value *string `json:"value,omitempty"`
}

// handleUpdateRuleset mutates one ruleset field: list fields take
// {entries, action}, scalar fields take {value}.
func (h *Handler) handleUpdateRuleset(w http.ResponseWriter, r *http.Request) {
	field := ruleset.Field(chi.URLParam(r, "field"))

	var req rulesetUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid_request", "error_description": "malformed JSON body",
		})
		return
	}

	var err error
	if ruleset.IsListField(field) {
		err = h.services.Ruleset.UpdateList(r.Context(), field, req.Entries, ruleset.Action(req.Action))
	} else if req.Value != nil {
		err = h.services.Ruleset.SetField(r.Context(), field, *req.Value)
	} else {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid_request", "error_description": "scalar fields require a value",
		})
		return
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.Info("ruleset updated",
		"field", string(field),
		"operator", middleware.GetOperator(r.Context()),
	)
	w.WriteHeader(http.StatusNoContent)
}

// handleListAttempts lists fraud attempt records, optionally filtered by
// exact ip/email/phone query parameters.
func (h *Handler) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	records, err := h.services.Attempts.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	query := attempts.MatchQuery{
		IPAddress:    r.URL.Query().Get("ip"),
		BillingEmail: r.URL.Query().Get("email"),
		BillingPhone: r.URL.Query().Get("phone"),
	}
	if !query.Empty() {
		filtered := records[:0]
		for _, rec := range records {
			if matchesQuery(rec, query) {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"attempts": records})
}

func matchesQuery(rec *attempts.FraudAttemptRecord, q attempts.MatchQuery) bool {
	if q.IPAddress != "" && rec.IPAddress == q.IPAddress {
		return true
	}
	if q.BillingEmail != "" && rec.BillingEmail == q.BillingEmail {
		return true
	}
	if q.BillingPhone != "" && rec.BillingPhone == q.BillingPhone {
		return true
	}
	return false
}

func (h *Handler) handleDeleteAttempt(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Attempts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleBlockedLog(w http.ResponseWriter, r *http.Request) {
	events, err := h.services.BlockedLog.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"blocked": events})
}
