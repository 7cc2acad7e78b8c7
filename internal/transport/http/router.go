// Package httptransport is the thin HTTP layer over the fraud screening
// services. Handlers decode, delegate and encode; business rules live in the
// domain packages.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fraudgate/internal/attempts"
	"fraudgate/internal/attempts/tracker"
	"fraudgate/internal/audit"
	"fraudgate/internal/checkout"
	"fraudgate/internal/orders"
	"fraudgate/internal/platform/health"
	"fraudgate/internal/platform/metrics"
	"fraudgate/internal/platform/middleware"
	"fraudgate/internal/ruleset"
)

// Services bundles everything the router serves.
type Services struct {
	Checkout   *checkout.Service
	Tracker    *tracker.Tracker
	Ruleset    *ruleset.Service
	Attempts   attempts.Store
	Orders     orders.Store
	BlockedLog *audit.Publisher
	Tokens     middleware.TokenValidator
	Health     *health.Handler
	Metrics    *metrics.Metrics
}

// Handler carries the shared handler state.
type Handler struct {
	services Services
	logger   *slog.Logger
}

// NewRouter wires all endpoints with the middleware stack. The checkout and
// payment-failure paths are host-platform server-to-server calls; admin
// endpoints require an operator bearer token.
func NewRouter(services Services, logger *slog.Logger) http.Handler {
	h := &Handler{services: services, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Latency(services.Metrics))

	if services.Health != nil {
		services.Health.Register(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Post("/checkout/evaluate", h.handleCheckoutEvaluate)
		r.Post("/orders/{orderID}/payment-failure", h.handlePaymentFailure)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireOperator(services.Tokens, logger))

		r.Put("/orders/{orderID}/bypass", h.handleSetBypass)
		r.Delete("/orders/{orderID}/bypass", h.handleClearBypass)

		r.Get("/ruleset", h.handleGetRuleset)
		r.Post("/ruleset/{field}", h.handleUpdateRuleset)

		r.Get("/attempts", h.handleListAttempts)
		r.Delete("/attempts/{id}", h.handleDeleteAttempt)

		r.Get("/blocked-log", h.handleBlockedLog)
	})

	return r
}
