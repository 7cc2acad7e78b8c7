// Package checkout evaluates incoming checkouts against the configured
// ruleset and decides whether the customer may place the order.
package checkout

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fraudgate/internal/audit"
	"fraudgate/internal/match"
	"fraudgate/internal/orders"
	"fraudgate/internal/platform/metrics"
	"fraudgate/internal/platform/privacy"
	"fraudgate/internal/profile"
	"fraudgate/internal/ruleset"
	xstrings "fraudgate/pkg/strings"
)

// Decision is the outcome of a checkout evaluation. Message carries the
// customer-facing rejection text when Allow is false.
type Decision struct {
	Allow   bool   `json:"allow"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
}

// Service runs checkout evaluations.
type Service struct {
	ruleset   *ruleset.Service
	engine    *match.Engine
	publisher *audit.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithMetrics wires evaluation counters into the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs a checkout evaluation service.
func NewService(rs *ruleset.Service, engine *match.Engine, publisher *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		ruleset:   rs,
		engine:    engine,
		publisher: publisher,
		logger:    logger,
		tracer:    otel.Tracer("fraudgate/checkout"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate decides whether a checkout may proceed. Whitelisted customers
// bypass everything; when product-type scoping is configured, carts without a
// scoped item pass untouched. A blacklist match writes a blocked-log entry
// and rejects with the configured message.
func (s *Service) Evaluate(ctx context.Context, raw profile.RawFields, items []orders.LineItem, identity match.Identity) (Decision, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Evaluate")
	defer span.End()

	rs, err := s.ruleset.Get(ctx)
	if err != nil {
		return Decision{}, err
	}

	p := profile.Normalize(raw)

	if match.IsWhitelisted(p, rs, identity) {
		s.logger.Info("checkout whitelisted",
			"email", privacy.MaskEmail(p.BillingEmail),
		)
		span.SetAttributes(attribute.String("checkout.outcome", "whitelisted"))
		if s.metrics != nil {
			s.metrics.WhitelistBypasses.Inc()
		}
		return s.allow(), nil
	}

	// Scoping only applies when the cart contents are known; an empty item
	// list is still evaluated.
	if rs.ScopedByProductType() && len(items) > 0 && !cartInScope(items, rs.ProductTypes) {
		span.SetAttributes(attribute.String("checkout.outcome", "out_of_scope"))
		return s.allow(), nil
	}

	result := s.engine.Evaluate(p, rs)
	if !result.Matched {
		span.SetAttributes(attribute.String("checkout.outcome", "allow"))
		return s.allow(), nil
	}

	s.logger.Info("checkout blocked",
		"reason", result.Reason,
		"email", privacy.MaskEmail(p.BillingEmail),
		"ip", privacy.AnonymizeIP(p.IPAddress),
	)
	span.SetAttributes(
		attribute.String("checkout.outcome", "reject"),
		attribute.String("checkout.reason", result.Reason),
	)
	if s.metrics != nil {
		s.metrics.CheckoutEvaluations.WithLabelValues("reject").Inc()
		s.metrics.BlacklistMatches.WithLabelValues(result.Reason).Inc()
	}

	// The blocked log is best-effort; a logging failure must not let the
	// order through or block the rejection.
	if err := s.publisher.Emit(ctx, audit.NewEvent(p, result.Reason)); err != nil {
		s.logger.Error("blocked log write failed", "error", err)
	}

	return Decision{Allow: false, Reason: result.Reason, Message: rs.BlockedMessage}, nil
}

func (s *Service) allow() Decision {
	if s.metrics != nil {
		s.metrics.CheckoutEvaluations.WithLabelValues("allow").Inc()
	}
	return Decision{Allow: true}
}

func cartInScope(items []orders.LineItem, types []string) bool {
	for _, item := range items {
		if xstrings.ContainsFold(types, item.ProductType) {
			return true
		}
	}
	return false
}
