// Package tracker handles failed-order events: it records fraud attempts,
// drives the per-order failure counter and escalates to the blacklist when
// either threshold trips.
package tracker

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fraudgate/internal/attempts"
	"fraudgate/internal/blacklist"
	"fraudgate/internal/match"
	"fraudgate/internal/orders"
	"fraudgate/internal/platform/metrics"
	"fraudgate/internal/profile"
	"fraudgate/internal/ruleset"
	xstrings "fraudgate/pkg/strings"
)

// FailureEvent is one payment failure reported by the host platform.
type FailureEvent struct {
	OrderID   string
	Raw       profile.RawFields
	Items     []orders.LineItem
	UserAgent string
}

// Result reports what the tracker did with a failure event.
type Result struct {
	Recorded  bool
	Escalated bool
	// Message is the customer-facing rejection text, set when escalated.
	Message string
}

// Tracker coordinates attempt recording and threshold escalation.
type Tracker struct {
	ruleset   *ruleset.Service
	attempts  attempts.Store
	orders    orders.Store
	blacklist *blacklist.Service
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	// requiredFields mirrors the host checkout configuration; only required
	// email/phone fields participate in cross-order matching.
	requiredFields []string
}

// Option configures optional tracker dependencies.
type Option func(*Tracker)

// WithMetrics wires attempt and escalation counters into the tracker.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithRequiredFields overrides which checkout fields participate in
// cross-order matching.
func WithRequiredFields(fields []string) Option {
	return func(t *Tracker) { t.requiredFields = fields }
}

// New constructs a tracker.
func New(rs *ruleset.Service, attemptStore attempts.Store, orderStore orders.Store, bl *blacklist.Service, logger *slog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		ruleset:        rs,
		attempts:       attemptStore,
		orders:         orderStore,
		blacklist:      bl,
		logger:         logger,
		tracer:         otel.Tracer("fraudgate/attempts"),
		requiredFields: []string{"billing_email", "billing_phone"},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// HandleFailure processes one failed-order event.
//
// The operator bypass flag is checked first and short-circuits everything.
// When product-type scoping is configured, events whose items all fall
// outside the configured types are ignored entirely. Otherwise the attempt
// is recorded, the order counter incremented, and both thresholds checked:
// the order-local counter (its value before the increment) and the
// cross-order record count sharing the customer's IP, email or phone.
func (t *Tracker) HandleFailure(ctx context.Context, event FailureEvent) (Result, error) {
	ctx, span := t.tracer.Start(ctx, "tracker.HandleFailure",
		trace.WithAttributes(attribute.String("order.id", event.OrderID)))
	defer span.End()

	if t.skipRequested(ctx, event.OrderID) {
		t.logger.Info("skipping fraud tracking, operator bypass set", "order_id", event.OrderID)
		return Result{}, nil
	}

	rs, err := t.ruleset.Get(ctx)
	if err != nil {
		return Result{}, err
	}

	if rs.ScopedByProductType() && !itemsInScope(event.Items, rs.ProductTypes) {
		t.logger.Debug("ignoring failure outside configured product types", "order_id", event.OrderID)
		return Result{}, nil
	}

	p := profile.Normalize(event.Raw)

	record := &attempts.FraudAttemptRecord{
		ID:              uuid.New(),
		OrderID:         event.OrderID,
		FullName:        p.FullName,
		IPAddress:       p.IPAddress,
		BillingEmail:    p.BillingEmail,
		BillingPhone:    p.BillingPhone,
		BillingAddress:  strings.Join(p.BillingAddress, ", "),
		ShippingAddress: strings.Join(p.ShippingAddress, ", "),
		PaymentMethod:   p.PaymentMethod,
		UserAgent:       event.UserAgent,
		CreatedAt:       time.Now(),
	}
	if err := t.attempts.Append(ctx, record); err != nil {
		// Fail open: a missed record must not break payment handling.
		t.logger.Error("fraud attempt record write failed", "order_id", event.OrderID, "error", err)
	} else if t.metrics != nil {
		t.metrics.FraudAttemptsRecorded.Inc()
	}

	pre, err := t.orders.IncrementFraudAttempts(ctx, event.OrderID)
	if err != nil {
		return Result{Recorded: true}, err
	}

	if pre > rs.FraudAttemptLimit {
		span.SetAttributes(attribute.String("escalation.threshold", "order"))
		return t.escalate(ctx, event.OrderID, p, rs, "order")
	}

	count, err := t.attempts.CountMatching(ctx, t.matchQuery(p))
	if err != nil {
		t.logger.Error("cross-order attempt count failed", "order_id", event.OrderID, "error", err)
		return Result{Recorded: true}, nil
	}
	if count > rs.FraudAttemptLimit {
		span.SetAttributes(attribute.String("escalation.threshold", "cross_order"))
		return t.escalate(ctx, event.OrderID, p, rs, "cross_order")
	}

	return Result{Recorded: true}, nil
}

func (t *Tracker) escalate(ctx context.Context, orderID string, p profile.CustomerProfile, rs ruleset.RuleSet, threshold string) (Result, error) {
	t.logger.Info("fraud attempt limit exceeded, blacklisting customer",
		"order_id", orderID,
		"threshold", threshold,
	)
	if t.metrics != nil {
		t.metrics.Escalations.WithLabelValues(threshold).Inc()
	}
	if err := t.blacklist.Block(ctx, orderID, p, rs, match.ReasonMaxFraudAttempt); err != nil {
		t.logger.Error("blacklist escalation failed", "order_id", orderID, "error", err)
	}
	return Result{Recorded: true, Escalated: true, Message: rs.BlockedMessage}, nil
}

func (t *Tracker) skipRequested(ctx context.Context, orderID string) bool {
	o, err := t.orders.Get(ctx, orderID)
	if err != nil {
		// Unknown orders have no state yet and cannot carry the flag.
		return false
	}
	return o.SkipBlacklist
}

func (t *Tracker) matchQuery(p profile.CustomerProfile) attempts.MatchQuery {
	q := attempts.MatchQuery{IPAddress: p.IPAddress}
	if xstrings.ContainsFold(t.requiredFields, "billing_email") {
		q.BillingEmail = p.BillingEmail
	}
	if xstrings.ContainsFold(t.requiredFields, "billing_phone") {
		q.BillingPhone = p.BillingPhone
	}
	return q
}

func itemsInScope(items []orders.LineItem, types []string) bool {
	for _, item := range items {
		if xstrings.ContainsFold(types, item.ProductType) {
			return true
		}
	}
	return false
}
