// Package blacklist mutates the configured ruleset from a customer profile:
// escalations push the customer's signals into the blacklist fields, operator
// removals pull them back out.
package blacklist

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"fraudgate/internal/audit"
	"fraudgate/internal/orders"
	"fraudgate/internal/platform/metrics"
	"fraudgate/internal/profile"
	"fraudgate/internal/ruleset"
)

// Order notes attached when blacklisting cancels or releases an order.
const (
	blacklistedOrderNote = "Order details blacklisted for future checkout."
	removedOrderNote     = "Order details removed from blacklist."
)

// Service applies blacklist mutations field by field through the ruleset
// service.
type Service struct {
	ruleset   *ruleset.Service
	orders    orders.Store
	publisher *audit.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithMetrics wires escalation counters into the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs a blacklist mutator.
func NewService(rs *ruleset.Service, orderStore orders.Store, publisher *audit.Publisher, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{ruleset: rs, orders: orderStore, publisher: publisher, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Apply adds or removes the profile's signals on the blacklist fields. The
// name field is only touched when name matching is enabled, the address field
// only when address matching is enabled; IP, phone and email always are.
// Individual field failures are collected rather than aborting the rest.
func (s *Service) Apply(ctx context.Context, p profile.CustomerProfile, rs ruleset.RuleSet, action ruleset.Action) error {
	var errs []error
	update := func(field ruleset.Field, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		if err := s.ruleset.UpdateList(ctx, field, []string{value}, action); err != nil {
			s.logger.Error("blacklist field update failed",
				"field", string(field),
				"action", string(action),
				"error", err,
			)
			errs = append(errs, err)
		}
	}

	if rs.AllowByName {
		update(ruleset.FieldNames, p.FullName)
	}
	update(ruleset.FieldIPs, p.IPAddress)
	update(ruleset.FieldPhones, p.BillingPhone)
	update(ruleset.FieldEmails, p.BillingEmail)
	if rs.AllowByAddress {
		update(ruleset.FieldAddresses, combinedAddressEntry(p))
	}

	return errors.Join(errs...)
}

// Block escalates: the profile's signals go onto the blacklist, a blocked-log
// entry is written, and the order is cancelled with an explanatory note. The
// log write never blocks the blacklist mutation.
func (s *Service) Block(ctx context.Context, orderID string, p profile.CustomerProfile, rs ruleset.RuleSet, reason string) error {
	if err := s.Apply(ctx, p, rs, ruleset.ActionAdd); err != nil {
		return err
	}

	if err := s.publisher.Emit(ctx, audit.NewEvent(p, reason)); err != nil {
		s.logger.Error("blocked log write failed", "error", err, "reason", reason)
	}

	if orderID != "" {
		if err := s.orders.MarkCancelled(ctx, orderID); err != nil {
			s.logger.Error("order cancellation failed", "order_id", orderID, "error", err)
		} else if s.metrics != nil {
			s.metrics.OrdersCancelled.Inc()
		}
		if err := s.orders.AddNote(ctx, orderID, blacklistedOrderNote); err != nil {
			s.logger.Error("order note failed", "order_id", orderID, "error", err)
		}
	}
	return nil
}

// Release removes the profile's signals from the blacklist and notes the
// order, without resurrecting its status.
func (s *Service) Release(ctx context.Context, orderID string, p profile.CustomerProfile, rs ruleset.RuleSet) error {
	if err := s.Apply(ctx, p, rs, ruleset.ActionRemove); err != nil {
		return err
	}
	if orderID != "" {
		if err := s.orders.AddNote(ctx, orderID, removedOrderNote); err != nil {
			s.logger.Error("order note failed", "order_id", orderID, "error", err)
		}
	}
	return nil
}

// combinedAddressEntry comma-joins billing parts, and when a distinct
// shipping address exists, appends it as a second line. Identical billing and
// shipping collapse to one line.
func combinedAddressEntry(p profile.CustomerProfile) string {
	billing := strings.Join(p.BillingAddress, ",")
	if !p.HasShipping() {
		return billing
	}
	shipping := strings.Join(p.ShippingAddress, ",")
	if shipping == billing {
		return billing
	}
	if billing == "" {
		return shipping
	}
	return billing + "\n" + shipping
}
