package ruleset

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fraudgate/internal/platform/metrics"
	dErrors "fraudgate/pkg/domain-errors"
)

// Action selects how UpdateList mutates a list field.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// Store is the persistence surface the service needs. Implementations live
// under ruleset/store.
type Store interface {
	Get(ctx context.Context, field Field) (string, error)
	GetAll(ctx context.Context) (map[Field]string, error)
	Set(ctx context.Context, field Field, value string) error
}

// Service exposes typed reads and list mutations over the ruleset store.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithMetrics wires cache and write counters into the service.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs a ruleset service.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get assembles the full typed ruleset.
func (s *Service) Get(ctx context.Context) (RuleSet, error) {
	fields, err := s.store.GetAll(ctx)
	if err != nil {
		return RuleSet{}, dErrors.Wrap(err, dErrors.CodeInternal, "load ruleset")
	}
	return FromFields(fields), nil
}

// Fields returns the raw persisted field values, for the admin read endpoint.
func (s *Service) Fields(ctx context.Context) (map[Field]string, error) {
	fields, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load ruleset fields")
	}
	return fields, nil
}

// SetField overwrites a non-list field (flags, limit, blocked message).
func (s *Service) SetField(ctx context.Context, field Field, value string) error {
	if IsListField(field) {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("field %s is list-valued, use a list mutation", field))
	}
	if err := s.store.Set(ctx, field, strings.TrimSpace(value)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist ruleset field")
	}
	s.recordWrite(field, "set")
	return nil
}

// UpdateList adds or removes entries on a list field.
//
// Incoming entries are split on line boundaries first, so a textarea payload
// may arrive as a single multi-line value. Adds append entries not already
// present, preserving existing order; removes delete exact matches. The write
// is skipped entirely when the mutation changes nothing, which makes repeated
// identical calls idempotent and cheap.
func (s *Service) UpdateList(ctx context.Context, field Field, entries []string, action Action) error {
	if !IsListField(field) {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("field %s is not list-valued", field))
	}
	if action != ActionAdd && action != ActionRemove {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown list action %q", action))
	}

	raw, err := s.store.Get(ctx, field)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "load ruleset field")
	}
	current := SplitList(raw)

	cleaned := cleanEntries(entries)
	var next []string
	switch action {
	case ActionAdd:
		next = appendMissing(current, cleaned)
	case ActionRemove:
		next = removeExact(current, cleaned)
	}

	updated := strings.Join(next, "\n")
	if updated == strings.Join(current, "\n") {
		return nil
	}

	if err := s.store.Set(ctx, field, updated); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist ruleset field")
	}

	s.logger.Info("ruleset list updated",
		"field", string(field),
		"action", string(action),
		"entries", len(cleaned),
	)
	s.recordWrite(field, string(action))
	return nil
}

func (s *Service) recordWrite(field Field, action string) {
	if s.metrics != nil {
		s.metrics.RulesetWrites.WithLabelValues(string(field), action).Inc()
	}
}

func cleanEntries(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, SplitList(strings.ReplaceAll(e, "\r", ""))...)
	}
	return out
}

func appendMissing(current, additions []string) []string {
	next := make([]string, len(current))
	copy(next, current)
	for _, a := range additions {
		if !contains(next, a) {
			next = append(next, a)
		}
	}
	return next
}

// removeExact deletes one occurrence per removal entry, first hit wins.
// Adds never introduce duplicates, but lists edited out of band may carry
// them and those survive a single remove.
func removeExact(current, removals []string) []string {
	next := make([]string, len(current))
	copy(next, current)
	for _, r := range removals {
		for i, c := range next {
			if c == r {
				next = append(next[:i], next[i+1:]...)
				break
			}
		}
	}
	return next
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
