package orders

import "context"

// Store persists per-order fraud state. Mutations create the state row
// lazily: the gateway first hears about most orders when their payment
// fails.
type Store interface {
	// Get returns the state for an order, or a not-found domain error.
	Get(ctx context.Context, orderID string) (*Order, error)

	// IncrementFraudAttempts durably adds one to the order's failure
	// counter and returns the value from before the increment.
	IncrementFraudAttempts(ctx context.Context, orderID string) (int, error)

	// SetSkipBlacklist flips the operator bypass flag.
	SetSkipBlacklist(ctx context.Context, orderID string, skip bool) error

	// MarkCancelled records that the order was cancelled by an escalation.
	MarkCancelled(ctx context.Context, orderID string) error

	// AddNote appends an operator-visible note to the order.
	AddNote(ctx context.Context, orderID string, text string) error
}
