// Package orders tracks per-order fraud state for the host commerce
// platform's orders: failure counters, operator bypass, cancellation and
// order notes.
package orders

import "time"

// LineItem is the slice of an order line the tracker cares about.
type LineItem struct {
	ProductID   string `json:"product_id"`
	ProductType string `json:"product_type"`
}

// Note is an operator-visible annotation attached to an order.
type Note struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Order is the fraud-side state held for one host order. The host platform
// owns the order itself; this record only carries what screening needs.
type Order struct {
	ID            string    `json:"id"`
	FraudAttempts int       `json:"fraud_attempts"`
	SkipBlacklist bool      `json:"skip_blacklist"`
	Cancelled     bool      `json:"cancelled"`
	Notes         []Note    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
