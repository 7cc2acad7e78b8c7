// Package attempts records failed-order events so later failures can be
// cross-referenced by IP, email and phone.
package attempts

import (
	"time"

	"github.com/google/uuid"
)

// FraudAttemptRecord is one failed-order event with the customer signals
// captured at the time of failure.
type FraudAttemptRecord struct {
	ID              uuid.UUID `json:"id"`
	OrderID         string    `json:"order_id"`
	FullName        string    `json:"full_name"`
	IPAddress       string    `json:"ip_address"`
	BillingEmail    string    `json:"billing_email"`
	BillingPhone    string    `json:"billing_phone"`
	BillingAddress  string    `json:"billing_address"`
	ShippingAddress string    `json:"shipping_address"`
	PaymentMethod   string    `json:"payment_method"`
	UserAgent       string    `json:"user_agent"`
	CreatedAt       time.Time `json:"created_at"`
}

// MatchQuery selects records sharing any of the given signals. Empty fields
// do not participate in the match.
type MatchQuery struct {
	IPAddress    string
	BillingEmail string
	BillingPhone string
}

// Empty reports whether no signal participates at all.
func (q MatchQuery) Empty() bool {
	return q.IPAddress == "" && q.BillingEmail == "" && q.BillingPhone == ""
}
