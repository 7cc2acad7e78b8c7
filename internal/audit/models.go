// Package audit keeps the blocked-customer log: one row per blacklist
// escalation or rejection, with the customer's signals captured at the time.
package audit

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"fraudgate/internal/profile"
)

// Placeholder fills signal columns the customer never supplied, matching the
// historical log format.
const Placeholder = "N/A"

// Event is one blocked-customer log entry.
type Event struct {
	ID              uuid.UUID `json:"id"`
	FullName        string    `json:"full_name"`
	BillingPhone    string    `json:"billing_phone"`
	IPAddress       string    `json:"ip_address"`
	BillingEmail    string    `json:"billing_email"`
	BillingAddress  string    `json:"billing_address"`
	ShippingAddress string    `json:"shipping_address"`
	Reason          string    `json:"blacklisted_reason"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewEvent builds an event from a customer profile, substituting the
// placeholder for missing name/phone/ip/email. Absent addresses stay empty,
// matching the historical log shape.
func NewEvent(p profile.CustomerProfile, reason string) Event {
	return Event{
		ID:              uuid.New(),
		FullName:        orPlaceholder(p.FullName),
		BillingPhone:    orPlaceholder(p.BillingPhone),
		IPAddress:       orPlaceholder(p.IPAddress),
		BillingEmail:    orPlaceholder(p.BillingEmail),
		BillingAddress:  joinParts(p.BillingAddress),
		ShippingAddress: joinParts(p.ShippingAddress),
		Reason:          reason,
		Timestamp:       time.Now(),
	}
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func joinParts(parts []string) string {
	return strings.Join(parts, ", ")
}
