// Package profile normalizes raw checkout or order payloads into the
// canonical customer profile evaluated by the match engine.
package profile

import "strings"

// RawFields is the untyped field mapping posted by the host checkout. Any key
// may be absent; absent keys normalize to empty strings.
type RawFields map[string]string

// Get returns the trimmed value for key, or "" when the key is absent.
func (r RawFields) Get(key string) string {
	return strings.TrimSpace(r[key])
}

// CustomerProfile is the canonical, trimmed view of one customer/order.
// All comparisons downstream are case-insensitive; the profile itself keeps
// the original casing for audit output.
type CustomerProfile struct {
	FullName        string
	IPAddress       string
	BillingEmail    string
	BillingPhone    string
	BillingAddress  []string
	ShippingAddress []string
	PaymentMethod   string
}

// HasShipping reports whether a distinct shipping address was collected.
func (p CustomerProfile) HasShipping() bool {
	return len(p.ShippingAddress) > 0
}

// billingPartKeys is the fixed collection order for billing address parts.
var billingPartKeys = []string{
	"billing_address_1",
	"billing_address_2",
	"billing_city",
	"billing_state",
	"billing_postcode",
	"billing_country",
}

var shippingPartKeys = []string{
	"shipping_address_1",
	"shipping_address_2",
	"shipping_city",
	"shipping_state",
	"shipping_postcode",
	"shipping_country",
}

// Normalize builds a CustomerProfile from raw checkout fields.
//
// The full name is always first + " " + last, even when both are empty; the
// stored blacklists contain entries in that historical shape. Address parts
// are collected in fixed order with empties removed, and the shipping list is
// dropped entirely when it has no parts. Country values pass through raw;
// code mapping happens inside the match engine, which owns the country list.
func Normalize(raw RawFields) CustomerProfile {
	p := CustomerProfile{
		FullName:      raw.Get("billing_first_name") + " " + raw.Get("billing_last_name"),
		IPAddress:     raw.Get("ip_address"),
		BillingEmail:  raw.Get("billing_email"),
		BillingPhone:  raw.Get("billing_phone"),
		PaymentMethod: raw.Get("payment_method"),
	}

	p.BillingAddress = collectParts(raw, billingPartKeys)
	p.ShippingAddress = collectParts(raw, shippingPartKeys)

	return p
}

func collectParts(raw RawFields, keys []string) []string {
	var parts []string
	for _, key := range keys {
		if v := raw.Get(key); v != "" {
			parts = append(parts, v)
		}
	}
	return parts
}
