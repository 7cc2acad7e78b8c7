// Package ruleset models the configured blacklist/whitelist rules and the
// global toggles that drive the match engine and attempt tracker.
package ruleset

import (
	"strconv"
	"strings"
)

// DefaultBlockedMessage is shown to rejected customers when the store has not
// configured its own message.
const DefaultBlockedMessage = "Sorry, You are being restricted from placing orders."

// DefaultFraudAttemptLimit applies when the store carries no explicit limit.
const DefaultFraudAttemptLimit = 5

// Field identifies one persisted ruleset entry. List fields are stored as
// newline-joined text for compatibility with the historical settings format;
// flags are stored as "yes"/"no".
type Field string

const (
	FieldNames        Field = "blacklist_names"
	FieldIPs          Field = "blacklist_ips"
	FieldEmails       Field = "blacklist_emails"
	FieldEmailDomains Field = "blacklist_email_domains"
	FieldPhones       Field = "blacklist_phones"
	FieldAddresses    Field = "blacklist_addresses"

	FieldWhitelistCustomers Field = "whitelist_customers"
	FieldWhitelistGateways  Field = "whitelist_payment_gateways"
	FieldProductTypes       Field = "blacklisted_product_types"

	FieldAllowByName        Field = "allow_blacklist_by_name"
	FieldAllowByAddress     Field = "allow_blacklist_by_address"
	FieldAllowEmailWildcard Field = "allow_blacklist_by_email_wildcard"
	FieldFraudAttemptLimit  Field = "fraud_attempt_limit"
	FieldBlockedMessage     Field = "blocked_message"
)

// listFields enumerates every newline-joined list field.
var listFields = map[Field]bool{
	FieldNames:              true,
	FieldIPs:                true,
	FieldEmails:             true,
	FieldEmailDomains:       true,
	FieldPhones:             true,
	FieldAddresses:          true,
	FieldWhitelistCustomers: true,
	FieldWhitelistGateways:  true,
	FieldProductTypes:       true,
}

// IsListField reports whether f is a newline-joined list field.
func IsListField(f Field) bool {
	return listFields[f]
}

// AddressRule is one line of the address blacklist: either a single wildcard
// token (%text%) or a comma-separated sequence of address-part matchers.
type AddressRule string

// Parts splits the rule on commas, preserving order. Parts are not trimmed
// here; the match engine folds them together with country mapping.
func (r AddressRule) Parts() []string {
	return strings.Split(string(r), ",")
}

// IsWildcard reports whether the rule is a single %text% token.
func (r AddressRule) IsWildcard() bool {
	parts := r.Parts()
	if len(parts) != 1 {
		return false
	}
	token := strings.TrimSpace(parts[0])
	return len(token) >= 2 && strings.HasPrefix(token, "%") && strings.HasSuffix(token, "%")
}

// WildcardText unwraps the %text% token, trimmed. Empty for non-wildcards.
func (r AddressRule) WildcardText() string {
	if !r.IsWildcard() {
		return ""
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(string(r)), "%"))
}

// RuleSet is the assembled, typed view of all persisted fields.
type RuleSet struct {
	Names        []string      `json:"names,omitempty"`
	IPs          []string      `json:"ips,omitempty"`
	Emails       []string      `json:"emails,omitempty"`
	EmailDomains []string      `json:"email_domains,omitempty"`
	Phones       []string      `json:"phones,omitempty"`
	Addresses    []AddressRule `json:"addresses,omitempty"`

	WhitelistCustomers []string `json:"whitelist_customers,omitempty"`
	WhitelistGateways  []string `json:"whitelist_payment_gateways,omitempty"`
	ProductTypes       []string `json:"blacklisted_product_types,omitempty"`

	AllowByName        bool `json:"allow_blacklist_by_name"`
	AllowByAddress     bool `json:"allow_blacklist_by_address"`
	AllowEmailWildcard bool `json:"allow_blacklist_by_email_wildcard"`

	FraudAttemptLimit int    `json:"fraud_attempt_limit"`
	BlockedMessage    string `json:"blocked_message"`
}

// ScopedByProductType reports whether blacklist logic only applies to orders
// containing one of the configured product types.
func (r RuleSet) ScopedByProductType() bool {
	return len(r.ProductTypes) > 0
}

// SplitList parses a newline-joined list value into entries, trimming each
// and dropping empties.
func SplitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// FromFields assembles a RuleSet from raw persisted field values, applying
// defaults for anything unset. Blacklist-by-address historically defaults on,
// name and email-wildcard matching default off.
func FromFields(fields map[Field]string) RuleSet {
	rs := RuleSet{
		Names:              SplitList(fields[FieldNames]),
		IPs:                SplitList(fields[FieldIPs]),
		Emails:             SplitList(fields[FieldEmails]),
		EmailDomains:       SplitList(fields[FieldEmailDomains]),
		Phones:             SplitList(fields[FieldPhones]),
		WhitelistCustomers: SplitList(fields[FieldWhitelistCustomers]),
		WhitelistGateways:  SplitList(fields[FieldWhitelistGateways]),
		ProductTypes:       SplitList(fields[FieldProductTypes]),
		AllowByName:        parseFlag(fields[FieldAllowByName], false),
		AllowByAddress:     parseFlag(fields[FieldAllowByAddress], true),
		AllowEmailWildcard: parseFlag(fields[FieldAllowEmailWildcard], false),
		FraudAttemptLimit:  parseLimit(fields[FieldFraudAttemptLimit]),
		BlockedMessage:     fields[FieldBlockedMessage],
	}

	for _, line := range SplitList(fields[FieldAddresses]) {
		rs.Addresses = append(rs.Addresses, AddressRule(line))
	}

	if rs.BlockedMessage == "" {
		rs.BlockedMessage = DefaultBlockedMessage
	}
	return rs
}

func parseFlag(raw string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true", "1":
		return true
	case "no", "false", "0":
		return false
	default:
		return fallback
	}
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return DefaultFraudAttemptLimit
	}
	return n
}
