// Package match evaluates a normalized customer profile against the
// configured ruleset and reports the first matching blacklist signal.
package match

import (
	"strings"

	"fraudgate/internal/countries"
	"fraudgate/internal/profile"
	"fraudgate/internal/ruleset"
	xstrings "fraudgate/pkg/strings"
)

// Match reasons, recorded in audit entries and surfaced on rejections.
const (
	ReasonFullName        = "Full Name"
	ReasonIPAddress       = "IP Address"
	ReasonBillingEmail    = "Billing Email"
	ReasonEmailDomain     = "Email Domain"
	ReasonBillingPhone    = "Billing Phone"
	ReasonEmailWildcard   = "Billing Email Wildcard match"
	ReasonAddress         = "Billing/Shipping Address"
	ReasonMaxFraudAttempt = "Max Fraud Attempts exceeded"
)

// Result is the outcome of a blacklist evaluation. Reason is set only when
// Matched is true and names the first signal that hit, in check order.
type Result struct {
	Matched bool
	Reason  string
}

func matched(reason string) Result {
	return Result{Matched: true, Reason: reason}
}

// Engine evaluates profiles against a ruleset. It is stateless; the ruleset
// is passed per call so cached reads stay in the caller's control.
type Engine struct{}

// NewEngine constructs a match engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs every enabled blacklist check in a fixed order and returns
// the first match. Name and address checks only run when their flags are on;
// IP, email, email-domain and phone checks always run.
func (e *Engine) Evaluate(p profile.CustomerProfile, rs ruleset.RuleSet) Result {
	if rs.AllowByName && matchesName(p.FullName, rs.Names) {
		return matched(ReasonFullName)
	}
	if matchesFold(p.IPAddress, rs.IPs) {
		return matched(ReasonIPAddress)
	}
	if matchesFold(p.BillingEmail, rs.Emails) {
		return matched(ReasonBillingEmail)
	}
	if matchesEmailDomain(p.BillingEmail, rs.EmailDomains) {
		return matched(ReasonEmailDomain)
	}
	if matchesPhone(p.BillingPhone, rs.Phones) {
		return matched(ReasonBillingPhone)
	}
	if rs.AllowEmailWildcard && matchesEmailWildcard(p.BillingEmail, rs.Emails) {
		return matched(ReasonEmailWildcard)
	}
	if rs.AllowByAddress && matchesAddress(p, rs.Addresses) {
		return matched(ReasonAddress)
	}
	return Result{}
}

func matchesName(fullName string, names []string) bool {
	return fullName != "" && xstrings.ContainsFold(names, fullName)
}

// matchesFold is the exact, case-insensitive list lookup used for IPs and
// emails; IPv6 hex digits may arrive in either case.
func matchesFold(value string, entries []string) bool {
	return value != "" && xstrings.ContainsFold(entries, value)
}

// matchesEmailDomain compares the part after the first "@". Emails with no
// "@" have no domain and never match.
func matchesEmailDomain(email string, domains []string) bool {
	at := strings.Index(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	return domain != "" && xstrings.ContainsFold(domains, domain)
}

// matchesPhone strips spaces from both sides before comparing, so saved
// entries with formatting still hit.
func matchesPhone(phone string, entries []string) bool {
	canonical := canonicalPhone(phone)
	if canonical == "" {
		return false
	}
	for _, e := range entries {
		if canonicalPhone(e) == canonical {
			return true
		}
	}
	return false
}

func canonicalPhone(phone string) string {
	return strings.ToLower(strings.ReplaceAll(phone, " ", ""))
}

// matchesEmailWildcard treats every blacklisted email entry as a substring
// pattern against the customer email.
func matchesEmailWildcard(email string, entries []string) bool {
	if email == "" {
		return false
	}
	lower := strings.ToLower(email)
	for _, e := range entries {
		if e == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(e)) {
			return true
		}
	}
	return false
}

// matchesAddress evaluates each address rule against billing and shipping
// parts. A rule is either a single %text% wildcard or a comma-separated
// subset matcher; the two forms are exclusive per rule.
func matchesAddress(p profile.CustomerProfile, rules []ruleset.AddressRule) bool {
	billing := normalizeParts(p.BillingAddress)
	shipping := normalizeParts(p.ShippingAddress)

	for _, rule := range rules {
		if rule.IsWildcard() {
			text := countries.NormalizeToken(rule.WildcardText())
			if text == "" {
				continue
			}
			if wildcardHits(text, billing) || wildcardHits(text, shipping) {
				return true
			}
			continue
		}
		if subsetHits(rule, billing) || subsetHits(rule, shipping) {
			return true
		}
	}
	return false
}

// wildcardHits matches the token against any single address part exactly, or
// as a substring of the whole space-joined address.
func wildcardHits(text string, parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if part == text {
			return true
		}
	}
	return strings.Contains(strings.Join(parts, " "), text)
}

// subsetHits reports whether every non-empty rule part occurs in the address
// parts. Rules whose parts are all empty never match.
func subsetHits(rule ruleset.AddressRule, parts []string) bool {
	if len(parts) == 0 {
		return false
	}
	any := false
	for _, rulePart := range rule.Parts() {
		token := countries.NormalizeToken(rulePart)
		if token == "" {
			continue
		}
		any = true
		if !contains(parts, token) {
			return false
		}
	}
	return any
}

func normalizeParts(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if token := countries.NormalizeToken(p); token != "" {
			out = append(out, token)
		}
	}
	return out
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
