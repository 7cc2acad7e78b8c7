package match

import (
	"strconv"
	"strings"

	"fraudgate/internal/profile"
	"fraudgate/internal/ruleset"
	xstrings "fraudgate/pkg/strings"
)

// Identity is the authenticated customer attached to a checkout, when any.
// A zero ID means a guest.
type Identity struct {
	ID    int64
	Email string
}

// IsWhitelisted reports whether the checkout bypasses blacklist evaluation
// entirely: the payment gateway is whitelisted, or the customer's ID or
// account email appears in the customer whitelist. Guest checkouts can only
// bypass via the gateway list.
func IsWhitelisted(p profile.CustomerProfile, rs ruleset.RuleSet, identity Identity) bool {
	// Gateway IDs are machine slugs; compare strictly.
	if p.PaymentMethod != "" {
		for _, g := range rs.WhitelistGateways {
			if g == p.PaymentMethod {
				return true
			}
		}
	}

	entries := xstrings.DedupeAndTrimLower(rs.WhitelistCustomers)
	if len(entries) == 0 {
		return false
	}
	if identity.ID != 0 {
		id := strconv.FormatInt(identity.ID, 10)
		for _, e := range entries {
			if e == id {
				return true
			}
		}
		if email := strings.ToLower(strings.TrimSpace(identity.Email)); email != "" {
			for _, e := range entries {
				if e == email {
					return true
				}
			}
		}
	}
	return false
}
