package httptransport

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

// clientIP resolves the customer's address the way the original storefront
// did: X-Real-IP first, then the first hop of X-Forwarded-For, then the
// connection's remote address.
func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// summarizeUserAgent condenses the raw User-Agent header into a readable
// browser/OS summary for the attempt log. Unparseable strings pass through
// raw.
func summarizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	if name, _ := ua.Browser(); name == "" {
		return raw
	}
	name, version := ua.Browser()
	summary := name
	if version != "" {
		summary += " " + version
	}
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	if ua.Bot() {
		summary += " (bot)"
	}
	return summary
}
