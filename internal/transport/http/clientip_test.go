package httptransport

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	t.Run("x-real-ip wins", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Real-IP", "203.0.113.9")
		r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
		assert.Equal(t, "203.0.113.9", clientIP(r))
	})

	t.Run("first forwarded hop", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
		assert.Equal(t, "198.51.100.7", clientIP(r))
	})

	t.Run("remote addr fallback", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "192.0.2.1:34567"
		assert.Equal(t, "192.0.2.1", clientIP(r))
	})
}

func TestSummarizeUserAgent(t *testing.T) {
	const chrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	summary := summarizeUserAgent(chrome)
	assert.Contains(t, summary, "Chrome")
	assert.Contains(t, summary, "on")

	assert.Empty(t, summarizeUserAgent(""))
}
