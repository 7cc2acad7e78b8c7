package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// OperatorClaims represents the claims expected from an operator token.
type OperatorClaims struct {
	Subject string
	Role    string
}

// TokenValidator validates operator bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*OperatorClaims, error)
}

type operatorKey struct{}

// GetOperator retrieves the authenticated operator subject from the context.
func GetOperator(ctx context.Context) string {
	if sub, ok := ctx.Value(operatorKey{}).(string); ok {
		return sub
	}
	return ""
}

// RequireOperator guards mutating admin endpoints (bypass flags, ruleset
// edits). The checkout and payment-failure paths stay unauthenticated because
// the host platform calls them server-to-server inside its own trust zone.
func RequireOperator(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeUnauthorized(w, "Missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized operator request",
					"error", err,
					"path", r.URL.Path,
					"request_id", GetRequestID(r.Context()),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
