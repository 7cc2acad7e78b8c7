// Package jwtoken issues and validates operator bearer tokens for the admin
// endpoints.
package jwtoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fraudgate/internal/platform/middleware"
	dErrors "fraudgate/pkg/domain-errors"
)

const issuer = "fraudgate"

// OperatorTokenClaims are the JWT claims carried by operator tokens.
type OperatorTokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and validates operator tokens with a shared HMAC key.
type Service struct {
	signingKey []byte
	tokenTTL   time.Duration
}

// NewService constructs a token service. ttl bounds generated token
// lifetimes.
func NewService(signingKey string, ttl time.Duration) *Service {
	return &Service{signingKey: []byte(signingKey), tokenTTL: ttl}
}

// GenerateOperatorToken issues a signed token for an operator subject.
func (s *Service) GenerateOperatorToken(subject, role string) (string, error) {
	if subject == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "subject cannot be empty")
	}
	now := time.Now()
	claims := OperatorTokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign operator token")
	}
	return signed, nil
}

// ValidateToken parses and verifies an operator token. It satisfies
// middleware.TokenValidator.
func (s *Service) ValidateToken(tokenString string) (*middleware.OperatorClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &OperatorTokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
			}
			return s.signingKey, nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid operator token")
	}
	claims, ok := parsed.Claims.(*OperatorTokenClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid operator token claims")
	}
	return &middleware.OperatorClaims{Subject: claims.Subject, Role: claims.Role}, nil
}
