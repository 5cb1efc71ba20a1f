// Package auth verifies the bearer tokens issued by the identity service and
// exposes the resolved identity to the rest of the backend. The audit
// pipeline consumes that identity through the request context only; token
// issuance and user management live outside this repo.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity payload carried by a bearer token.
type Claims struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	TenantID string `json:"tenant_id"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 bearer tokens with a shared secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService. An empty secret is allowed so the
// server can run without authentication in development; Validate then rejects
// every token and all requests are attributed to the system actor.
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Generate creates a signed token for an authenticated user. Used by tests
// and by the companion identity service via shared configuration.
func (s *TokenService) Generate(userID, userName, tenantID string, expiresIn time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	if expiresIn == 0 {
		expiresIn = time.Hour
	}

	claims := &Claims{
		UserID:   userID,
		UserName: userName,
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "sistema-vendas",
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate parses and verifies a bearer token, returning its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	return claims, nil
}
