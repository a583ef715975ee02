// Package auth provides bearer-token authentication for Atlas Tasks.
// Tokens are signed, time-bound JWTs (HS256). The verifier yields the
// minimal principal identity or an error; no partial identity is ever
// returned.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prn-tf/atlas-tasks/internal/domain"
)

// claims is the JWT payload carried by Atlas tokens.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer creates signed, time-bound credentials for principals.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
}

// NewTokenIssuer creates a TokenIssuer with the given signing key and
// token lifetime.
func NewTokenIssuer(key []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: key, ttl: ttl}
}

// Issue creates a signed token for the given user.
func (i *TokenIssuer) Issue(user *domain.User) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// TokenVerifier validates bearer credentials against a known key.
// Verification is pure: it performs no storage access and has no side
// effects.
type TokenVerifier struct {
	key []byte
}

// NewTokenVerifier creates a TokenVerifier with the given verification key.
func NewTokenVerifier(key []byte) *TokenVerifier {
	return &TokenVerifier{key: key}
}

// Verify checks structural validity, signature authenticity and expiry of
// a raw credential. On success it returns the principal identity embedded
// in the token.
func (v *TokenVerifier) Verify(rawCredential string) (Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(rawCredential, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrTokenExpired
		}
		return Principal{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid || c.Subject == "" {
		return Principal{}, ErrTokenInvalid
	}

	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: unknown role claim", ErrTokenInvalid)
	}

	return Principal{
		UserID: c.Subject,
		Role:   role,
	}, nil
}
