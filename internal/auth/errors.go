// Package auth provides bearer-token authentication for Atlas Tasks.
package auth

import "errors"

// Authentication errors. All of them collapse to the same user-visible
// Unauthenticated outcome; the distinctions exist for logging only.
var (
	// ErrMissingCredential indicates no Authorization header was sent.
	ErrMissingCredential = errors.New("missing authorization header")

	// ErrMalformedCredential indicates the Authorization header is not a
	// well-formed bearer token.
	ErrMalformedCredential = errors.New("malformed authorization header")

	// ErrTokenInvalid indicates the token failed structural or signature
	// verification.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("token has expired")
)
