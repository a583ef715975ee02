// Package auth provides bearer-token authentication for Atlas Tasks.
package auth

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

const (
	// authorizationHeader is the HTTP header carrying the credential.
	authorizationHeader = "Authorization"

	// bearerPrefix is the expected scheme prefix of the header value.
	bearerPrefix = "Bearer "
)

// Middleware returns an HTTP middleware that verifies the bearer token on
// every request and attaches the resulting Principal to the context.
// It is a hard gate: requests without a verifiable identity are rejected
// with 401 before any business logic executes.
func Middleware(verifier *TokenVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "auth").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := extractBearer(r)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected: no credential")
				writeUnauthenticated(w)
				return
			}

			principal, err := verifier.Verify(raw)
			if err != nil {
				logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected: credential verification failed")
				writeUnauthenticated(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// extractBearer pulls the raw token out of the Authorization header.
func extractBearer(r *http.Request) (string, error) {
	header := r.Header.Get(authorizationHeader)
	if header == "" {
		return "", ErrMissingCredential
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMalformedCredential
	}
	token := strings.TrimPrefix(header, bearerPrefix)
	if token == "" {
		return "", ErrMalformedCredential
	}
	return token, nil
}

// writeUnauthenticated writes the uniform 401 response. The body never
// distinguishes between missing, malformed and expired credentials.
func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"authentication required"}`))
}
