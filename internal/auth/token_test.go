package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/atlas-tasks/internal/domain"
)

var signingKey = []byte("test-signing-key-0123456789abcdef")

func testUser(role domain.Role) *domain.User {
	return &domain.User{
		ID:    "user-1",
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  role,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(signingKey, time.Hour)
	verifier := NewTokenVerifier(signingKey)

	for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleUser} {
		token, err := issuer.Issue(testUser(role))
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if principal.UserID != "user-1" {
			t.Errorf("expected user-1, got %s", principal.UserID)
		}
		if principal.Role != role {
			t.Errorf("expected role %s, got %s", role, principal.Role)
		}
	}
}

func TestTokenVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer(signingKey, -time.Minute)
	verifier := NewTokenVerifier(signingKey)

	token, err := issuer.Issue(testUser(domain.RoleUser))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expired, got %v", err)
	}
}

func TestTokenVerify_WrongKey(t *testing.T) {
	issuer := NewTokenIssuer(signingKey, time.Hour)
	verifier := NewTokenVerifier([]byte("a-different-key-entirely--------"))

	token, err := issuer.Issue(testUser(domain.RoleUser))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestTokenVerify_Garbage(t *testing.T) {
	verifier := NewTokenVerifier(signingKey)

	for _, raw := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := verifier.Verify(raw); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("raw %q: expected invalid token, got %v", raw, err)
		}
	}
}

func TestMiddleware_Gate(t *testing.T) {
	issuer := NewTokenIssuer(signingKey, time.Hour)
	verifier := NewTokenVerifier(signingKey)
	mw := Middleware(verifier, zerolog.Nop())

	var gotPrincipal Principal
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		gotPrincipal, _ = PrincipalFromContext(r.Context())
	})
	handler := mw(next)

	token, err := issuer.Issue(testUser(domain.RoleAdmin))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantPass   bool
	}{
		{name: "valid bearer", header: "Bearer " + token, wantStatus: http.StatusOK, wantPass: true},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "tampered token", header: "Bearer " + token + "x", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if reached != tt.wantPass {
				t.Errorf("handler reached = %v, want %v", reached, tt.wantPass)
			}
			if tt.wantPass && gotPrincipal.UserID != "user-1" {
				t.Errorf("principal not attached to context: %+v", gotPrincipal)
			}
		})
	}
}
