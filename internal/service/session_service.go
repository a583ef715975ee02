// Package service provides business logic services for Atlas Tasks.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/atlas-tasks/internal/auth"
	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/repository"
)

// SessionService exchanges email/password credentials for a signed,
// time-bound bearer token.
type SessionService struct {
	userRepo repository.UserRepository
	issuer   *auth.TokenIssuer
	logger   zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(userRepo repository.UserRepository, issuer *auth.TokenIssuer, logger zerolog.Logger) *SessionService {
	return &SessionService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger.With().Str("service", "session").Logger(),
	}
}

// LoginInput contains the credentials for a login attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput contains the issued token and the authenticated user.
type LoginOutput struct {
	Token     string
	ExpiresIn int64 // seconds
	User      *domain.User
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords produce the same error; the response never reveals whether an
// email is registered.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Debug().Msg("login failed: unknown email")
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.logger.Debug().Str("user_id", user.ID).Msg("login failed: wrong password")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue token")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("user logged in")

	return &LoginOutput{
		Token:     token,
		ExpiresIn: int64(s.issuer.TTL().Seconds()),
		User:      user,
	}, nil
}
