// Package service provides business logic services for Atlas Tasks.
// Every operation is gated by the authz policy before touching storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/atlas-tasks/internal/auth"
	"github.com/prn-tf/atlas-tasks/internal/authz"
	"github.com/prn-tf/atlas-tasks/internal/domain"
	"github.com/prn-tf/atlas-tasks/internal/repository"
)

// AccountService handles account management operations. It owns password
// hashing and email uniqueness enforcement; plaintext passwords are
// discarded immediately after hashing and never logged or returned.
type AccountService struct {
	userRepo   repository.UserRepository
	taskRepo   repository.TaskRepository
	bcryptCost int
	logger     zerolog.Logger
}

// NewAccountService creates a new AccountService. A bcryptCost of 0 falls
// back to bcrypt.DefaultCost.
func NewAccountService(userRepo repository.UserRepository, taskRepo repository.TaskRepository, bcryptCost int, logger zerolog.Logger) *AccountService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		userRepo:   userRepo,
		taskRepo:   taskRepo,
		bcryptCost: bcryptCost,
		logger:     logger.With().Str("service", "account").Logger(),
	}
}

// CreateAccountInput contains the data needed to create a new account.
type CreateAccountInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role // optional; defaults to RoleUser
}

// Create creates a new account. Account management is administrator-only.
//
// The email existence check and the insert are not atomic; a concurrent
// creation with the same email can slip past the pre-check and violate the
// storage uniqueness constraint. The repository surfaces that violation as
// domain.ErrEmailTaken, so callers see one consistent Conflict outcome
// regardless of which path detected the collision.
func (s *AccountService) Create(ctx context.Context, principal auth.Principal, input CreateAccountInput) (*domain.User, error) {
	if !authz.CanPerform(principal, authz.ActionManageUsers, nil) {
		return nil, domain.ErrAccessDenied
	}

	if err := s.validateCreateInput(input); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", domain.ErrInternal)
	}

	user := domain.NewUser(input.Name, input.Email, string(passwordHash))
	if input.Role != "" {
		user.Role = input.Role
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			// Lost the check-then-insert race; same outcome as the pre-check.
			return nil, domain.ErrEmailTaken
		}
		s.logger.Error().Err(err).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Msg("account created")

	return user, nil
}

// Get retrieves an account by ID. Administrator-only.
func (s *AccountService) Get(ctx context.Context, principal auth.Principal, id string) (*domain.User, error) {
	if !authz.CanPerform(principal, authz.ActionManageUsers, nil) {
		return nil, domain.ErrAccessDenied
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return user, nil
}

// ListAccountsInput contains pagination options for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccountsOutput contains the result of listing accounts.
type ListAccountsOutput struct {
	Users      []*domain.User
	TotalCount int64
}

// List returns accounts with pagination. Administrator-only. The password
// hash is excluded from any serialized projection of the returned users.
func (s *AccountService) List(ctx context.Context, principal auth.Principal, input ListAccountsInput) (*ListAccountsOutput, error) {
	if !authz.CanPerform(principal, authz.ActionManageUsers, nil) {
		return nil, domain.ErrAccessDenied
	}

	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	result, err := s.userRepo.List(ctx, repository.ListOptions{
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	return &ListAccountsOutput{
		Users:      result.Items,
		TotalCount: result.Total,
	}, nil
}

// UpdateAccountInput contains the fields to change on an account. Nil
// pointers mean "no change"; this is distinct from setting a field to its
// zero value.
type UpdateAccountInput struct {
	Name  *string
	Email *string
	Role  *domain.Role
}

// Update applies only the supplied fields to an account. Administrator-only.
// Email uniqueness is re-checked when the email is being changed.
func (s *AccountService) Update(ctx context.Context, principal auth.Principal, id string, input UpdateAccountInput) (*domain.User, error) {
	if !authz.CanPerform(principal, authz.ActionManageUsers, nil) {
		return nil, domain.ErrAccessDenied
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, domain.ErrInvalidName
		}
		user.Name = *input.Name
	}

	if input.Email != nil && *input.Email != user.Email {
		if _, err := mail.ParseAddress(*input.Email); err != nil {
			return nil, domain.ErrInvalidEmail
		}
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to check email existence")
			return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
		}
		if exists {
			return nil, domain.ErrEmailTaken
		}
		user.Email = *input.Email
	}

	if input.Role != nil {
		if _, err := domain.ParseRole(string(*input.Role)); err != nil {
			return nil, err
		}
		user.Role = *input.Role
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, domain.ErrEmailTaken
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to update user")
		return nil, fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("account updated")
	return user, nil
}

// Delete removes an account. Administrator-only. Deletion is blocked while
// tasks are still assigned to the account; tasks merely created by it do
// not block (the creator reference is an audit field).
func (s *AccountService) Delete(ctx context.Context, principal auth.Principal, id string) error {
	if !authz.CanPerform(principal, authz.ActionManageUsers, nil) {
		return domain.ErrAccessDenied
	}

	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to get user")
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	assigned, err := s.taskRepo.CountByAssignee(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to count assigned tasks")
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	if assigned > 0 {
		return domain.ErrUserHasTasks
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", id).Msg("failed to delete user")
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}

	s.logger.Info().Str("user_id", id).Msg("account deleted")
	return nil
}

// validateCreateInput validates the input for creating an account.
func (s *AccountService) validateCreateInput(input CreateAccountInput) error {
	if input.Name == "" {
		return domain.ErrInvalidName
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return domain.ErrInvalidEmail
	}
	if len(input.Password) < 8 {
		return domain.ErrInvalidPassword
	}
	if input.Role != "" {
		if _, err := domain.ParseRole(string(input.Role)); err != nil {
			return err
		}
	}
	return nil
}
