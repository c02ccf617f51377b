package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sakif/time-tracker/internal/apperror"
	"github.com/sakif/time-tracker/internal/auth"
	"github.com/sakif/time-tracker/internal/model"
	"github.com/sakif/time-tracker/internal/repository"
)

// Username and password rules. Usernames are URL- and template-safe by
// construction. The password ceiling is bcrypt's 72-byte input limit —
// anything longer would be silently truncated by the hash.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 31
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// UserService handles account management: creation (registration and
// admin-created), listing, password resets, and deletion.
type UserService struct {
	repo      repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(repo repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{
		repo:      repo,
		passwords: passwords,
		logger:    logger,
	}
}

// Create validates credentials, hashes the password, and inserts a new
// user. A duplicate username surfaces as apperror.ErrConflict.
func (s *UserService) Create(ctx context.Context, username, password string, isAdmin bool) (*model.User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created",
		slog.String("id", user.ID),
		slog.String("username", user.Username),
		slog.Bool("isAdmin", user.IsAdmin),
	)

	return user, nil
}

// GetByID returns a user by internal ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.repo.GetUserByID(ctx, id)
}

// List returns all users, optionally filtered to usernames containing
// the query (case-insensitive).
func (s *UserService) List(ctx context.Context, query string) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx, strings.TrimSpace(query))
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// ResetPassword replaces a user's password hash. The user must exist.
func (s *UserService) ResetPassword(ctx context.Context, id, newPassword string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "user ID is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	// Existence check first, so a bogus ID is a 404 and not a silent no-op.
	if _, err := s.repo.GetUserByID(ctx, id); err != nil {
		return err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.repo.UpdateUserPassword(ctx, id, hash); err != nil {
		return err
	}

	s.logger.Info("password reset", slog.String("userID", id))
	return nil
}

// Delete removes a user and, through the schema's cascades, their
// activities and API keys. Admins cannot delete their own account — the
// last admin locking everyone out is not a recoverable state.
func (s *UserService) Delete(ctx context.Context, actingUserID, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "user ID is required")
	}
	if id == actingUserID {
		return apperror.Forbidden("you cannot delete your own account")
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.logger.Info("user deleted",
		slog.String("id", id),
		slog.String("deletedBy", actingUserID),
	)
	return nil
}

// Count returns the number of registered users.
func (s *UserService) Count(ctx context.Context) (int, error) {
	return s.repo.CountUsers(ctx)
}

func validateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength))
	}
	if !usernamePattern.MatchString(username) {
		return apperror.ValidationFailed("username",
			"username may only contain letters, digits, and underscores")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be between %d and %d characters", MinPasswordLength, MaxPasswordLength))
	}
	return nil
}
