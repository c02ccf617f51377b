package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/time-tracker/internal/apperror"
	"github.com/sakif/time-tracker/internal/auth"
	"github.com/sakif/time-tracker/internal/clock"
	"github.com/sakif/time-tracker/internal/model"
	"github.com/sakif/time-tracker/internal/repository"
)

const MaxAPIKeyNameLength = 100

// APIKeyService manages bearer API keys. The plaintext key exists
// exactly once, in the return value of Create; everything after that
// works with the SHA-256 hash.
//
// It implements auth.APIKeyValidator, which is how the bearer middleware
// resolves keys without importing this package.
type APIKeyService struct {
	keys   repository.APIKeyRepository
	users  repository.UserRepository
	clk    *clock.Clock
	logger *slog.Logger
}

// Compile-time check that APIKeyService satisfies the middleware's
// validator contract.
var _ auth.APIKeyValidator = (*APIKeyService)(nil)

// NewAPIKeyService creates an APIKeyService.
func NewAPIKeyService(
	keys repository.APIKeyRepository,
	users repository.UserRepository,
	clk *clock.Clock,
	logger *slog.Logger,
) *APIKeyService {
	return &APIKeyService{
		keys:   keys,
		users:  users,
		clk:    clk,
		logger: logger,
	}
}

// Create generates a new key for the user and returns its plaintext form
// along with the stored record. The plaintext is shown to the user once
// and never persisted.
func (s *APIKeyService) Create(ctx context.Context, userID, name string) (string, *model.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, apperror.ValidationFailed("name", "key name is required")
	}
	if len(name) > MaxAPIKeyNameLength {
		return "", nil, apperror.ValidationFailed("name",
			fmt.Sprintf("key name must be %d characters or less", MaxAPIKeyNameLength))
	}

	plaintext, err := auth.GenerateAPIKey()
	if err != nil {
		return "", nil, fmt.Errorf("generating api key: %w", err)
	}

	key := &model.APIKey{
		UserID:  userID,
		Name:    name,
		KeyHash: auth.HashAPIKey(plaintext),
	}

	if err := s.keys.CreateAPIKey(ctx, key); err != nil {
		return "", nil, fmt.Errorf("storing api key: %w", err)
	}

	s.logger.Info("api key created",
		slog.String("id", key.ID),
		slog.String("userID", userID),
		slog.String("name", name),
	)

	return plaintext, key, nil
}

// ListByUser returns a user's own keys, newest first.
func (s *APIKeyService) ListByUser(ctx context.Context, userID string) ([]model.APIKey, error) {
	keys, err := s.keys.ListAPIKeysByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing api keys: %w", err)
	}
	return keys, nil
}

// ListAll returns every key with its owner's username, for the admin
// panel.
func (s *APIKeyService) ListAll(ctx context.Context) ([]model.APIKeyWithOwner, error) {
	keys, err := s.keys.ListAllAPIKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing all api keys: %w", err)
	}
	return keys, nil
}

// DeleteOwn removes one of the requesting user's keys. A key owned by
// someone else is reported as not found, never as forbidden — the key's
// existence is not the caller's business.
func (s *APIKeyService) DeleteOwn(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "key ID is required")
	}

	keys, err := s.keys.ListAPIKeysByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing api keys: %w", err)
	}
	for _, key := range keys {
		if key.ID == id {
			return s.delete(ctx, id, userID)
		}
	}
	return apperror.NotFound("api key", id)
}

// Delete removes any key by ID. Admin-only; callers enforce that.
func (s *APIKeyService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "key ID is required")
	}
	return s.delete(ctx, id, "")
}

func (s *APIKeyService) delete(ctx context.Context, id, userID string) error {
	if err := s.keys.DeleteAPIKey(ctx, id); err != nil {
		return err
	}
	s.logger.Info("api key deleted",
		slog.String("id", id),
		slog.String("userID", userID),
	)
	return nil
}

// ValidateAPIKey resolves a plaintext bearer key to its owning user and
// records the use. An unknown key is an unauthorized error; the caller
// learns nothing about whether the key ever existed.
func (s *APIKeyService) ValidateAPIKey(ctx context.Context, plaintext string) (*model.User, error) {
	if plaintext == "" {
		return nil, apperror.Unauthorized("api key required")
	}

	key, err := s.keys.GetAPIKeyByHash(ctx, auth.HashAPIKey(plaintext))
	if err != nil {
		return nil, apperror.Unauthorized("invalid api key")
	}

	user, err := s.users.GetUserByID(ctx, key.UserID)
	if err != nil {
		// A key whose owner is gone should have been cascaded away; treat
		// it as invalid rather than leaking a storage error.
		return nil, apperror.Unauthorized("invalid api key")
	}

	// Best effort: a failed last-used update must not fail the request.
	if err := s.keys.TouchAPIKeyLastUsed(ctx, key.ID, s.clk.Now()); err != nil {
		s.logger.Warn("failed to update api key last_used",
			slog.String("keyID", key.ID),
			slog.String("error", err.Error()),
		)
	}

	return user, nil
}
