// Package repository declares the storage contracts consumed by the
// service layer. The sqlite subpackage is the production implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"
	"time"

	"github.com/sakif/time-tracker/internal/model"
)

// UserHours is one row of the grouped weekly sum: a user joined against
// the total duration of their activities in a date range. Users with no
// matching activities appear with TotalHours 0 (outer-join semantics).
type UserHours struct {
	UserID     string
	Username   string
	TotalHours float64
}

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	// GetByID is scoped to the owning user: an existing activity owned by
	// someone else is reported as not found, never leaked.
	GetByID(ctx context.Context, id, userID string) (*model.Activity, error)
	// ListByUser returns all activities for a user, date descending then
	// createdAt descending. A limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]model.Activity, error)
	Update(ctx context.Context, activity *model.Activity) error
	Delete(ctx context.Context, id, userID string) error

	// SumDurationByUserAndDateRange sums activity hours for one user over
	// an inclusive date range. Returns 0 when no rows match.
	SumDurationByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) (float64, error)
	// SumDurationGroupedByUserForRange covers ALL users, including those
	// with no activities in the range. Order is unspecified; ranking
	// belongs to the service layer.
	SumDurationGroupedByUserForRange(ctx context.Context, start, end time.Time) ([]UserHours, error)
}

// UserRepository method names carry the User prefix because the sqlite
// *DB implements all three repository interfaces on one receiver.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	// ListUsers returns all users, or those whose username contains the
	// query (case-insensitive) when query is non-empty.
	ListUsers(ctx context.Context, query string) ([]model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	// DeleteUser cascades to the user's activities and API keys.
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)
}

type APIKeyRepository interface {
	CreateAPIKey(ctx context.Context, key *model.APIKey) error
	GetAPIKeyByHash(ctx context.Context, keyHash string) (*model.APIKey, error)
	ListAPIKeysByUser(ctx context.Context, userID string) ([]model.APIKey, error)
	ListAllAPIKeys(ctx context.Context) ([]model.APIKeyWithOwner, error)
	TouchAPIKeyLastUsed(ctx context.Context, id string, when time.Time) error
	DeleteAPIKey(ctx context.Context, id string) error
}
