package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sakif/time-tracker/internal/apperror"
	"github.com/sakif/time-tracker/internal/clock"
	"github.com/sakif/time-tracker/internal/model"
	"github.com/sakif/time-tracker/internal/repository"
)

// =========================================================================
// MOCK REPOSITORIES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces.
// The services don't know or care that they're not talking to SQLite —
// that's the point of programming to an interface. Each mock stores
// copies, not pointers, so tests can't accidentally mutate stored state
// through a returned value.

type mockActivityRepo struct {
	activities map[string]*model.Activity
	// usernames seeds the grouped-sum result: every entry here appears in
	// SumDurationGroupedByUserForRange, matching the LEFT JOIN contract.
	usernames map[string]string
	nextID    int
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{
		activities: make(map[string]*model.Activity),
		usernames:  make(map[string]string),
	}
}

func (m *mockActivityRepo) Create(_ context.Context, activity *model.Activity) error {
	m.nextID++
	activity.ID = fmt.Sprintf("act-%d", m.nextID)
	activity.CreatedAt = time.Now()
	activity.UpdatedAt = activity.CreatedAt
	stored := *activity
	m.activities[activity.ID] = &stored
	return nil
}

func (m *mockActivityRepo) GetByID(_ context.Context, id, userID string) (*model.Activity, error) {
	activity, ok := m.activities[id]
	if !ok || activity.UserID != userID {
		return nil, apperror.NotFound("activity", id)
	}
	result := *activity
	return &result, nil
}

func (m *mockActivityRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.Activity, error) {
	result := make([]model.Activity, 0, len(m.activities))
	for _, a := range m.activities {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockActivityRepo) Update(_ context.Context, activity *model.Activity) error {
	existing, ok := m.activities[activity.ID]
	if !ok || existing.UserID != activity.UserID {
		return apperror.NotFound("activity", activity.ID)
	}
	activity.UpdatedAt = time.Now()
	stored := *activity
	m.activities[activity.ID] = &stored
	return nil
}

func (m *mockActivityRepo) Delete(_ context.Context, id, userID string) error {
	existing, ok := m.activities[id]
	if !ok || existing.UserID != userID {
		return apperror.NotFound("activity", id)
	}
	delete(m.activities, id)
	return nil
}

func (m *mockActivityRepo) SumDurationByUserAndDateRange(_ context.Context, userID string, start, end time.Time) (float64, error) {
	var total float64
	for _, a := range m.activities {
		if a.UserID == userID && inRange(a.Date, start, end) {
			total += a.Duration
		}
	}
	return total, nil
}

func (m *mockActivityRepo) SumDurationGroupedByUserForRange(_ context.Context, start, end time.Time) ([]repository.UserHours, error) {
	rows := make([]repository.UserHours, 0, len(m.usernames))
	for userID, username := range m.usernames {
		var total float64
		for _, a := range m.activities {
			if a.UserID == userID && inRange(a.Date, start, end) {
				total += a.Duration
			}
		}
		rows = append(rows, repository.UserHours{
			UserID:     userID,
			Username:   username,
			TotalHours: total,
		})
	}
	return rows, nil
}

func inRange(date, start, end time.Time) bool {
	return !date.Before(start) && !date.After(end)
}

// -------------------------------------------------------------------------

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return apperror.Conflict("username already exists")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			result := *user
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (m *mockUserRepo) ListUsers(_ context.Context, query string) ([]model.User, error) {
	result := make([]model.User, 0, len(m.users))
	for _, user := range m.users {
		if query == "" || strings.Contains(strings.ToLower(user.Username), strings.ToLower(query)) {
			result = append(result, *user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (m *mockUserRepo) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	user, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *mockUserRepo) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) CountUsers(_ context.Context) (int, error) {
	return len(m.users), nil
}

// -------------------------------------------------------------------------

type mockAPIKeyRepo struct {
	keys   map[string]*model.APIKey
	nextID int
}

func newMockAPIKeyRepo() *mockAPIKeyRepo {
	return &mockAPIKeyRepo{keys: make(map[string]*model.APIKey)}
}

func (m *mockAPIKeyRepo) CreateAPIKey(_ context.Context, key *model.APIKey) error {
	m.nextID++
	key.ID = fmt.Sprintf("key-%d", m.nextID)
	key.CreatedAt = time.Now()
	stored := *key
	m.keys[key.ID] = &stored
	return nil
}

func (m *mockAPIKeyRepo) GetAPIKeyByHash(_ context.Context, keyHash string) (*model.APIKey, error) {
	for _, key := range m.keys {
		if key.KeyHash == keyHash {
			result := *key
			return &result, nil
		}
	}
	return nil, apperror.NotFound("api key", "by hash")
}

func (m *mockAPIKeyRepo) ListAPIKeysByUser(_ context.Context, userID string) ([]model.APIKey, error) {
	result := make([]model.APIKey, 0, len(m.keys))
	for _, key := range m.keys {
		if key.UserID == userID {
			result = append(result, *key)
		}
	}
	return result, nil
}

func (m *mockAPIKeyRepo) ListAllAPIKeys(_ context.Context) ([]model.APIKeyWithOwner, error) {
	result := make([]model.APIKeyWithOwner, 0, len(m.keys))
	for _, key := range m.keys {
		result = append(result, model.APIKeyWithOwner{APIKey: *key})
	}
	return result, nil
}

func (m *mockAPIKeyRepo) TouchAPIKeyLastUsed(_ context.Context, id string, when time.Time) error {
	key, ok := m.keys[id]
	if !ok {
		return apperror.NotFound("api key", id)
	}
	key.LastUsed = &when
	return nil
}

func (m *mockAPIKeyRepo) DeleteAPIKey(_ context.Context, id string) error {
	if _, ok := m.keys[id]; !ok {
		return apperror.NotFound("api key", id)
	}
	delete(m.keys, id)
	return nil
}

// =========================================================================
// SHARED HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixedClock pins "now" to Wednesday 2024-01-17 12:00 JST. The current
// week is Mon 2024-01-15 through Sun 2024-01-21; last week is
// 2024-01-08 through 2024-01-14.
func fixedClock(t *testing.T) *clock.Clock {
	t.Helper()
	return clock.NewFixed(time.Date(2024, 1, 17, 12, 0, 0, 0, clock.JST))
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := clock.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return d
}
