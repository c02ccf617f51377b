package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/time-tracker/internal/apperror"
	"github.com/sakif/time-tracker/internal/model"
)

func TestCreateUser_And_Get(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", PasswordHash: "hash", IsAdmin: true}
	if err := db.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("CreateUser() did not assign an ID")
	}

	byID, err := db.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if byID.Username != "alice" || !byID.IsAdmin {
		t.Errorf("GetUserByID() = %+v, want alice/admin", byID)
	}

	byName, err := db.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if byName.ID != user.ID {
		t.Errorf("GetUserByUsername() ID = %q, want %q", byName.ID, user.ID)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestUser(t, db, "taken")

	err := db.CreateUser(ctx, &model.User{Username: "taken", PasswordHash: "other"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), "nonexistent")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListUsers_OrderAndSearch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "malice"} {
		createTestUser(t, db, name)
	}

	all, err := db.ListUsers(ctx, "")
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListUsers() returned %d users, want 3", len(all))
	}
	if all[0].Username != "alice" || all[2].Username != "malice" {
		t.Errorf("ListUsers() not ordered by username: %v, %v, %v",
			all[0].Username, all[1].Username, all[2].Username)
	}

	// LIKE is case-insensitive for ASCII.
	matched, err := db.ListUsers(ctx, "ALI")
	if err != nil {
		t.Fatalf("ListUsers(query) error = %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("ListUsers(\"ALI\") returned %d users, want 2", len(matched))
	}
}

func TestUpdateUserPassword(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")

	if err := db.UpdateUserPassword(ctx, user.ID, "new-hash"); err != nil {
		t.Fatalf("UpdateUserPassword() error = %v", err)
	}

	got, _ := db.GetUserByID(ctx, user.ID)
	if got.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, "new-hash")
	}

	err := db.UpdateUserPassword(ctx, "nonexistent", "hash")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("unknown user: error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser_CascadesToActivitiesAndKeys(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "alice")

	activity := &model.Activity{
		UserID:   user.ID,
		Name:     "work",
		Date:     mustDate(t, "2024-01-17"),
		Duration: 2,
	}
	if err := db.Create(ctx, activity); err != nil {
		t.Fatalf("Create(activity) error = %v", err)
	}
	key := &model.APIKey{UserID: user.ID, Name: "laptop", KeyHash: "abc123"}
	if err := db.CreateAPIKey(ctx, key); err != nil {
		t.Fatalf("CreateAPIKey() error = %v", err)
	}

	if err := db.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	if _, err := db.GetByID(ctx, activity.ID, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("activity survived user deletion: error = %v, want ErrNotFound", err)
	}
	if _, err := db.GetAPIKeyByHash(ctx, "abc123"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("api key survived user deletion: error = %v, want ErrNotFound", err)
	}
}

func TestCountUsers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, err := db.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers() error = %v", err)
	}
	if count != 0 {
		t.Errorf("CountUsers() = %d, want 0", count)
	}

	createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")

	count, _ = db.CountUsers(ctx)
	if count != 2 {
		t.Errorf("CountUsers() = %d, want 2", count)
	}
}
