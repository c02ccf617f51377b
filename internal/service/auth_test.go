package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/time-tracker/internal/apperror"
	"github.com/sakif/time-tracker/internal/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	passwords := auth.NewPasswordServiceForTest(4)
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	users := NewUserService(repo, passwords, testLogger())
	svc := NewAuthService(repo, users, tokens, passwords, testLogger())
	return svc, repo
}

// =========================================================================
// REGISTER TESTS
// =========================================================================

func TestRegister_FirstUserBecomesAdmin(t *testing.T) {
	svc, _ := newTestAuthService(t)

	result, err := svc.Register(context.Background(), "founder", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if !result.User.IsAdmin {
		t.Error("first registered user must be an admin")
	}
	if result.Token == "" {
		t.Error("Register() must issue a session token")
	}
}

func TestRegister_ClosedOnceAUserExists(t *testing.T) {
	svc, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "founder", "password123"); err != nil {
		t.Fatalf("setup: Register() error = %v", err)
	}

	_, err := svc.Register(context.Background(), "latecomer", "password123")
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestRegister_InvalidCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), "x", "password123")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("short username: error = %v, want ErrValidation", err)
	}

	_, err = svc.Register(context.Background(), "founder", "short")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("short password: error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// LOGIN TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registered, _ := svc.Register(context.Background(), "founder", "password123")

	result, err := svc.Login(context.Background(), "founder", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != registered.User.ID {
		t.Errorf("logged in as %q, want %q", result.User.ID, registered.User.ID)
	}
	if result.Token == "" {
		t.Error("Login() must issue a session token")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	svc.Register(context.Background(), "founder", "password123")

	_, err := svc.Login(context.Background(), "founder", "wrong-password")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), "nobody", "password123")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}

func TestLogin_SameErrorForUnknownUserAndWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	svc.Register(context.Background(), "founder", "password123")

	_, errUnknown := svc.Login(context.Background(), "nobody", "password123")
	_, errWrong := svc.Login(context.Background(), "founder", "wrong-password")

	// The login form must not reveal which usernames exist.
	if errUnknown == nil || errWrong == nil {
		t.Fatal("both login failures must return an error")
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("error messages differ: %q vs %q — username oracle", errUnknown, errWrong)
	}
}

// =========================================================================
// GET USER TESTS
// =========================================================================

func TestAuthGetUserByID_Success(t *testing.T) {
	svc, _ := newTestAuthService(t)

	registered, _ := svc.Register(context.Background(), "founder", "password123")

	user, err := svc.GetUserByID(context.Background(), registered.User.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if user.Username != "founder" {
		t.Errorf("Username = %q, want %q", user.Username, "founder")
	}
}

func TestAuthGetUserByID_EmptyID(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.GetUserByID(context.Background(), "")
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("error = %v, want ErrUnauthorized", err)
	}
}
