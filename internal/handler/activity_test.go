package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/sakif/time-tracker/internal/apperror"
	"github.com/sakif/time-tracker/internal/auth"
	"github.com/sakif/time-tracker/internal/clock"
	"github.com/sakif/time-tracker/internal/handler"
	"github.com/sakif/time-tracker/internal/model"
	"github.com/sakif/time-tracker/internal/repository"
	"github.com/sakif/time-tracker/internal/service"
)

// memActivityRepo is a minimal in-memory repository.ActivityRepository
// for exercising the full middleware → handler → service path without a
// database.
type memActivityRepo struct {
	activities map[string]*model.Activity
	nextID     int
}

func newMemActivityRepo() *memActivityRepo {
	return &memActivityRepo{activities: make(map[string]*model.Activity)}
}

func (m *memActivityRepo) Create(_ context.Context, a *model.Activity) error {
	m.nextID++
	a.ID = fmt.Sprintf("act-%d", m.nextID)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	m.activities[a.ID] = &stored
	return nil
}

func (m *memActivityRepo) GetByID(_ context.Context, id, userID string) (*model.Activity, error) {
	a, ok := m.activities[id]
	if !ok || a.UserID != userID {
		return nil, apperror.NotFound("activity", id)
	}
	result := *a
	return &result, nil
}

func (m *memActivityRepo) ListByUser(_ context.Context, userID string, limit int) ([]model.Activity, error) {
	result := make([]model.Activity, 0, len(m.activities))
	for _, a := range m.activities {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (m *memActivityRepo) Update(_ context.Context, a *model.Activity) error {
	existing, ok := m.activities[a.ID]
	if !ok || existing.UserID != a.UserID {
		return apperror.NotFound("activity", a.ID)
	}
	stored := *a
	m.activities[a.ID] = &stored
	return nil
}

func (m *memActivityRepo) Delete(_ context.Context, id, userID string) error {
	existing, ok := m.activities[id]
	if !ok || existing.UserID != userID {
		return apperror.NotFound("activity", id)
	}
	delete(m.activities, id)
	return nil
}

func (m *memActivityRepo) SumDurationByUserAndDateRange(_ context.Context, _ string, _, _ time.Time) (float64, error) {
	return 0, nil
}

func (m *memActivityRepo) SumDurationGroupedByUserForRange(_ context.Context, _, _ time.Time) ([]repository.UserHours, error) {
	return nil, nil
}

// activityTestEnv wires the real session middleware, service, and
// handler around the in-memory repo. "Today" is pinned to 2024-01-17
// (a Wednesday) in JST.
type activityTestEnv struct {
	router *chi.Mux
	repo   *memActivityRepo
	tokens *auth.TokenService
}

func newActivityTestEnv(t *testing.T) *activityTestEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	repo := newMemActivityRepo()
	clk := clock.NewFixed(time.Date(2024, 1, 17, 12, 0, 0, 0, clock.JST))
	svc := service.NewActivityService(repo, clk, logger)
	h := handler.NewActivityHandler(svc, logger)

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(tokens))
		r.Get("/api/activities", h.HandleList)
		r.Post("/api/activities", h.HandleCreate)
		r.Get("/api/activities/{id}", h.HandleGet)
		r.Put("/api/activities/{id}", h.HandleUpdate)
		r.Delete("/api/activities/{id}", h.HandleDelete)
	})

	return &activityTestEnv{router: r, repo: repo, tokens: tokens}
}

// do performs a request as the given user. An empty userID sends the
// request without a session cookie.
func (env *activityTestEnv) do(t *testing.T, method, target, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := env.tokens.Generate(userID)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

func TestActivityHandler_Create(t *testing.T) {
	t.Run("valid start-end activity", func(t *testing.T) {
		env := newActivityTestEnv(t)

		body := `{"name":"deep work","date":"2024-01-17","inputMethod":"start-end","startTime":"09:00","endTime":"17:30"}`
		rr := env.do(t, http.MethodPost, "/api/activities", "user-1", body)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var activity model.Activity
		err := json.NewDecoder(rr.Body).Decode(&activity)
		assert.NoError(t, err)
		assert.Equal(t, "deep work", activity.Name)
		assert.Equal(t, 8.5, activity.Duration)
		assert.NotEmpty(t, activity.ID)
	})

	t.Run("derives end time in start-duration mode", func(t *testing.T) {
		env := newActivityTestEnv(t)

		body := `{"name":"study","date":"2024-01-17","inputMethod":"start-duration","startTime":"09:00","duration":"2.5"}`
		rr := env.do(t, http.MethodPost, "/api/activities", "user-1", body)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var activity model.Activity
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&activity))
		if assert.NotNil(t, activity.EndTime) {
			assert.Equal(t, "11:30", *activity.EndTime)
		}
	})

	t.Run("zero duration is a validation error", func(t *testing.T) {
		env := newActivityTestEnv(t)

		body := `{"name":"nothing","date":"2024-01-17","inputMethod":"date-duration","duration":"0"}`
		rr := env.do(t, http.MethodPost, "/api/activities", "user-1", body)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var res handler.ErrorResponse
		assert.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, "validation_error", res.Error)
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		env := newActivityTestEnv(t)

		rr := env.do(t, http.MethodPost, "/api/activities", "user-1", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("no session cookie", func(t *testing.T) {
		env := newActivityTestEnv(t)

		body := `{"name":"x","date":"2024-01-17","inputMethod":"date-duration","duration":"1"}`
		rr := env.do(t, http.MethodPost, "/api/activities", "", body)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestActivityHandler_MutationWindow(t *testing.T) {
	t.Run("updating yesterday's activity is forbidden", func(t *testing.T) {
		env := newActivityTestEnv(t)

		createBody := `{"name":"old","date":"2024-01-16","inputMethod":"date-duration","duration":"1"}`
		created := env.do(t, http.MethodPost, "/api/activities", "user-1", createBody)
		assert.Equal(t, http.StatusCreated, created.Code)

		var activity model.Activity
		assert.NoError(t, json.NewDecoder(created.Body).Decode(&activity))

		updateBody := `{"name":"rewrite","date":"2024-01-16","inputMethod":"date-duration","duration":"8"}`
		rr := env.do(t, http.MethodPut, "/api/activities/"+activity.ID, "user-1", updateBody)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("deleting today's activity succeeds", func(t *testing.T) {
		env := newActivityTestEnv(t)

		createBody := `{"name":"scratch","date":"2024-01-17","inputMethod":"date-duration","duration":"1"}`
		created := env.do(t, http.MethodPost, "/api/activities", "user-1", createBody)

		var activity model.Activity
		assert.NoError(t, json.NewDecoder(created.Body).Decode(&activity))

		rr := env.do(t, http.MethodDelete, "/api/activities/"+activity.ID, "user-1", "")
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("another user's activity is not found", func(t *testing.T) {
		env := newActivityTestEnv(t)

		createBody := `{"name":"mine","date":"2024-01-17","inputMethod":"date-duration","duration":"1"}`
		created := env.do(t, http.MethodPost, "/api/activities", "user-a", createBody)

		var activity model.Activity
		assert.NoError(t, json.NewDecoder(created.Body).Decode(&activity))

		rr := env.do(t, http.MethodDelete, "/api/activities/"+activity.ID, "user-b", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
