// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (business) → validates, enforces rules, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services accept primitives and small input structs, never HTTP types,
// and return domain errors (apperror) that the handler layer translates
// to status codes. Every service takes its repository as an interface so
// tests can substitute in-memory mocks.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/time-tracker/internal/apperror"
	"github.com/sakif/time-tracker/internal/clock"
	"github.com/sakif/time-tracker/internal/duration"
	"github.com/sakif/time-tracker/internal/model"
	"github.com/sakif/time-tracker/internal/repository"
)

// Validation constants.
const (
	MaxActivityNameLength = 100
	MaxDescriptionLength  = 2000
	DefaultRecentLimit    = 10
	MaxRecentLimit        = 100
)

// ActivityInput is the raw field bag for creating or updating an
// activity. All fields arrive as strings straight from the form or JSON
// body; the service owns parsing and validation.
type ActivityInput struct {
	Name        string
	Description string
	Date        string // YYYY-MM-DD
	InputMethod string // start-end | start-duration | date-duration
	StartTime   string // HH:MM, depending on method
	EndTime     string // HH:MM, depending on method
	Duration    string // decimal hours, depending on method
}

// ActivityService handles the business rules around logged activities:
// input validation, duration derivation, ownership scoping, and the
// same-day mutation window.
type ActivityService struct {
	repo   repository.ActivityRepository
	clk    *clock.Clock
	logger *slog.Logger
}

// NewActivityService creates an ActivityService. The clock is injected
// so tests can pin "today" and exercise the mutation window
// deterministically.
func NewActivityService(repo repository.ActivityRepository, clk *clock.Clock, logger *slog.Logger) *ActivityService {
	return &ActivityService{
		repo:   repo,
		clk:    clk,
		logger: logger,
	}
}

// Create validates the input, derives the canonical duration triple, and
// persists a new activity owned by userID.
func (s *ActivityService) Create(ctx context.Context, userID string, in ActivityInput) (*model.Activity, error) {
	name, date, err := s.validateCommon(in)
	if err != nil {
		return nil, err
	}

	result, err := duration.Calculate(in.InputMethod, duration.Fields{
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Duration:  in.Duration,
	})
	if err != nil {
		return nil, err
	}

	activity := &model.Activity{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Date:        date,
		StartTime:   result.StartTime,
		EndTime:     result.EndTime,
		Duration:    result.Hours,
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		s.logger.Error("failed to create activity",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating activity: %w", err)
	}

	s.logger.Info("activity created",
		slog.String("id", activity.ID),
		slog.String("userID", userID),
		slog.Float64("hours", activity.Duration),
	)

	return activity, nil
}

// GetByID returns a single activity, scoped to the requesting user.
func (s *ActivityService) GetByID(ctx context.Context, userID, id string) (*model.Activity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "activity ID is required")
	}
	return s.repo.GetByID(ctx, id, userID)
}

// List returns all of a user's activities, newest date first.
func (s *ActivityService) List(ctx context.Context, userID string) ([]model.Activity, error) {
	activities, err := s.repo.ListByUser(ctx, userID, 0)
	if err != nil {
		s.logger.Error("failed to list activities",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return activities, nil
}

// Recent returns the user's most recent activities, clamped to a sane
// limit. A non-positive limit falls back to the default.
func (s *ActivityService) Recent(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}
	activities, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent activities: %w", err)
	}
	return activities, nil
}

// Update modifies an existing activity.
//
// The same-day rule is checked against the FRESHLY fetched row, not
// whatever the client last saw: an activity that crossed the JST day
// boundary between page load and submit must be rejected, so the stored
// date is authoritative.
func (s *ActivityService) Update(ctx context.Context, userID, id string, in ActivityInput) (*model.Activity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperror.ValidationFailed("id", "activity ID is required")
	}

	activity, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMutable(activity); err != nil {
		return nil, err
	}

	name, date, err := s.validateCommon(in)
	if err != nil {
		return nil, err
	}

	result, err := duration.Calculate(in.InputMethod, duration.Fields{
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Duration:  in.Duration,
	})
	if err != nil {
		return nil, err
	}

	activity.Name = name
	activity.Description = strings.TrimSpace(in.Description)
	activity.Date = date
	activity.StartTime = result.StartTime
	activity.EndTime = result.EndTime
	activity.Duration = result.Hours

	if err := s.repo.Update(ctx, activity); err != nil {
		s.logger.Error("failed to update activity",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating activity: %w", err)
	}

	s.logger.Info("activity updated",
		slog.String("id", activity.ID),
		slog.String("userID", userID),
	)

	return activity, nil
}

// Delete removes an activity, subject to ownership and the same-day
// rule. Like Update, it re-fetches the row first.
func (s *ActivityService) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperror.ValidationFailed("id", "activity ID is required")
	}

	activity, err := s.repo.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if err := s.requireMutable(activity); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("activity deleted",
		slog.String("id", id),
		slog.String("userID", userID),
	)
	return nil
}

// requireMutable enforces the mutation window: once an activity's date
// is no longer "today" in JST it is read-only for ordinary users.
func (s *ActivityService) requireMutable(activity *model.Activity) error {
	if !s.clk.IsToday(activity.Date) {
		return apperror.Forbidden("activities can only be edited on the day they were logged")
	}
	return nil
}

// validateCommon checks the fields shared by create and update: name and
// date. Returns the trimmed name and the parsed date.
func (s *ActivityService) validateCommon(in ActivityInput) (string, time.Time, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", time.Time{}, apperror.ValidationFailed("name", "activity name is required")
	}
	if len(name) > MaxActivityNameLength {
		return "", time.Time{}, apperror.ValidationFailed("name",
			fmt.Sprintf("activity name must be %d characters or less", MaxActivityNameLength))
	}
	if len(in.Description) > MaxDescriptionLength {
		return "", time.Time{}, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDescriptionLength))
	}

	if strings.TrimSpace(in.Date) == "" {
		return "", time.Time{}, apperror.ValidationFailed("date", "date is required")
	}
	date, err := clock.ParseDate(strings.TrimSpace(in.Date))
	if err != nil {
		return "", time.Time{}, apperror.ValidationFailed("date", "date must be in YYYY-MM-DD format")
	}

	return name, date, nil
}
