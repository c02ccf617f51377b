package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sakif/time-tracker/internal/clock"
	"github.com/sakif/time-tracker/internal/model"
	"github.com/sakif/time-tracker/internal/repository"
)

// StatsService computes per-user statistics and the weekly leaderboard.
// Everything is derived fresh from activity rows on each call — nothing
// is cached or persisted.
type StatsService struct {
	repo   repository.ActivityRepository
	clk    *clock.Clock
	logger *slog.Logger
}

// NewStatsService creates a StatsService.
func NewStatsService(repo repository.ActivityRepository, clk *clock.Clock, logger *slog.Logger) *StatsService {
	return &StatsService{
		repo:   repo,
		clk:    clk,
		logger: logger,
	}
}

// UserStats returns a user's hour totals for today, this week, and last
// week, plus the week-over-week percentage change.
//
// All three ranges are anchored to JST via the injected clock. A user
// with no activities gets zeros, never nulls. The change is defined as 0
// when last week is empty — a percentage against a zero baseline has no
// meaning, and surfacing +Inf to a template helps nobody.
func (s *StatsService) UserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	today := s.clk.Today()
	weekStart, weekEnd := s.clk.CurrentWeekRange()
	lastStart, lastEnd := s.clk.LastWeekRange()

	todayHours, err := s.repo.SumDurationByUserAndDateRange(ctx, userID, today, today)
	if err != nil {
		return nil, fmt.Errorf("summing today's hours: %w", err)
	}

	thisWeekHours, err := s.repo.SumDurationByUserAndDateRange(ctx, userID, weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("summing this week's hours: %w", err)
	}

	lastWeekHours, err := s.repo.SumDurationByUserAndDateRange(ctx, userID, lastStart, lastEnd)
	if err != nil {
		return nil, fmt.Errorf("summing last week's hours: %w", err)
	}

	change := 0.0
	if lastWeekHours > 0 {
		change = (thisWeekHours - lastWeekHours) / lastWeekHours * 100
	}

	return &model.UserStats{
		TodayHours:         todayHours,
		ThisWeekHours:      thisWeekHours,
		LastWeekHours:      lastWeekHours,
		WeekOverWeekChange: change,
	}, nil
}

// WeeklyLeaderboard ranks every user by total hours logged in the
// current JST week.
//
// The repository's grouped sum covers ALL users (outer join), so users
// with zero activity still appear with 0 hours. Ordering is the
// service's job: total hours descending, then username ascending as a
// deterministic tie-break. Ranks are dense 1..N with no gaps; ties get
// consecutive distinct ranks.
func (s *StatsService) WeeklyLeaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	weekStart, weekEnd := s.clk.CurrentWeekRange()

	rows, err := s.repo.SumDurationGroupedByUserForRange(ctx, weekStart, weekEnd)
	if err != nil {
		s.logger.Error("failed to compute leaderboard", slog.String("error", err.Error()))
		return nil, fmt.Errorf("computing leaderboard: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalHours != rows[j].TotalHours {
			return rows[i].TotalHours > rows[j].TotalHours
		}
		return rows[i].Username < rows[j].Username
	})

	entries := make([]model.LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = model.LeaderboardEntry{
			Rank:       i + 1,
			UserID:     row.UserID,
			Username:   row.Username,
			TotalHours: row.TotalHours,
		}
	}

	return entries, nil
}

// WeekDateRange returns the current week's bounds formatted YYYY-MM-DD,
// for the API leaderboard envelope.
func (s *StatsService) WeekDateRange() (start, end string) {
	weekStart, weekEnd := s.clk.CurrentWeekRange()
	return clock.FormatDate(weekStart), clock.FormatDate(weekEnd)
}
