package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/time-tracker/internal/service"
)

// StatsHandler serves the statistics and leaderboard endpoints for the
// browser UI.
type StatsHandler struct {
	stats  *service.StatsService
	logger *slog.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats *service.StatsService, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		stats:  stats,
		logger: logger,
	}
}

// HandleStats returns the authenticated user's stats snapshot: today,
// this week, last week, and the week-over-week change.
//
// HTTP: GET /api/stats
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.stats.UserStats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleLeaderboard returns the current week's ranking, one entry per
// user, plus the week bounds.
//
// HTTP: GET /api/leaderboard
func (h *StatsHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stats.WeeklyLeaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	weekStart, weekEnd := h.stats.WeekDateRange()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
		"weekStart":   weekStart,
		"weekEnd":     weekEnd,
	})
}
