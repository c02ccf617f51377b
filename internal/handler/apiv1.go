package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/time-tracker/internal/model"
	"github.com/sakif/time-tracker/internal/service"
)

// APIV1Handler serves the bearer-key JSON API under /api/v1. Responses
// use the {success, data} envelope external clients expect, distinct
// from the browser API's bare payloads.
type APIV1Handler struct {
	users  *service.UserService
	stats  *service.StatsService
	logger *slog.Logger
}

// NewAPIV1Handler creates an APIV1Handler.
func NewAPIV1Handler(users *service.UserService, stats *service.StatsService, logger *slog.Logger) *APIV1Handler {
	return &APIV1Handler{
		users:  users,
		stats:  stats,
		logger: logger,
	}
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// publicUser is the trimmed user shape exposed over the key API — no
// admin flag, no timestamps.
type publicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// HandleUser returns a user's profile and stats snapshot.
//
// HTTP: GET /api/v1/user/{id}
// Auth: Authorization: Bearer <api key>
func (h *APIV1Handler) HandleUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	stats, err := h.stats.UserStats(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data: map[string]interface{}{
			"user":  publicUser{ID: user.ID, Username: user.Username},
			"stats": stats,
		},
	})
}

// HandleLeaderboard returns the current week's ranking with the week
// bounds formatted YYYY-MM-DD in JST.
//
// HTTP: GET /api/v1/leaderboard
// Auth: Authorization: Bearer <api key>
func (h *APIV1Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.stats.WeeklyLeaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}

	weekStart, weekEnd := h.stats.WeekDateRange()
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data: map[string]interface{}{
			"leaderboard": entries,
			"weekStart":   weekStart,
			"weekEnd":     weekEnd,
		},
	})
}
