package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/time-tracker/internal/service"
)

// AdminHandler serves the admin panel endpoints: user management and
// the all-keys view. Routes are mounted behind RequireSession and
// RequireAdmin, so by the time a request lands here the caller is a
// verified admin.
type AdminHandler struct {
	users  *service.UserService
	keys   *service.APIKeyService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(users *service.UserService, keys *service.APIKeyService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:  users,
		keys:   keys,
		logger: logger,
	}
}

// HandleListUsers returns all users, optionally filtered by a search
// query.
//
// HTTP: GET /api/admin/users[?search=substr]
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleCreateUser creates an account on a user's behalf. Registration
// is closed after the first user, so this is how every other account
// comes to exist.
//
// HTTP: POST /api/admin/users
// BODY: {"username": "...", "password": "...", "isAdmin": false}
func (h *AdminHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		IsAdmin  bool   `json:"isAdmin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	user, err := h.users.Create(r.Context(), req.Username, req.Password, req.IsAdmin)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleDeleteUser removes an account and everything it owns. Deleting
// your own account is refused.
//
// HTTP: DELETE /api/admin/users/{id}
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actingUserID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.users.Delete(r.Context(), actingUserID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleResetPassword sets a new password for a user.
//
// HTTP: PUT /api/admin/users/{id}/password
// BODY: {"password": "..."}
func (h *AdminHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	if err := h.users.ResetPassword(r.Context(), r.PathValue("id"), req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// HandleListKeys returns every API key with its owner's username.
//
// HTTP: GET /api/admin/keys
func (h *AdminHandler) HandleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.keys.ListAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, keys)
}

// HandleDeleteKey revokes any user's key.
//
// HTTP: DELETE /api/admin/keys/{id}
func (h *AdminHandler) HandleDeleteKey(w http.ResponseWriter, r *http.Request) {
	if err := h.keys.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
