package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/time-tracker/internal/service"
)

// APIKeyHandler serves the user-facing key management endpoints. The
// admin key endpoints live on AdminHandler.
type APIKeyHandler struct {
	keys   *service.APIKeyService
	logger *slog.Logger
}

// NewAPIKeyHandler creates an APIKeyHandler.
func NewAPIKeyHandler(keys *service.APIKeyService, logger *slog.Logger) *APIKeyHandler {
	return &APIKeyHandler{
		keys:   keys,
		logger: logger,
	}
}

// HandleList returns the user's own keys. Only hashes are stored, so
// the response never contains a usable key.
//
// HTTP: GET /api/keys
func (h *APIKeyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	keys, err := h.keys.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, keys)
}

// HandleCreate generates a new key. The plaintext appears in this
// response and nowhere else, ever.
//
// HTTP: POST /api/keys
// BODY: {"name": "laptop"}
func (h *APIKeyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid JSON body"})
		return
	}

	plaintext, key, err := h.keys.Create(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"key":    plaintext,
		"record": key,
	})
}

// HandleDelete removes one of the user's own keys.
//
// HTTP: DELETE /api/keys/{id}
func (h *APIKeyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	if err := h.keys.DeleteOwn(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
