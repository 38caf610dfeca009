package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/toolshare/internal/security/audit"
	"github.com/yourorg/toolshare/internal/service"
)

// CreateUserRequest carries the fields for user registration
type CreateUserRequest struct {
	Username    string `json:"username"`
	ContactInfo string `json:"contactInfo"`
}

// UsersHandler serves the user profile endpoints
type UsersHandler struct {
	lending *service.LendingService
	audit   *audit.Logger
	logger  *slog.Logger
}

// NewUsersHandler creates a new users handler
func NewUsersHandler(lending *service.LendingService, auditLog *audit.Logger, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{lending: lending, audit: auditLog, logger: logger}
}

// Create handles POST /api/users
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, h.logger, "invalid request body")
		return
	}

	user, err := h.lending.CreateUser(r.Context(), req.Username, req.ContactInfo)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusCreated, user)
}

// Get handles GET /api/users/{id}
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.lending.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusOK, user)
}

// List handles GET /api/users
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.lending.ListUsers(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusOK, users)
}

// Update handles PUT /api/users/{id}. The payload is decoded into the
// partial-update shape, so identity fields in the input are ignored.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update service.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondBadRequest(w, h.logger, "invalid request body")
		return
	}

	user, err := h.lending.UpdateUser(r.Context(), r.PathValue("id"), update)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondData(w, h.logger, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	if err := h.lending.DeleteUser(r.Context(), userID); err != nil {
		h.audit.LogDeletion(r.Context(), "user", userID, "failed", err.Error())
		respondError(w, h.logger, err)
		return
	}
	h.audit.LogDeletion(r.Context(), "user", userID, "success", "")
	respondData(w, h.logger, http.StatusOK, map[string]string{"userId": userID})
}
