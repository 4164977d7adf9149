package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/models"
)

// UserHandler handles user directory and profile endpoints
type UserHandler struct {
	users  UserService
	logger *zap.SugaredLogger
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserService, logger *zap.SugaredLogger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// List handles GET /api/v1/users/allusers
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), "")
	if err != nil {
		respondErr(w, h.logger, err, "list users")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// ListByRole handles GET /api/v1/users/allusers/{role}
func (h *UserHandler) ListByRole(w http.ResponseWriter, r *http.Request) {
	role := models.Role(chi.URLParam(r, "role"))
	if !role.Valid() {
		respondErr(w, h.logger, apperr.Validation("Invalid role"), "list users by role")
		return
	}

	users, err := h.users.List(r.Context(), role)
	if err != nil {
		respondErr(w, h.logger, err, "list users by role")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// Get handles GET /api/v1/users/getuser/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "get user")
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, err, "get user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// Update handles POST /api/v1/users/updateuser/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "update user")
		return
	}

	var req models.UpdateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "update user")
		return
	}

	user, err := h.users.Update(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		respondErr(w, h.logger, err, "update user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user":    user,
	})
}

// Delete handles DELETE /api/v1/users/deleteuser/{id}
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "delete user")
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		respondErr(w, h.logger, err, "delete user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
