// Package handlers contains HTTP request handlers for the community API.
// Handlers parse requests, call services, and return JSON responses.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/middleware"
	"github.com/societyhub/community-server/internal/models"
)

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr renders a service error. Classified errors keep their message;
// anything else is logged and hidden behind a generic 500.
func respondErr(w http.ResponseWriter, logger *zap.SugaredLogger, err error, action string) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Errorw("Request failed", "action", action, "error", err)
	}

	body := map[string]interface{}{"error": apperr.PublicMessage(err)}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		body["details"] = fields
	}
	respondJSON(w, status, body)
}

// decodeAndValidate reads a JSON body into dst and runs its schema checks
func decodeAndValidate(r *http.Request, dst models.Validator) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Request body is required")
		}
		return apperr.Validation("Invalid request body")
	}
	return dst.Validate()
}

// parseID reads a uuid path parameter
func parseID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid " + name)
	}
	return id, nil
}

// actorFrom returns the authenticated caller. Routes using it sit behind
// RequireAuth, so a missing session is a wiring bug.
func actorFrom(r *http.Request) models.Actor {
	s, _ := middleware.SessionFrom(r.Context())
	return s.Actor
}
