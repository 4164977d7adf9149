package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/models"
)

// SOSHandler handles emergency alert endpoints
type SOSHandler struct {
	alerts SOSService
	logger *zap.SugaredLogger
}

// NewSOSHandler creates a new SOS handler
func NewSOSHandler(alerts SOSService, logger *zap.SugaredLogger) *SOSHandler {
	return &SOSHandler{alerts: alerts, logger: logger}
}

// Create handles POST /api/v1/sos/create
func (h *SOSHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSOSRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "create sos")
		return
	}

	alert, err := h.alerts.Create(r.Context(), actorFrom(r), &req)
	if err != nil {
		respondErr(w, h.logger, err, "create sos")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "SOS alert raised",
		"alert":   alert,
	})
}

// List handles GET /api/v1/sos/all
func (h *SOSHandler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.alerts.List(r.Context())
	if err != nil {
		respondErr(w, h.logger, err, "list sos")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// Respond handles POST /api/v1/sos/respond/{id}
func (h *SOSHandler) Respond(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "respond sos")
		return
	}

	alert, err := h.alerts.Respond(r.Context(), actorFrom(r), id)
	if err != nil {
		respondErr(w, h.logger, err, "respond sos")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "SOS alert resolved",
		"alert":   alert,
	})
}
