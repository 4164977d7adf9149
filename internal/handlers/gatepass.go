package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/models"
)

// GatePassHandler handles visitor gate pass endpoints
type GatePassHandler struct {
	passes GatePassService
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewGatePassHandler creates a new gate pass handler
func NewGatePassHandler(passes GatePassService, logger *zap.SugaredLogger) *GatePassHandler {
	return &GatePassHandler{passes: passes, logger: logger, now: time.Now}
}

// Request handles POST /api/v1/gatepass/requestGatepass
func (h *GatePassHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req models.GatePassRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "request gate pass")
		return
	}

	gp, err := h.passes.Request(r.Context(), actorFrom(r), &req)
	if err != nil {
		respondErr(w, h.logger, err, "request gate pass")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Gate pass requested successfully",
		"gatepass": gp,
	})
}

// ListAll handles GET /api/v1/gatepass/viewAllVisitorGatepass
func (h *GatePassHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	passes, err := h.passes.ListAll(r.Context())
	if err != nil {
		respondErr(w, h.logger, err, "list gate passes")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"gatepasses": passes})
}

// ListPending handles GET /api/v1/gatepass/allpendinggatepasses
func (h *GatePassHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	passes, err := h.passes.ListPending(r.Context())
	if err != nil {
		respondErr(w, h.logger, err, "list pending gate passes")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"gatepasses": passes})
}

// ListMine handles GET /api/v1/gatepass/mygatepass
func (h *GatePassHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	passes, err := h.passes.ListMine(r.Context(), actorFrom(r).UserID)
	if err != nil {
		respondErr(w, h.logger, err, "list my gate passes")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"gatepasses": passes})
}

// VisitorLog handles GET /api/v1/gatepass/visitorlog[?date=YYYY-MM-DD]
// Defaults to today in the server's time zone.
func (h *GatePassHandler) VisitorLog(w http.ResponseWriter, r *http.Request) {
	day := h.now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, day.Location())
		if err != nil {
			respondErr(w, h.logger, apperr.Validation("date must be formatted YYYY-MM-DD"), "visitor log")
			return
		}
		day = parsed
	}

	passes, err := h.passes.VisitorLog(r.Context(), day)
	if err != nil {
		respondErr(w, h.logger, err, "visitor log")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":     day.Format("2006-01-02"),
		"visitors": passes,
	})
}

// UpdateStatus handles POST /api/v1/gatepass/updateGatepassStatus/{id}
func (h *GatePassHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "update gate pass")
		return
	}

	var req models.UpdateGatePassRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "update gate pass")
		return
	}

	gp, err := h.passes.UpdateStatus(r.Context(), actorFrom(r), id, &req)
	if err != nil {
		respondErr(w, h.logger, err, "update gate pass")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Gate pass " + string(gp.Status),
		"gatepass": gp,
	})
}
