package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/models"
)

// ComplaintHandler handles complaint-related HTTP endpoints
type ComplaintHandler struct {
	complaints ComplaintService
	form       ImageForm
	logger     *zap.SugaredLogger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(complaints ComplaintService, form ImageForm, logger *zap.SugaredLogger) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, form: form, logger: logger}
}

// Raise handles POST /api/v1/complaints/raise-complaint
// Accepts multipart form data with an optional "image" part.
func (h *ComplaintHandler) Raise(w http.ResponseWriter, r *http.Request) {
	var req models.RaiseComplaintRequest
	header, err := h.form.decode(w, r, &req)
	if err != nil {
		respondErr(w, h.logger, err, "raise complaint")
		return
	}

	image, err := h.form.save(r, header)
	if err != nil {
		respondErr(w, h.logger, err, "raise complaint")
		return
	}

	complaint, err := h.complaints.Raise(r.Context(), actorFrom(r), &req, image)
	if err != nil {
		if rmErr := h.form.remove(r.Context(), image); rmErr != nil {
			h.logger.Warnw("Failed to remove orphaned complaint image", "image", image, "error", rmErr)
		}
		respondErr(w, h.logger, err, "raise complaint")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Complaint raised successfully",
		"complaint": complaint,
	})
}

// ListByUser handles GET /api/v1/complaints/getComplaints/{userId}
// Residents only see their own; admins and guards may look up anyone.
func (h *ComplaintHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userId")
	if err != nil {
		respondErr(w, h.logger, err, "list complaints")
		return
	}

	actor := actorFrom(r)
	if actor.UserID != userID && actor.Role != models.RoleAdmin && actor.Role != models.RoleGuard {
		respondErr(w, h.logger, apperr.Forbidden("You can only view your own complaints"), "list complaints")
		return
	}

	complaints, err := h.complaints.ListByUser(r.Context(), userID)
	if err != nil {
		respondErr(w, h.logger, err, "list complaints")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"complaints": complaints})
}

// ListAll handles GET /api/v1/complaints/getAllComplaints
func (h *ComplaintHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.complaints.ListAll(r.Context())
	if err != nil {
		respondErr(w, h.logger, err, "list all complaints")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"complaints": complaints})
}

// UpdateStatus handles POST /api/v1/complaints/updateComplaint/{id}
func (h *ComplaintHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "update complaint")
		return
	}

	var req models.UpdateComplaintRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "update complaint")
		return
	}

	complaint, err := h.complaints.UpdateStatus(r.Context(), actorFrom(r), id, req.Status)
	if err != nil {
		respondErr(w, h.logger, err, "update complaint")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Complaint updated successfully",
		"complaint": complaint,
	})
}

// Delete handles DELETE /api/v1/complaints/deleteComplaint/{id}
func (h *ComplaintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "delete complaint")
		return
	}

	image, err := h.complaints.Delete(r.Context(), actorFrom(r), id)
	if err != nil {
		respondErr(w, h.logger, err, "delete complaint")
		return
	}
	if err := h.form.remove(r.Context(), image); err != nil {
		h.logger.Warnw("Failed to remove complaint image", "complaint_id", id, "image", image, "error", err)
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Complaint deleted successfully"})
}
