package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/models"
)

// BroadcastHandler handles admin announcement endpoints
type BroadcastHandler struct {
	broadcasts BroadcastService
	form       ImageForm
	logger     *zap.SugaredLogger
}

// NewBroadcastHandler creates a new broadcast handler
func NewBroadcastHandler(broadcasts BroadcastService, form ImageForm, logger *zap.SugaredLogger) *BroadcastHandler {
	return &BroadcastHandler{broadcasts: broadcasts, form: form, logger: logger}
}

// Create handles POST /api/v1/broadcast/createBroadcast
func (h *BroadcastHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.BroadcastRequest
	header, err := h.form.decode(w, r, &req)
	if err != nil {
		respondErr(w, h.logger, err, "create broadcast")
		return
	}

	image, err := h.form.save(r, header)
	if err != nil {
		respondErr(w, h.logger, err, "create broadcast")
		return
	}

	broadcast, err := h.broadcasts.Create(r.Context(), actorFrom(r), &req, image)
	if err != nil {
		if rmErr := h.form.remove(r.Context(), image); rmErr != nil {
			h.logger.Warnw("Failed to remove orphaned broadcast image", "image", image, "error", rmErr)
		}
		respondErr(w, h.logger, err, "create broadcast")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Broadcast created successfully",
		"broadcast": broadcast,
	})
}

// List handles GET /api/v1/broadcast/getAllBroadcast
func (h *BroadcastHandler) List(w http.ResponseWriter, r *http.Request) {
	broadcasts, err := h.broadcasts.List(r.Context())
	if err != nil {
		respondErr(w, h.logger, err, "list broadcasts")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"broadcasts": broadcasts})
}

// Update handles POST /api/v1/broadcast/updateBroadcast/{id}
func (h *BroadcastHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "update broadcast")
		return
	}

	var req models.UpdateBroadcastRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "update broadcast")
		return
	}

	broadcast, err := h.broadcasts.Update(r.Context(), id, &req)
	if err != nil {
		respondErr(w, h.logger, err, "update broadcast")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Broadcast updated successfully",
		"broadcast": broadcast,
	})
}

// Delete handles DELETE /api/v1/broadcast/deleteBroadcast/{id}
func (h *BroadcastHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "delete broadcast")
		return
	}

	image, err := h.broadcasts.Delete(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, err, "delete broadcast")
		return
	}
	if err := h.form.remove(r.Context(), image); err != nil {
		h.logger.Warnw("Failed to remove broadcast image", "broadcast_id", id, "image", image, "error", err)
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Broadcast deleted successfully"})
}
