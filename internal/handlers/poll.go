package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/models"
)

// PollHandler handles poll and voting endpoints
type PollHandler struct {
	polls  PollService
	logger *zap.SugaredLogger
}

// NewPollHandler creates a new poll handler
func NewPollHandler(polls PollService, logger *zap.SugaredLogger) *PollHandler {
	return &PollHandler{polls: polls, logger: logger}
}

// Create handles POST /api/v1/poll/createpoll
func (h *PollHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "create poll")
		return
	}

	poll, err := h.polls.Create(r.Context(), actorFrom(r), &req)
	if err != nil {
		respondErr(w, h.logger, err, "create poll")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Poll created successfully",
		"poll":    poll,
	})
}

// List handles GET /api/v1/poll/getallpolls
func (h *PollHandler) List(w http.ResponseWriter, r *http.Request) {
	polls, err := h.polls.List(r.Context())
	if err != nil {
		respondErr(w, h.logger, err, "list polls")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"polls": polls})
}

// Active handles GET /api/v1/poll/polls/active
func (h *PollHandler) Active(w http.ResponseWriter, r *http.Request) {
	polls, err := h.polls.ListActive(r.Context())
	if err != nil {
		respondErr(w, h.logger, err, "list active polls")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"polls": polls})
}

// Get handles GET /api/v1/poll/poll/{id}
func (h *PollHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "get poll")
		return
	}

	poll, err := h.polls.Get(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, err, "get poll")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"poll":       poll,
		"results":    poll.Results(),
		"totalVotes": poll.TotalVotes(),
	})
}

// Analytics handles GET /api/v1/poll/poll/{id}/analytics
func (h *PollHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "poll analytics")
		return
	}

	analytics, err := h.polls.Analytics(r.Context(), id)
	if err != nil {
		respondErr(w, h.logger, err, "poll analytics")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"analytics": analytics})
}

// Delete handles DELETE /api/v1/poll/poll/{id}
func (h *PollHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "delete poll")
		return
	}

	if err := h.polls.Delete(r.Context(), id); err != nil {
		respondErr(w, h.logger, err, "delete poll")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Poll deleted successfully"})
}

// Vote handles POST /api/v1/poll/votepoll/{id}
func (h *PollHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "vote")
		return
	}

	var req models.VotePollRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "vote")
		return
	}

	poll, err := h.polls.Vote(r.Context(), actorFrom(r), id, req.SelectedOption)
	if err != nil {
		respondErr(w, h.logger, err, "vote")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Vote recorded successfully",
		"poll":    poll,
	})
}
