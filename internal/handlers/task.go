package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/models"
)

// TaskHandler handles guard task endpoints
type TaskHandler struct {
	tasks  TaskService
	logger *zap.SugaredLogger
}

// NewTaskHandler creates a new guard task handler
func NewTaskHandler(tasks TaskService, logger *zap.SugaredLogger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

// Create handles POST /api/v1/guardtask/create
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "create task")
		return
	}

	task, err := h.tasks.Create(r.Context(), actorFrom(r), &req)
	if err != nil {
		respondErr(w, h.logger, err, "create task")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Task assigned successfully",
		"task":    task,
	})
}

// Mine handles GET /api/v1/guardtask/mytasks
func (h *TaskHandler) Mine(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListMine(r.Context(), actorFrom(r).UserID)
	if err != nil {
		respondErr(w, h.logger, err, "list my tasks")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// Unachieved handles GET /api/v1/guardtask/unachieved
func (h *TaskHandler) Unachieved(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListUnachieved(r.Context())
	if err != nil {
		respondErr(w, h.logger, err, "list unachieved tasks")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"tasks": tasks})
}

// UpdateStatus handles POST /api/v1/guardtask/update/{id}
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "update task")
		return
	}

	var req models.UpdateTaskRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondErr(w, h.logger, err, "update task")
		return
	}

	task, err := h.tasks.UpdateStatus(r.Context(), actorFrom(r), id, req.Status)
	if err != nil {
		respondErr(w, h.logger, err, "update task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// Achieve handles POST /api/v1/guardtask/achieve/{id}
func (h *TaskHandler) Achieve(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "achieve task")
		return
	}

	task, err := h.tasks.Achieve(r.Context(), actorFrom(r), id)
	if err != nil {
		respondErr(w, h.logger, err, "achieve task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Task marked as achieved",
		"task":    task,
	})
}

// Delete handles DELETE /api/v1/guardtask/deleteTask/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		respondErr(w, h.logger, err, "delete task")
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		respondErr(w, h.logger, err, "delete task")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}
