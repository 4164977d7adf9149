package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/database"
	"github.com/societyhub/community-server/internal/models"
	"github.com/societyhub/community-server/internal/workflow"
)

const taskColumns = `id, title, description, assigned_to, created_by, status, created_at, updated_at`

func scanTask(row rowScanner) (*models.GuardTask, error) {
	var t models.GuardTask
	var createdBy *uuid.UUID
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.AssignedTo, &createdBy, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		t.CreatedBy = *createdBy
	}
	return &t, nil
}

// TaskService handles work assigned to guards
type TaskService struct {
	clock
	db     database.DB
	users  *UserService
	logger *zap.SugaredLogger
}

// NewTaskService creates a new guard task service
func NewTaskService(db database.DB, users *UserService, logger *zap.SugaredLogger) *TaskService {
	return &TaskService{db: db, users: users, logger: logger}
}

// Create assigns a new task to a guard
func (s *TaskService) Create(ctx context.Context, actor models.Actor, req *models.CreateTaskRequest) (*models.GuardTask, error) {
	assignee, err := s.users.Get(ctx, req.AssignedTo)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("Guard not found")
		}
		return nil, err
	}
	if assignee.Role != models.RoleGuard {
		return nil, apperr.ValidationFields("Tasks can only be assigned to guards",
			map[string]string{"assignedTo": "Tasks can only be assigned to guards"})
	}

	now := s.Now()
	t := &models.GuardTask{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  assignee.ID,
		Assignee:    assignee.Ref(),
		CreatedBy:   actor.UserID,
		Status:      models.TaskAssigned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query := `
		INSERT INTO guard_tasks (id, title, description, assigned_to, created_by, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.Exec(ctx, query, t.ID, t.Title, t.Description, t.AssignedTo, t.CreatedBy, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	s.logger.Infow("Task assigned", "task_id", t.ID, "guard_id", t.AssignedTo)
	return t, nil
}

// ListMine returns the tasks assigned to one guard
func (s *TaskService) ListMine(ctx context.Context, guardID uuid.UUID) ([]models.GuardTask, error) {
	return s.list(ctx, `SELECT `+taskColumns+` FROM guard_tasks WHERE assigned_to = $1 ORDER BY created_at DESC`, guardID)
}

// ListUnachieved returns every task an admin has not yet signed off, with the
// assignee populated.
func (s *TaskService) ListUnachieved(ctx context.Context) ([]models.GuardTask, error) {
	tasks, err := s.list(ctx, `SELECT `+taskColumns+` FROM guard_tasks WHERE status <> $1 ORDER BY created_at DESC`,
		models.TaskAchieved)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].AssignedTo
	}
	refs, err := loadUserRefs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Assignee = refs[tasks[i].AssignedTo]
	}
	return tasks, nil
}

func (s *TaskService) list(ctx context.Context, query string, args ...any) ([]models.GuardTask, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.GuardTask{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// Get returns one task
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*models.GuardTask, error) {
	t, err := scanTask(s.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM guard_tasks WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "Task not found", "get task")
	}
	return t, nil
}

// UpdateStatus moves a task along assigned -> in_progress -> completed,
// or marks a completed task achieved.
func (s *TaskService) UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, to models.TaskStatus) (*models.GuardTask, error) {
	next, err := applyTransition(ctx, "task",
		func(ctx context.Context) (models.GuardTask, error) {
			t, err := s.Get(ctx, id)
			if err != nil {
				return models.GuardTask{}, err
			}
			return *t, nil
		},
		func(cur models.GuardTask) (models.GuardTask, error) {
			return workflow.TransitionTask(cur, to, actor, s.Now())
		},
		func(ctx context.Context, cur, next models.GuardTask) (bool, error) {
			tag, err := s.db.Exec(ctx,
				`UPDATE guard_tasks SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
				next.ID, next.Status, next.UpdatedAt, cur.Status)
			if err != nil {
				return false, fmt.Errorf("update task: %w", err)
			}
			return tag.RowsAffected() == 1, nil
		},
	)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Task status updated", "task_id", id, "status", next.Status, "by", actor.UserID)
	return &next, nil
}

// Achieve is the admin sign-off on a completed task
func (s *TaskService) Achieve(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.GuardTask, error) {
	return s.UpdateStatus(ctx, actor, id, models.TaskAchieved)
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM guard_tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Task not found")
	}
	return nil
}
