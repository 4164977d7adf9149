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

const complaintColumns = `id, user_id, issue, urgency, status, image, created_at, updated_at`

func scanComplaint(row rowScanner) (*models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(&c.ID, &c.UserID, &c.Issue, &c.Urgency, &c.Status, &c.Image, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ComplaintService handles complaint business logic
type ComplaintService struct {
	clock
	db     database.DB
	logger *zap.SugaredLogger
}

// NewComplaintService creates a new complaint service
func NewComplaintService(db database.DB, logger *zap.SugaredLogger) *ComplaintService {
	return &ComplaintService{db: db, logger: logger}
}

// Raise stores a new open complaint. image is the stored upload reference, if any.
func (s *ComplaintService) Raise(ctx context.Context, actor models.Actor, req *models.RaiseComplaintRequest, image string) (*models.Complaint, error) {
	now := s.Now()
	c := &models.Complaint{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		Issue:     req.Issue,
		Urgency:   req.Urgency,
		Status:    models.ComplaintOpen,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO complaints (id, user_id, issue, urgency, status, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.Exec(ctx, query, c.ID, c.UserID, c.Issue, c.Urgency, c.Status, c.Image, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert complaint: %w", err)
	}

	s.logger.Infow("Complaint raised", "complaint_id", c.ID, "urgency", c.Urgency)
	return c, nil
}

// ListByUser returns the complaints one user has raised, newest first.
func (s *ComplaintService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Complaint, error) {
	return s.list(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

// ListAll returns every complaint with the raising user populated.
func (s *ComplaintService) ListAll(ctx context.Context) ([]models.Complaint, error) {
	complaints, err := s.list(ctx, `SELECT `+complaintColumns+` FROM complaints ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(complaints))
	for i := range complaints {
		ids[i] = complaints[i].UserID
	}
	refs, err := loadUserRefs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range complaints {
		complaints[i].User = refs[complaints[i].UserID]
	}
	return complaints, nil
}

func (s *ComplaintService) list(ctx context.Context, query string, args ...any) ([]models.Complaint, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	complaints := []models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	return complaints, rows.Err()
}

// Get returns one complaint
func (s *ComplaintService) Get(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	c, err := scanComplaint(s.db.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "Complaint not found", "get complaint")
	}
	return c, nil
}

// UpdateStatus moves a complaint through its workflow
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, to models.ComplaintStatus) (*models.Complaint, error) {
	next, err := applyTransition(ctx, "complaint",
		func(ctx context.Context) (models.Complaint, error) {
			c, err := s.Get(ctx, id)
			if err != nil {
				return models.Complaint{}, err
			}
			return *c, nil
		},
		func(cur models.Complaint) (models.Complaint, error) {
			return workflow.TransitionComplaint(cur, to, actor, s.Now())
		},
		func(ctx context.Context, cur, next models.Complaint) (bool, error) {
			tag, err := s.db.Exec(ctx,
				`UPDATE complaints SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
				next.ID, next.Status, next.UpdatedAt, cur.Status)
			if err != nil {
				return false, fmt.Errorf("update complaint: %w", err)
			}
			return tag.RowsAffected() == 1, nil
		},
	)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Complaint status updated", "complaint_id", id, "status", next.Status, "by", actor.UserID)
	return &next, nil
}

// Delete removes a complaint and returns its image reference so the caller
// can remove the file. Only the resident who raised it or an admin may.
func (s *ComplaintService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) (string, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if actor.Role != models.RoleAdmin && actor.UserID != c.UserID {
		return "", apperr.Forbidden("You can only delete your own complaints")
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM complaints WHERE id = $1`, id)
	if err != nil {
		return "", fmt.Errorf("delete complaint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", apperr.NotFound("Complaint not found")
	}
	return c.Image, nil
}
