package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/database"
	"github.com/societyhub/community-server/internal/models"
	"github.com/societyhub/community-server/internal/workflow"
)

const sosColumns = `id, user_id, type, is_resolved, responded_by, resolved_at, created_at, updated_at`

func scanSOS(row rowScanner) (*models.SOSAlert, error) {
	var a models.SOSAlert
	err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.IsResolved, &a.RespondedBy, &a.ResolvedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SOSService handles emergency alerts
type SOSService struct {
	clock
	db     database.DB
	logger *zap.SugaredLogger
}

// NewSOSService creates a new SOS service
func NewSOSService(db database.DB, logger *zap.SugaredLogger) *SOSService {
	return &SOSService{db: db, logger: logger}
}

// Create raises an unresolved alert
func (s *SOSService) Create(ctx context.Context, actor models.Actor, req *models.CreateSOSRequest) (*models.SOSAlert, error) {
	now := s.Now()
	a := &models.SOSAlert{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		Type:      req.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO sos_alerts (id, user_id, type, is_resolved, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
	`
	if _, err := s.db.Exec(ctx, query, a.ID, a.UserID, a.Type, a.CreatedAt, a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert sos alert: %w", err)
	}

	s.logger.Warnw("SOS alert raised", "alert_id", a.ID, "type", a.Type, "user_id", a.UserID)
	return a, nil
}

// List returns every alert, unresolved first, with reporter and responder populated.
func (s *SOSService) List(ctx context.Context) ([]models.SOSAlert, error) {
	rows, err := s.db.Query(ctx, `SELECT `+sosColumns+` FROM sos_alerts ORDER BY is_resolved, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sos alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.SOSAlert{}
	var ids []uuid.UUID
	for rows.Next() {
		a, err := scanSOS(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sos alert: %w", err)
		}
		alerts = append(alerts, *a)
		ids = append(ids, a.UserID)
		if a.RespondedBy != nil {
			ids = append(ids, *a.RespondedBy)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sos alerts: %w", err)
	}

	refs, err := loadUserRefs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range alerts {
		alerts[i].Reporter = refs[alerts[i].UserID]
		if alerts[i].RespondedBy != nil {
			alerts[i].Responder = refs[*alerts[i].RespondedBy]
		}
	}
	return alerts, nil
}

// Get returns one alert
func (s *SOSService) Get(ctx context.Context, id uuid.UUID) (*models.SOSAlert, error) {
	a, err := scanSOS(s.db.QueryRow(ctx, `SELECT `+sosColumns+` FROM sos_alerts WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "SOS alert not found", "get sos alert")
	}
	return a, nil
}

// Respond resolves an alert. Only the first responder is recorded.
func (s *SOSService) Respond(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.SOSAlert, error) {
	next, err := applyTransition(ctx, "SOS alert",
		func(ctx context.Context) (models.SOSAlert, error) {
			a, err := s.Get(ctx, id)
			if err != nil {
				return models.SOSAlert{}, err
			}
			return *a, nil
		},
		func(cur models.SOSAlert) (models.SOSAlert, error) {
			return workflow.RespondSOS(cur, actor, s.Now())
		},
		func(ctx context.Context, _, next models.SOSAlert) (bool, error) {
			tag, err := s.db.Exec(ctx, `
				UPDATE sos_alerts SET is_resolved = TRUE, responded_by = $2, resolved_at = $3, updated_at = $3
				WHERE id = $1 AND NOT is_resolved`,
				next.ID, next.RespondedBy, next.ResolvedAt)
			if err != nil {
				return false, fmt.Errorf("resolve sos alert: %w", err)
			}
			return tag.RowsAffected() == 1, nil
		},
	)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("SOS alert resolved", "alert_id", id, "responder_id", actor.UserID)
	return &next, nil
}
