package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/database"
	"github.com/societyhub/community-server/internal/models"
	"github.com/societyhub/community-server/internal/workflow"
)

const gatePassColumns = `id, resident_id, visitor_name, visit_purpose, visit_time, guard_comments, status, created_at, updated_at`

func scanGatePass(row rowScanner) (*models.GatePass, error) {
	var gp models.GatePass
	err := row.Scan(&gp.ID, &gp.ResidentID, &gp.VisitorName, &gp.VisitPurpose, &gp.VisitTime,
		&gp.GuardComments, &gp.Status, &gp.CreatedAt, &gp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &gp, nil
}

// GatePassService handles visitor gate passes
type GatePassService struct {
	clock
	db     database.DB
	logger *zap.SugaredLogger
}

// NewGatePassService creates a new gate pass service
func NewGatePassService(db database.DB, logger *zap.SugaredLogger) *GatePassService {
	return &GatePassService{db: db, logger: logger}
}

// Request stores a pending gate pass raised by a resident
func (s *GatePassService) Request(ctx context.Context, actor models.Actor, req *models.GatePassRequest) (*models.GatePass, error) {
	now := s.Now()
	gp := &models.GatePass{
		ID:            uuid.New(),
		ResidentID:    actor.UserID,
		VisitorName:   req.VisitorName,
		VisitPurpose:  req.VisitPurpose,
		VisitTime:     req.VisitTime,
		GuardComments: req.GuardComments,
		Status:        models.GatePassPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	query := `
		INSERT INTO gate_passes (id, resident_id, visitor_name, visit_purpose, visit_time, guard_comments, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.Exec(ctx, query, gp.ID, gp.ResidentID, gp.VisitorName, gp.VisitPurpose, gp.VisitTime,
		gp.GuardComments, gp.Status, gp.CreatedAt, gp.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert gate pass: %w", err)
	}

	s.logger.Infow("Gate pass requested", "gatepass_id", gp.ID, "resident_id", gp.ResidentID)
	return gp, nil
}

// ListAll returns every gate pass with the resident populated
func (s *GatePassService) ListAll(ctx context.Context) ([]models.GatePass, error) {
	return s.listPopulated(ctx, `SELECT `+gatePassColumns+` FROM gate_passes ORDER BY created_at DESC`)
}

// ListPending returns passes still awaiting a guard decision
func (s *GatePassService) ListPending(ctx context.Context) ([]models.GatePass, error) {
	return s.listPopulated(ctx, `SELECT `+gatePassColumns+` FROM gate_passes WHERE status = $1 ORDER BY visit_time`,
		models.GatePassPending)
}

// ListMine returns the passes a resident has requested
func (s *GatePassService) ListMine(ctx context.Context, residentID uuid.UUID) ([]models.GatePass, error) {
	return s.list(ctx, `SELECT `+gatePassColumns+` FROM gate_passes WHERE resident_id = $1 ORDER BY created_at DESC`,
		residentID)
}

// VisitorLog returns the passes whose visit falls on the calendar day of day,
// in day's location.
func (s *GatePassService) VisitorLog(ctx context.Context, day time.Time) ([]models.GatePass, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	return s.listPopulated(ctx,
		`SELECT `+gatePassColumns+` FROM gate_passes WHERE visit_time >= $1 AND visit_time < $2 ORDER BY visit_time`,
		start, end)
}

func (s *GatePassService) listPopulated(ctx context.Context, query string, args ...any) ([]models.GatePass, error) {
	passes, err := s.list(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(passes))
	for i := range passes {
		ids[i] = passes[i].ResidentID
	}
	refs, err := loadUserRefs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range passes {
		passes[i].Resident = refs[passes[i].ResidentID]
	}
	return passes, nil
}

func (s *GatePassService) list(ctx context.Context, query string, args ...any) ([]models.GatePass, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list gate passes: %w", err)
	}
	defer rows.Close()

	passes := []models.GatePass{}
	for rows.Next() {
		gp, err := scanGatePass(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gate pass: %w", err)
		}
		passes = append(passes, *gp)
	}
	return passes, rows.Err()
}

// Get returns one gate pass
func (s *GatePassService) Get(ctx context.Context, id uuid.UUID) (*models.GatePass, error) {
	gp, err := scanGatePass(s.db.QueryRow(ctx, `SELECT `+gatePassColumns+` FROM gate_passes WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "Gate pass not found", "get gate pass")
	}
	return gp, nil
}

// UpdateStatus records a guard's approval or rejection. Of two guards acting
// on the same pending pass, exactly one succeeds; the other is told the pass
// was already decided.
func (s *GatePassService) UpdateStatus(ctx context.Context, actor models.Actor, id uuid.UUID, req *models.UpdateGatePassRequest) (*models.GatePass, error) {
	next, err := applyTransition(ctx, "gate pass",
		func(ctx context.Context) (models.GatePass, error) {
			gp, err := s.Get(ctx, id)
			if err != nil {
				return models.GatePass{}, err
			}
			return *gp, nil
		},
		func(cur models.GatePass) (models.GatePass, error) {
			return workflow.TransitionGatePass(cur, req.Status, req.GuardComments, actor, s.Now())
		},
		func(ctx context.Context, cur, next models.GatePass) (bool, error) {
			tag, err := s.db.Exec(ctx, `
				UPDATE gate_passes SET status = $2, guard_comments = $3, updated_at = $4
				WHERE id = $1 AND status = $5`,
				next.ID, next.Status, next.GuardComments, next.UpdatedAt, cur.Status)
			if err != nil {
				return false, fmt.Errorf("update gate pass: %w", err)
			}
			return tag.RowsAffected() == 1, nil
		},
	)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Gate pass decided", "gatepass_id", id, "status", next.Status, "guard_id", actor.UserID)
	return &next, nil
}
