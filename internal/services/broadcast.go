package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/database"
	"github.com/societyhub/community-server/internal/models"
)

const broadcastColumns = `id, admin_id, title, message, type, category, image, created_at, updated_at`

func scanBroadcast(row rowScanner) (*models.Broadcast, error) {
	var b models.Broadcast
	var adminID *uuid.UUID
	err := row.Scan(&b.ID, &adminID, &b.Title, &b.Message, &b.Type, &b.Category, &b.Image, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if adminID != nil {
		b.AdminID = *adminID
	}
	return &b, nil
}

// BroadcastService handles admin announcements
type BroadcastService struct {
	clock
	db     database.DB
	logger *zap.SugaredLogger
}

// NewBroadcastService creates a new broadcast service
func NewBroadcastService(db database.DB, logger *zap.SugaredLogger) *BroadcastService {
	return &BroadcastService{db: db, logger: logger}
}

// Create stores an announcement. image is the stored upload reference, if any.
func (s *BroadcastService) Create(ctx context.Context, actor models.Actor, req *models.BroadcastRequest, image string) (*models.Broadcast, error) {
	now := s.Now()
	b := &models.Broadcast{
		ID:        uuid.New(),
		AdminID:   actor.UserID,
		Title:     req.Title,
		Message:   req.Message,
		Type:      req.Type,
		Category:  req.Category,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO broadcasts (id, admin_id, title, message, type, category, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.Exec(ctx, query, b.ID, b.AdminID, b.Title, b.Message, b.Type, b.Category, b.Image, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert broadcast: %w", err)
	}

	s.logger.Infow("Broadcast created", "broadcast_id", b.ID, "category", b.Category)
	return b, nil
}

// List returns all broadcasts, newest first, with the author populated
func (s *BroadcastService) List(ctx context.Context) ([]models.Broadcast, error) {
	rows, err := s.db.Query(ctx, `SELECT `+broadcastColumns+` FROM broadcasts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}
	defer rows.Close()

	broadcasts := []models.Broadcast{}
	for rows.Next() {
		b, err := scanBroadcast(rows)
		if err != nil {
			return nil, fmt.Errorf("scan broadcast: %w", err)
		}
		broadcasts = append(broadcasts, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list broadcasts: %w", err)
	}

	ids := make([]uuid.UUID, len(broadcasts))
	for i := range broadcasts {
		ids[i] = broadcasts[i].AdminID
	}
	refs, err := loadUserRefs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range broadcasts {
		broadcasts[i].Admin = refs[broadcasts[i].AdminID]
	}
	return broadcasts, nil
}

// Update changes the non-empty fields of req in a single statement
func (s *BroadcastService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateBroadcastRequest) (*models.Broadcast, error) {
	query := `
		UPDATE broadcasts SET
			title      = COALESCE(NULLIF($2, ''), title),
			message    = COALESCE(NULLIF($3, ''), message),
			type       = COALESCE(NULLIF($4, ''), type),
			category   = COALESCE(NULLIF($5, ''), category),
			updated_at = $6
		WHERE id = $1
		RETURNING ` + broadcastColumns

	b, err := scanBroadcast(s.db.QueryRow(ctx, query,
		id, req.Title, req.Message, string(req.Type), string(req.Category), s.Now()))
	if err != nil {
		return nil, notFoundOr(err, "Broadcast not found", "update broadcast")
	}
	return b, nil
}

// Delete removes a broadcast and returns its image reference so the caller
// can discard the stored file.
func (s *BroadcastService) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	var image string
	err := s.db.QueryRow(ctx, `DELETE FROM broadcasts WHERE id = $1 RETURNING image`, id).Scan(&image)
	if err != nil {
		if database.IsNotFound(err) {
			return "", apperr.NotFound("Broadcast not found")
		}
		return "", fmt.Errorf("delete broadcast: %w", err)
	}
	s.logger.Infow("Broadcast deleted", "broadcast_id", id)
	return image, nil
}
