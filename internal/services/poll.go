package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/database"
	"github.com/societyhub/community-server/internal/models"
	"github.com/societyhub/community-server/internal/workflow"
)

const pollColumns = `id, question, options, votes, created_by, expires_at, created_at`

func scanPoll(row rowScanner) (*models.Poll, error) {
	var p models.Poll
	var createdBy *uuid.UUID
	err := row.Scan(&p.ID, &p.Question, &p.Options, &p.Votes, &createdBy, &p.ExpiresAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		p.CreatedBy = *createdBy
	}
	if p.Votes == nil {
		p.Votes = []models.PollVote{}
	}
	return &p, nil
}

// PollService handles community polls and voting
type PollService struct {
	clock
	db     database.DB
	logger *zap.SugaredLogger
}

// NewPollService creates a new poll service
func NewPollService(db database.DB, logger *zap.SugaredLogger) *PollService {
	return &PollService{db: db, logger: logger}
}

// Create stores a poll with every option at zero votes
func (s *PollService) Create(ctx context.Context, actor models.Actor, req *models.CreatePollRequest) (*models.Poll, error) {
	if !req.ExpiresAt.After(s.Now()) {
		return nil, apperr.ValidationFields("expiresAt must be in the future",
			map[string]string{"expiresAt": "expiresAt must be in the future"})
	}

	options := make([]models.PollOption, len(req.Options))
	for i, text := range req.Options {
		options[i] = models.PollOption{Text: strings.TrimSpace(text)}
	}

	p := &models.Poll{
		ID:        uuid.New(),
		Question:  req.Question,
		Options:   options,
		Votes:     []models.PollVote{},
		CreatedBy: actor.UserID,
		ExpiresAt: req.ExpiresAt,
		CreatedAt: s.Now(),
	}

	query := `
		INSERT INTO polls (id, question, options, votes, created_by, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.Exec(ctx, query, p.ID, p.Question, p.Options, p.Votes, p.CreatedBy, p.ExpiresAt, p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert poll: %w", err)
	}

	s.logger.Infow("Poll created", "poll_id", p.ID, "options", len(p.Options))
	return p, nil
}

// List returns every poll, newest first
func (s *PollService) List(ctx context.Context) ([]models.Poll, error) {
	return s.list(ctx, `SELECT `+pollColumns+` FROM polls ORDER BY created_at DESC`)
}

// ListActive returns polls still open for voting
func (s *PollService) ListActive(ctx context.Context) ([]models.Poll, error) {
	return s.list(ctx, `SELECT `+pollColumns+` FROM polls WHERE expires_at >= $1 ORDER BY expires_at`, s.Now())
}

func (s *PollService) list(ctx context.Context, query string, args ...any) ([]models.Poll, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	defer rows.Close()

	polls := []models.Poll{}
	for rows.Next() {
		p, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("scan poll: %w", err)
		}
		polls = append(polls, *p)
	}
	return polls, rows.Err()
}

// Get returns one poll
func (s *PollService) Get(ctx context.Context, id uuid.UUID) (*models.Poll, error) {
	p, err := scanPoll(s.db.QueryRow(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "Poll not found", "get poll")
	}
	return p, nil
}

// Analytics returns per-option counts and percentages for one poll
func (s *PollService) Analytics(ctx context.Context, id uuid.UUID) (*models.PollAnalytics, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PollAnalytics{
		PollID:     p.ID,
		Question:   p.Question,
		TotalVotes: p.TotalVotes(),
		Expired:    p.Expired(s.Now()),
		Results:    p.Results(),
	}, nil
}

// Delete removes a poll
func (s *PollService) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Poll not found")
	}
	return nil
}

// Vote records actor's choice. The write is conditional on the vote list
// being exactly as long as when it was read; votes are only ever appended,
// so a concurrent vote by anyone forces a re-read. Two racing votes by the
// same user therefore leave exactly one entry.
func (s *PollService) Vote(ctx context.Context, actor models.Actor, id uuid.UUID, option string) (*models.Poll, error) {
	next, err := applyTransition(ctx, "poll",
		func(ctx context.Context) (models.Poll, error) {
			p, err := s.Get(ctx, id)
			if err != nil {
				return models.Poll{}, err
			}
			return *p, nil
		},
		func(cur models.Poll) (models.Poll, error) {
			return workflow.CastVote(cur, option, actor, s.Now())
		},
		func(ctx context.Context, cur, next models.Poll) (bool, error) {
			tag, err := s.db.Exec(ctx, `
				UPDATE polls SET options = $2, votes = $3
				WHERE id = $1 AND jsonb_array_length(votes) = $4`,
				next.ID, next.Options, next.Votes, len(cur.Votes))
			if err != nil {
				return false, fmt.Errorf("record vote: %w", err)
			}
			return tag.RowsAffected() == 1, nil
		},
	)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Vote recorded", "poll_id", id, "user_id", actor.UserID)
	return &next, nil
}
