// Package services contains business logic layers.
// Services are called by handlers and interact with the database.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/database"
	"github.com/societyhub/community-server/internal/models"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "community",
	Subsystem: "workflow",
	Name:      "transitions_total",
	Help:      "Status transitions by resource and outcome (applied, rejected, retried)",
}, []string{"resource", "outcome"})

const maxTransitionAttempts = 5

// applyTransition loads the current row, asks decide for the next version and
// writes it only if the row still holds what was read. When store reports
// that the row changed underneath, the row is re-read and decide runs again,
// so a request that lost the race is judged against the winner's state.
func applyTransition[T any](
	ctx context.Context,
	resource string,
	load func(context.Context) (T, error),
	decide func(T) (T, error),
	store func(ctx context.Context, cur, next T) (bool, error),
) (T, error) {
	var zero T
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		cur, err := load(ctx)
		if err != nil {
			return zero, err
		}

		next, err := decide(cur)
		if err != nil {
			transitionsTotal.WithLabelValues(resource, "rejected").Inc()
			return zero, err
		}

		applied, err := store(ctx, cur, next)
		if err != nil {
			return zero, err
		}
		if applied {
			transitionsTotal.WithLabelValues(resource, "applied").Inc()
			return next, nil
		}
		transitionsTotal.WithLabelValues(resource, "retried").Inc()
	}
	return zero, apperr.Conflict(fmt.Sprintf("The %s was modified concurrently, please retry", resource))
}

// loadUserRefs resolves user ids to their populated form in one query.
// Ids with no matching user are absent from the result.
func loadUserRefs(ctx context.Context, db database.DB, ids []uuid.UUID) (map[uuid.UUID]*models.UserRef, error) {
	refs := make(map[uuid.UUID]*models.UserRef)

	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return refs, nil
	}

	rows, err := db.Query(ctx, `
		SELECT id, name, email, role, house_number, services_offered
		FROM users
		WHERE id = ANY($1)
	`, unique)
	if err != nil {
		return nil, fmt.Errorf("load user refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r models.UserRef
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Role, &r.HouseNumber, &r.ServicesOffered); err != nil {
			return nil, fmt.Errorf("scan user ref: %w", err)
		}
		refs[r.ID] = &r
	}
	return refs, rows.Err()
}

// notFoundOr converts pgx.ErrNoRows into a NotFound error with msg and
// wraps anything else.
func notFoundOr(err error, msg, op string) error {
	if database.IsNotFound(err) {
		return apperr.NotFound(msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// clock is embedded by services that stamp rows
type clock struct {
	now func() time.Time
}

func (c clock) Now() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now()
}
