package client

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/societyhub/community-server/internal/models"
)

// SOSWatcher reports unresolved alerts the first time they are seen.
type SOSWatcher struct {
	client  *Client
	session *Session
	logger  *zap.SugaredLogger

	mu   sync.Mutex
	seen map[uuid.UUID]bool
}

// NewSOSWatcher creates a watcher polling with session
func NewSOSWatcher(c *Client, s *Session, logger *zap.SugaredLogger) *SOSWatcher {
	return &SOSWatcher{client: c, session: s, logger: logger, seen: make(map[uuid.UUID]bool)}
}

// Check fetches alerts once and returns those that are unresolved and new
// since the previous call. It is the poller task for cmd/sosmonitor.
func (w *SOSWatcher) Check(ctx context.Context) ([]models.SOSAlert, error) {
	alerts, err := w.client.ListSOS(ctx, w.session)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var fresh []models.SOSAlert
	for _, a := range alerts {
		if a.IsResolved || w.seen[a.ID] {
			continue
		}
		w.seen[a.ID] = true
		fresh = append(fresh, a)
	}
	return fresh, nil
}

// Poll is Check with each new alert logged
func (w *SOSWatcher) Poll(ctx context.Context) error {
	fresh, err := w.Check(ctx)
	if err != nil {
		return err
	}
	for _, a := range fresh {
		reporter, house := "unknown", ""
		if a.Reporter != nil {
			reporter, house = a.Reporter.Name, a.Reporter.HouseNumber
		}
		w.logger.Warnw("SOS alert",
			"alert_id", a.ID,
			"type", a.Type,
			"reporter", reporter,
			"house", house,
			"raised_at", a.CreatedAt,
		)
	}
	return nil
}
