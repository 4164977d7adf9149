package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/models"
	"github.com/societyhub/community-server/internal/workflow"
)

// memRow is a single row with a compare-and-set write, standing in for a
// conditional UPDATE.
type memRow[T any] struct {
	mu      sync.Mutex
	val     T
	version int
	writes  int
}

func (r *memRow[T]) load(context.Context) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.val, nil
}

func TestApplyTransitionTwoGuardsOnePass(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	row := &memRow[models.GatePass]{val: models.GatePass{ID: uuid.New(), Status: models.GatePassPending}}

	store := func(_ context.Context, cur, next models.GatePass) (bool, error) {
		row.mu.Lock()
		defer row.mu.Unlock()
		if row.val.Status != cur.Status {
			return false, nil
		}
		row.val = next
		row.writes++
		return true, nil
	}

	decisions := []models.GatePassStatus{models.GatePassApproved, models.GatePassRejected}
	errs := make([]error, len(decisions))

	var wg sync.WaitGroup
	for i, to := range decisions {
		wg.Add(1)
		go func(i int, to models.GatePassStatus) {
			defer wg.Done()
			guard := models.Actor{UserID: uuid.New(), Role: models.RoleGuard}
			_, errs[i] = applyTransition(context.Background(), "gate pass", row.load,
				func(cur models.GatePass) (models.GatePass, error) {
					return workflow.TransitionGatePass(cur, to, "", guard, now)
				}, store)
		}(i, to)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, apperr.Is(err, apperr.KindConflict), "loser should see a conflict, got %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, row.writes)
	assert.NotEqual(t, models.GatePassPending, row.val.Status)
}

func TestApplyTransitionRetriesAfterLostRace(t *testing.T) {
	row := &memRow[int]{val: 1}
	lost := false

	next, err := applyTransition(context.Background(), "counter", row.load,
		func(cur int) (int, error) { return cur + 1, nil },
		func(_ context.Context, cur, next int) (bool, error) {
			if !lost {
				// someone else got there first
				lost = true
				row.val = 10
				return false, nil
			}
			if row.val != cur {
				return false, nil
			}
			row.val = next
			return true, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 11, next)
	assert.Equal(t, 11, row.val)
}

func TestApplyTransitionGivesUp(t *testing.T) {
	attempts := 0
	_, err := applyTransition(context.Background(), "counter",
		func(context.Context) (int, error) { attempts++; return 0, nil },
		func(cur int) (int, error) { return cur + 1, nil },
		func(context.Context, int, int) (bool, error) { return false, nil })

	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, maxTransitionAttempts, attempts)
}

func TestApplyTransitionRejectedNeverStores(t *testing.T) {
	stored := false
	_, err := applyTransition(context.Background(), "counter",
		func(context.Context) (int, error) { return 0, nil },
		func(int) (int, error) { return 0, apperr.Forbidden("no") },
		func(context.Context, int, int) (bool, error) { stored = true; return true, nil })

	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.False(t, stored)
}

func TestConcurrentVotesBySameUser(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	row := &memRow[models.Poll]{val: models.Poll{
		ID:        uuid.New(),
		Options:   []models.PollOption{{Text: "Yes"}, {Text: "No"}},
		ExpiresAt: now.Add(time.Hour),
	}}
	voter := models.Actor{UserID: uuid.New(), Role: models.RoleResident}

	// same guard as PollService.Vote: the vote list length must be unchanged
	store := func(_ context.Context, cur, next models.Poll) (bool, error) {
		row.mu.Lock()
		defer row.mu.Unlock()
		if len(row.val.Votes) != len(cur.Votes) {
			return false, nil
		}
		row.val = next
		return true, nil
	}

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = applyTransition(context.Background(), "poll", row.load,
				func(cur models.Poll) (models.Poll, error) {
					return workflow.CastVote(cur, "Yes", voter, now)
				}, store)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, row.val.Votes, 1)
	assert.Equal(t, 1, row.val.Options[0].Votes)
	assert.Equal(t, len(row.val.Votes), row.val.TotalVotes())
}

func TestLoadUserRefsSkipsQueryForNoIDs(t *testing.T) {
	refs, err := loadUserRefs(context.Background(), nil, []uuid.UUID{uuid.Nil})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestClockDefaultsToUTC(t *testing.T) {
	var c clock
	assert.Equal(t, time.UTC, c.Now().Location())

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }
	assert.Equal(t, fixed, c.Now())
}
