package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/models"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func actor(role models.Role) models.Actor {
	return models.Actor{UserID: uuid.New(), Role: role}
}

func TestGatePassTransitions(t *testing.T) {
	guard := actor(models.RoleGuard)
	pending := models.GatePass{ID: uuid.New(), VisitorName: "Sam", Status: models.GatePassPending}

	t.Run("guard approves", func(t *testing.T) {
		next, err := TransitionGatePass(pending, models.GatePassApproved, "ID checked", guard, now)
		require.NoError(t, err)
		assert.Equal(t, models.GatePassApproved, next.Status)
		assert.Equal(t, "ID checked", next.GuardComments)
		assert.Equal(t, now, next.UpdatedAt)
		assert.Equal(t, models.GatePassPending, pending.Status, "input must not be modified")
	})

	t.Run("resident cannot approve", func(t *testing.T) {
		_, err := TransitionGatePass(pending, models.GatePassApproved, "", actor(models.RoleResident), now)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("terminal states reject every move", func(t *testing.T) {
		for _, from := range []models.GatePassStatus{models.GatePassApproved, models.GatePassRejected} {
			for _, to := range []models.GatePassStatus{models.GatePassApproved, models.GatePassRejected, models.GatePassPending} {
				gp := pending
				gp.Status = from
				next, err := TransitionGatePass(gp, to, "", guard, now)
				assert.True(t, apperr.Is(err, apperr.KindConflict), "%s -> %s", from, to)
				assert.Equal(t, from, next.Status)
			}
		}
	})

	t.Run("second guard sees already approved", func(t *testing.T) {
		approved, err := TransitionGatePass(pending, models.GatePassApproved, "", guard, now)
		require.NoError(t, err)
		_, err = TransitionGatePass(approved, models.GatePassRejected, "", actor(models.RoleGuard), now)
		require.Error(t, err)
		assert.Equal(t, "Gate pass already approved", apperr.PublicMessage(err))
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := TransitionGatePass(pending, "teleported", "", guard, now)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestBookingTransitions(t *testing.T) {
	provider := actor(models.RoleServiceProvider)
	booking := models.Booking{ID: uuid.New(), ServiceProviderID: provider.UserID, Status: models.BookingPending}

	next, err := TransitionBooking(booking, models.BookingAccepted, provider, now)
	require.NoError(t, err)
	assert.Equal(t, models.BookingAccepted, next.Status)

	otherProvider := actor(models.RoleServiceProvider)
	_, err = TransitionBooking(booking, models.BookingAccepted, otherProvider, now)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	impostor := models.Actor{UserID: provider.UserID, Role: models.RoleResident}
	_, err = TransitionBooking(booking, models.BookingRejected, impostor, now)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = TransitionBooking(next, models.BookingRejected, provider, now)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestComplaintTransitions(t *testing.T) {
	admin := actor(models.RoleAdmin)
	open := models.Complaint{ID: uuid.New(), Status: models.ComplaintOpen}

	inProgress, err := TransitionComplaint(open, models.ComplaintInProgress, admin, now)
	require.NoError(t, err)

	again, err := TransitionComplaint(inProgress, models.ComplaintInProgress, admin, now)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintInProgress, again.Status)

	resolved, err := TransitionComplaint(inProgress, models.ComplaintResolved, admin, now)
	require.NoError(t, err)

	_, err = TransitionComplaint(resolved, models.ComplaintInProgress, admin, now)
	require.Error(t, err)
	assert.Equal(t, "Complaint already resolved", apperr.PublicMessage(err))

	_, err = TransitionComplaint(open, models.ComplaintResolved, actor(models.RoleGuard), now)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestTaskLifecycle(t *testing.T) {
	guard := actor(models.RoleGuard)
	admin := actor(models.RoleAdmin)
	task := models.GuardTask{ID: uuid.New(), AssignedTo: guard.UserID, Status: models.TaskAssigned}

	t.Run("cannot skip steps", func(t *testing.T) {
		_, err := TransitionTask(task, models.TaskCompleted, guard, now)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
		_, err = TransitionTask(task, models.TaskAchieved, admin, now)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})

	t.Run("only the assignee moves assigned work", func(t *testing.T) {
		_, err := TransitionTask(task, models.TaskInProgress, actor(models.RoleGuard), now)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
		_, err = TransitionTask(task, models.TaskInProgress, admin, now)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("full walk", func(t *testing.T) {
		seen := []models.TaskStatus{task.Status}
		cur := task
		steps := []struct {
			to models.TaskStatus
			by models.Actor
		}{
			{models.TaskInProgress, guard},
			{models.TaskCompleted, guard},
			{models.TaskAchieved, admin},
		}
		for _, s := range steps {
			next, err := TransitionTask(cur, s.to, s.by, now)
			require.NoError(t, err, "to %s", s.to)
			cur = next
			seen = append(seen, cur.Status)
		}
		assert.Equal(t, []models.TaskStatus{
			models.TaskAssigned, models.TaskInProgress, models.TaskCompleted, models.TaskAchieved,
		}, seen)

		for _, to := range TaskTable.States {
			_, err := TransitionTask(cur, to, admin, now)
			assert.True(t, apperr.Is(err, apperr.KindConflict), "achieved -> %s", to)
		}
	})

	t.Run("guard cannot achieve", func(t *testing.T) {
		completed := task
		completed.Status = models.TaskCompleted
		_, err := TransitionTask(completed, models.TaskAchieved, guard, now)
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("no going backward", func(t *testing.T) {
		completed := task
		completed.Status = models.TaskCompleted
		_, err := TransitionTask(completed, models.TaskInProgress, guard, now)
		assert.True(t, apperr.Is(err, apperr.KindConflict))
	})
}

func TestRespondSOS(t *testing.T) {
	alert := models.SOSAlert{ID: uuid.New(), Type: models.SOSFire}
	responder := actor(models.RoleGuard)

	resolved, err := RespondSOS(alert, responder, now)
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved)
	require.NotNil(t, resolved.RespondedBy)
	assert.Equal(t, responder.UserID, *resolved.RespondedBy)
	assert.False(t, alert.IsResolved)

	second, err := RespondSOS(resolved, actor(models.RoleResident), now.Add(time.Minute))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, responder.UserID, *second.RespondedBy)
}

func TestCastVote(t *testing.T) {
	poll := models.Poll{
		ID:        uuid.New(),
		Question:  "Paint color?",
		Options:   []models.PollOption{{Text: "Red"}, {Text: "Blue"}},
		ExpiresAt: now.Add(48 * time.Hour),
	}
	residentA := actor(models.RoleResident)

	voted, err := CastVote(poll, "Red", residentA, now)
	require.NoError(t, err)
	assert.Equal(t, 1, voted.Options[0].Votes)
	assert.Equal(t, 0, poll.Options[0].Votes, "input must not be modified")

	_, err = CastVote(voted, "Blue", residentA, now)
	require.Error(t, err)
	assert.Equal(t, "You have already voted in this poll", apperr.PublicMessage(err))

	assert.Equal(t, 1, voted.Options[0].Votes)
	assert.Equal(t, 0, voted.Options[1].Votes)
	assert.Equal(t, len(voted.Votes), voted.TotalVotes())

	_, err = CastVote(poll, "Green", residentA, now)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = CastVote(poll, "Red", residentA, poll.ExpiresAt.Add(time.Second))
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = CastVote(poll, "Red", actor(models.RoleAdmin), now)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}

func TestVoteTallyInvariant(t *testing.T) {
	poll := models.Poll{
		Options:   []models.PollOption{{Text: "Yes"}, {Text: "No"}, {Text: "Abstain"}},
		ExpiresAt: now.Add(time.Hour),
	}
	voters := make([]models.Actor, 10)
	for i := range voters {
		voters[i] = actor(models.RoleResident)
	}

	for round := 0; round < 2; round++ {
		for i, v := range voters {
			next, err := CastVote(poll, poll.Options[i%3].Text, v, now)
			if err == nil {
				poll = next
			}
			assert.Equal(t, len(poll.Votes), poll.TotalVotes())
		}
	}
	assert.Len(t, poll.Votes, len(voters))
}
