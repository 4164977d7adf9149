package workflow

import (
	"time"

	"github.com/societyhub/community-server/internal/models"
)

// TaskTable walks assigned -> in_progress -> completed -> achieved one step at
// a time. The assignee drives the first two moves, an admin the last.
var TaskTable = Table[models.TaskStatus]{
	Resource: "task",
	States: []models.TaskStatus{
		models.TaskAssigned, models.TaskInProgress, models.TaskCompleted, models.TaskAchieved,
	},
	Terminal: map[models.TaskStatus]string{
		models.TaskAchieved: "Task already achieved",
	},
	Edges: map[models.TaskStatus]map[models.TaskStatus]Permit{
		models.TaskAssigned: {
			models.TaskInProgress: {OwnerOnly: true, Denied: "Only the assigned guard can update this task"},
		},
		models.TaskInProgress: {
			models.TaskCompleted: {OwnerOnly: true, Denied: "Only the assigned guard can update this task"},
		},
		models.TaskCompleted: {
			models.TaskAchieved: {Roles: adminOnly, Denied: "Only admin can mark as achieved"},
		},
	},
}

// TransitionTask moves a guard task one step along its lifecycle.
func TransitionTask(t models.GuardTask, to models.TaskStatus, actor models.Actor, now time.Time) (models.GuardTask, error) {
	if err := TaskTable.Check(t.Status, to, actor, t.AssignedTo); err != nil {
		return t, err
	}
	t.Status = to
	t.UpdatedAt = now
	return t, nil
}
