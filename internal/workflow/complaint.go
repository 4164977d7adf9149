package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/societyhub/community-server/internal/models"
)

var adminOnly = []models.Role{models.RoleAdmin}

func adminPermit() Permit {
	return Permit{Roles: adminOnly, Denied: "Not authorized to update this complaint"}
}

// ComplaintTable: open and in_progress may move to in_progress, resolved or
// cancelled, admins only. resolved and cancelled are final.
var ComplaintTable = Table[models.ComplaintStatus]{
	Resource: "complaint",
	States: []models.ComplaintStatus{
		models.ComplaintOpen, models.ComplaintInProgress, models.ComplaintResolved, models.ComplaintCancelled,
	},
	Terminal: map[models.ComplaintStatus]string{
		models.ComplaintResolved:  "Complaint already resolved",
		models.ComplaintCancelled: "Complaint already cancelled",
	},
	Edges: map[models.ComplaintStatus]map[models.ComplaintStatus]Permit{
		models.ComplaintOpen: {
			models.ComplaintInProgress: adminPermit(),
			models.ComplaintResolved:   adminPermit(),
			models.ComplaintCancelled:  adminPermit(),
		},
		models.ComplaintInProgress: {
			models.ComplaintInProgress: adminPermit(),
			models.ComplaintResolved:   adminPermit(),
			models.ComplaintCancelled:  adminPermit(),
		},
	},
}

// TransitionComplaint applies an admin status update.
func TransitionComplaint(c models.Complaint, to models.ComplaintStatus, actor models.Actor, now time.Time) (models.Complaint, error) {
	if err := ComplaintTable.Check(c.Status, to, actor, uuid.Nil); err != nil {
		return c, err
	}
	c.Status = to
	c.UpdatedAt = now
	return c, nil
}
