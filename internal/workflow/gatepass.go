package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/societyhub/community-server/internal/models"
)

var guardsOnly = []models.Role{models.RoleGuard}

// GatePassTable: pending -> approved | rejected, guards only.
var GatePassTable = Table[models.GatePassStatus]{
	Resource: "gate pass",
	States:   []models.GatePassStatus{models.GatePassPending, models.GatePassApproved, models.GatePassRejected},
	Terminal: map[models.GatePassStatus]string{
		models.GatePassApproved: "Gate pass already approved",
		models.GatePassRejected: "Gate pass already rejected",
	},
	Edges: map[models.GatePassStatus]map[models.GatePassStatus]Permit{
		models.GatePassPending: {
			models.GatePassApproved: {Roles: guardsOnly, Denied: "Only guards can approve gate passes"},
			models.GatePassRejected: {Roles: guardsOnly, Denied: "Only guards can reject gate passes"},
		},
	},
}

// TransitionGatePass applies a guard's decision. Comments replace the
// existing guard comments only when non-empty.
func TransitionGatePass(gp models.GatePass, to models.GatePassStatus, comments string, actor models.Actor, now time.Time) (models.GatePass, error) {
	if err := GatePassTable.Check(gp.Status, to, actor, uuid.Nil); err != nil {
		return gp, err
	}
	gp.Status = to
	if comments != "" {
		gp.GuardComments = comments
	}
	gp.UpdatedAt = now
	return gp, nil
}
