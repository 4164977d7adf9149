package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/societyhub/community-server/internal/models"
)

type sosState string

const (
	sosOpen     sosState = "open"
	sosResolved sosState = "resolved"
)

// sosTable: an alert is resolved once, by any authenticated responder.
var sosTable = Table[sosState]{
	Resource: "SOS alert",
	States:   []sosState{sosOpen, sosResolved},
	Terminal: map[sosState]string{
		sosResolved: "This alert is already resolved",
	},
	Edges: map[sosState]map[sosState]Permit{
		sosOpen: {sosResolved: {}},
	},
}

func stateOf(a models.SOSAlert) sosState {
	if a.IsResolved {
		return sosResolved
	}
	return sosOpen
}

// RespondSOS marks an alert resolved by actor.
func RespondSOS(a models.SOSAlert, actor models.Actor, now time.Time) (models.SOSAlert, error) {
	if err := sosTable.Check(stateOf(a), sosResolved, actor, uuid.Nil); err != nil {
		return a, err
	}
	responder := actor.UserID
	a.IsResolved = true
	a.RespondedBy = &responder
	a.ResolvedAt = &now
	a.UpdatedAt = now
	return a, nil
}
