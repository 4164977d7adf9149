// Package workflow holds the status state machines of every stateful resource.
//
// Each resource has an explicit transition table mapping
// (current state, requested state) to the roles allowed to make the move.
// All functions here are pure: they take the current resource and the actor,
// and return either the next version of the resource or a classified error.
// Persisting the result (and re-reading before doing so) is the caller's job.
package workflow

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/models"
)

// Permit describes who may drive one edge of a table.
type Permit struct {
	// Roles allowed to make the move. Empty means any authenticated user.
	Roles []models.Role
	// OwnerOnly restricts the move to the resource's designated party
	// (task assignee, booked provider).
	OwnerOnly bool
	// Denied is returned as a Forbidden message when the actor does not qualify.
	Denied string
}

func (p Permit) allows(actor models.Actor, owner uuid.UUID) bool {
	if len(p.Roles) > 0 {
		ok := false
		for _, r := range p.Roles {
			if r == actor.Role {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if p.OwnerOnly && actor.UserID != owner {
		return false
	}
	return true
}

// Table is a resource's finite state machine.
type Table[S ~string] struct {
	Resource string
	States   []S
	// Terminal maps each terminal state to the conflict message reported
	// when a move out of it is attempted.
	Terminal map[S]string
	Edges    map[S]map[S]Permit
}

// Check decides whether actor may move a resource from one state to another.
// owner is the resource's designated party for OwnerOnly edges.
//
// Order of checks: unknown target, terminal source, missing edge, permission.
func (t Table[S]) Check(from, to S, actor models.Actor, owner uuid.UUID) error {
	if !t.known(to) {
		return apperr.Validation(fmt.Sprintf("Invalid %s status %q", t.Resource, to))
	}
	if msg, terminal := t.Terminal[from]; terminal {
		return apperr.Conflict(msg)
	}
	permit, ok := t.Edges[from][to]
	if !ok {
		return apperr.Conflict(fmt.Sprintf("Cannot move %s from %s to %s", t.Resource, from, to))
	}
	if !permit.allows(actor, owner) {
		return apperr.Forbidden(permit.Denied)
	}
	return nil
}

// IsTerminal reports whether no move out of s exists
func (t Table[S]) IsTerminal(s S) bool {
	_, ok := t.Terminal[s]
	return ok
}

func (t Table[S]) known(s S) bool {
	for _, k := range t.States {
		if k == s {
			return true
		}
	}
	return false
}
