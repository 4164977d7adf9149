package workflow

import (
	"time"

	"github.com/societyhub/community-server/internal/apperr"
	"github.com/societyhub/community-server/internal/models"
)

// Voters lists the roles allowed to vote in polls.
var Voters = []models.Role{models.RoleResident, models.RoleGuard}

// CheckVote reports why actor may not vote for option at now, or nil.
// Checks run in order: role, expiry, prior vote, option existence.
func CheckVote(p models.Poll, option string, actor models.Actor, now time.Time) error {
	allowed := false
	for _, r := range Voters {
		if r == actor.Role {
			allowed = true
			break
		}
	}
	if !allowed {
		return apperr.Forbidden("You are not allowed to vote")
	}
	if p.Expired(now) {
		return apperr.Conflict("Poll has expired")
	}
	if p.HasVoted(actor.UserID) {
		return apperr.Conflict("You have already voted in this poll")
	}
	if p.OptionIndex(option) < 0 {
		return apperr.Validation("Invalid option selected")
	}
	return nil
}

// CastVote returns p with the option counter incremented and the vote
// appended. The input poll is not modified.
func CastVote(p models.Poll, option string, actor models.Actor, now time.Time) (models.Poll, error) {
	if err := CheckVote(p, option, actor, now); err != nil {
		return p, err
	}

	options := make([]models.PollOption, len(p.Options))
	copy(options, p.Options)
	options[p.OptionIndex(option)].Votes++

	votes := make([]models.PollVote, len(p.Votes), len(p.Votes)+1)
	copy(votes, p.Votes)
	votes = append(votes, models.PollVote{User: actor.UserID, Option: option, VotedAt: now})

	p.Options = options
	p.Votes = votes
	return p, nil
}
