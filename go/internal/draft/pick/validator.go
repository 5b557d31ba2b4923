package pick

import (
	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// RosterRule decides whether a team may add candidate to the players it has
// already drafted. Implementations must be pure.
type RosterRule interface {
	Allow(roster []models.Player, candidate models.Player) (bool, string)
}

// RosterRuleFunc adapts a function to RosterRule.
type RosterRuleFunc func(roster []models.Player, candidate models.Player) (bool, string)

func (f RosterRuleFunc) Allow(roster []models.Player, candidate models.Player) (bool, string) {
	return f(roster, candidate)
}

// Board is the part of draft state a pick is checked against.
type Board struct {
	Status  models.DraftStatus
	OnClock uuid.UUID
	Drafted map[uuid.UUID]struct{}
}

// Validate checks a proposed pick without side effects, so auto-pick may call
// it speculatively. A nil candidate means the player is not in the pool. A nil
// rule accepts any roster.
func Validate(b Board, teamID uuid.UUID, roster []models.Player, candidate *models.Player, rule RosterRule) error {
	switch b.Status {
	case models.DraftStatusActive:
	case models.DraftStatusCompleted:
		return ErrDraftAlreadyCompleted
	default:
		return ErrDraftNotActive
	}
	if teamID != b.OnClock {
		return ErrNotYourTurn
	}
	if candidate == nil {
		return &RosterRuleViolation{Reason: "player not in pool"}
	}
	if _, taken := b.Drafted[candidate.ID]; taken {
		return ErrPlayerAlreadyDrafted
	}
	if rule != nil {
		if ok, reason := rule.Allow(roster, *candidate); !ok {
			return &RosterRuleViolation{Reason: reason}
		}
	}
	return nil
}
