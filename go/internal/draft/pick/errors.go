package pick

import (
	"errors"
)

var (
	ErrDraftNotActive        = errors.New("draft not active")
	ErrDraftAlreadyCompleted = errors.New("draft already completed")
	ErrNotYourTurn           = errors.New("not your turn")
	ErrPlayerAlreadyDrafted  = errors.New("player already drafted")
)

// RosterRuleViolation reports a pick the roster predicate refused.
type RosterRuleViolation struct {
	Reason string
}

func (e *RosterRuleViolation) Error() string {
	return "roster rule violation: " + e.Reason
}

// Is lets errors.Is match any RosterRuleViolation against a zero-valued target.
func (e *RosterRuleViolation) Is(target error) bool {
	t, ok := target.(*RosterRuleViolation)
	return ok && (t.Reason == "" || t.Reason == e.Reason)
}
