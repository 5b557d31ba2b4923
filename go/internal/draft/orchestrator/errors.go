package orchestrator

import (
	"database/sql"
	"errors"

	"github.com/mcdev12/draftroom/go/internal/auth"
	"github.com/mcdev12/draftroom/go/internal/draft/pick"
)

// Rejections. None of these mutate state or emit events.
var (
	ErrNotYourTurn           = pick.ErrNotYourTurn
	ErrPlayerAlreadyDrafted  = pick.ErrPlayerAlreadyDrafted
	ErrDraftNotActive        = pick.ErrDraftNotActive
	ErrDraftAlreadyCompleted = pick.ErrDraftAlreadyCompleted
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotTeamOwner          = errors.New("user owns no team in league")
	ErrInvalidTimerValue     = errors.New("invalid timer value")
	ErrInvalidRevertTarget   = errors.New("invalid revert target")

	ErrDraftNotPaused      = errors.New("draft not paused")
	ErrDraftAlreadyStarted = errors.New("draft already started")
	ErrDraftNotFound       = errors.New("draft not found")
	ErrUnauthenticated     = auth.ErrUnauthenticated
	ErrPersistence         = errors.New("persistence failure")
	ErrStopped             = errors.New("orchestrator stopped")
)

// RosterRuleViolation is returned when the roster predicate rejects a pick.
type RosterRuleViolation = pick.RosterRuleViolation

// Code maps an engine error to the stable code sent to clients.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrPlayerAlreadyDrafted):
		return "player_already_drafted"
	case errors.Is(err, &RosterRuleViolation{}):
		return "roster_rule_violation"
	case errors.Is(err, ErrDraftNotActive):
		return "draft_not_active"
	case errors.Is(err, ErrDraftAlreadyCompleted):
		return "draft_already_completed"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidTimerValue):
		return "invalid_timer_value"
	case errors.Is(err, ErrInvalidRevertTarget):
		return "invalid_revert_target"
	case errors.Is(err, ErrDraftNotPaused):
		return "draft_not_paused"
	case errors.Is(err, ErrDraftAlreadyStarted):
		return "draft_already_started"
	case errors.Is(err, ErrDraftNotFound), errors.Is(err, sql.ErrNoRows):
		return "draft_not_found"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrPersistence):
		return "persistence_failure"
	default:
		return "internal"
	}
}
