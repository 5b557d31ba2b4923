package orchestrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// CommandKind tags a privileged command.
type CommandKind string

const (
	CommandStart           CommandKind = "start_draft"
	CommandPause           CommandKind = "pause"
	CommandResume          CommandKind = "resume"
	CommandUpdateTimer     CommandKind = "update_timer"
	CommandRevert          CommandKind = "revert"
	CommandResultsConsumed CommandKind = "results_consumed"

	// commandPick is never issued by clients directly; it keys pick legality
	// in the status table.
	commandPick CommandKind = "submit_pick"
)

// Command is a commissioner command routed through the Gate.
type Command struct {
	Kind       CommandKind `json:"kind"`
	Seconds    int         `json:"seconds,omitempty"`     // update_timer
	TargetPick int         `json:"target_pick,omitempty"` // revert: picks to keep
}

func StartCommand() Command { return Command{Kind: CommandStart} }
func PauseCommand() Command { return Command{Kind: CommandPause} }
func ResumeCommand() Command { return Command{Kind: CommandResume} }
func UpdateTimerCommand(seconds int) Command { return Command{Kind: CommandUpdateTimer, Seconds: seconds} }
func RevertCommand(keep int) Command { return Command{Kind: CommandRevert, TargetPick: keep} }

// statusRules says, per command and status, which error rejects the command.
// A nil entry allows it. Revert on a completed draft is further gated by
// policy in the actor.
var statusRules = map[CommandKind]map[models.DraftStatus]error{
	CommandStart: {
		models.DraftStatusPending:   nil,
		models.DraftStatusActive:    ErrDraftAlreadyStarted,
		models.DraftStatusPaused:    ErrDraftAlreadyStarted,
		models.DraftStatusCompleted: ErrDraftAlreadyCompleted,
	},
	commandPick: {
		models.DraftStatusPending:   ErrDraftNotActive,
		models.DraftStatusActive:    nil,
		models.DraftStatusPaused:    ErrDraftNotActive,
		models.DraftStatusCompleted: ErrDraftAlreadyCompleted,
	},
	CommandPause: {
		models.DraftStatusPending:   ErrDraftNotActive,
		models.DraftStatusActive:    nil,
		models.DraftStatusPaused:    ErrDraftNotActive,
		models.DraftStatusCompleted: ErrDraftAlreadyCompleted,
	},
	CommandResume: {
		models.DraftStatusPending:   ErrDraftNotPaused,
		models.DraftStatusActive:    ErrDraftNotPaused,
		models.DraftStatusPaused:    nil,
		models.DraftStatusCompleted: ErrDraftAlreadyCompleted,
	},
	CommandUpdateTimer: {
		models.DraftStatusPending:   nil,
		models.DraftStatusActive:    nil,
		models.DraftStatusPaused:    nil,
		models.DraftStatusCompleted: ErrDraftAlreadyCompleted,
	},
	CommandRevert: {
		models.DraftStatusPending:   ErrDraftNotActive,
		models.DraftStatusActive:    nil,
		models.DraftStatusPaused:    nil,
		models.DraftStatusCompleted: nil,
	},
	CommandResultsConsumed: {
		models.DraftStatusPending:   ErrDraftNotActive,
		models.DraftStatusActive:    ErrDraftNotActive,
		models.DraftStatusPaused:    ErrDraftNotActive,
		models.DraftStatusCompleted: nil,
	},
}

// checkStatus reports whether kind may run while the draft is in status.
func checkStatus(kind CommandKind, status models.DraftStatus) error {
	rules, ok := statusRules[kind]
	if !ok {
		return fmt.Errorf("unknown command %q", kind)
	}
	err, ok := rules[status]
	if !ok {
		return fmt.Errorf("unknown draft status %q", status)
	}
	return err
}

// Gate authorizes commands before they reach a draft's actor. Status checks
// happen later, inside the actor, against authoritative state.
type Gate struct {
	leagues    Leagues
	minSeconds int
	maxSeconds int
}

func NewGate(leagues Leagues, cfg Config) *Gate {
	return &Gate{
		leagues:    leagues,
		minSeconds: cfg.MinPickSeconds,
		maxSeconds: cfg.MaxPickSeconds,
	}
}

// Authorize checks that userID is the league commissioner and that the
// command's arguments are in range.
func (g *Gate) Authorize(ctx context.Context, leagueID, userID uuid.UUID, cmd Command) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	if _, ok := statusRules[cmd.Kind]; !ok || cmd.Kind == commandPick {
		return fmt.Errorf("unknown command %q", cmd.Kind)
	}
	commissioner, err := g.leagues.CommissionerID(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("failed to load commissioner: %w", err)
	}
	if commissioner != userID {
		return ErrUnauthorized
	}
	return g.validate(cmd)
}

func (g *Gate) validate(cmd Command) error {
	switch cmd.Kind {
	case CommandUpdateTimer:
		if cmd.Seconds < g.minSeconds || cmd.Seconds > g.maxSeconds {
			return fmt.Errorf("%w: %d outside [%d, %d]", ErrInvalidTimerValue, cmd.Seconds, g.minSeconds, g.maxSeconds)
		}
	case CommandRevert:
		if cmd.TargetPick < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidRevertTarget, cmd.TargetPick)
		}
	}
	return nil
}

// TeamFor resolves the team userID owns in the league.
func (g *Gate) TeamFor(ctx context.Context, leagueID, userID uuid.UUID) (uuid.UUID, error) {
	if userID == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	team, err := g.leagues.TeamForOwner(ctx, leagueID, userID)
	switch {
	case errors.Is(err, ErrNotTeamOwner), errors.Is(err, sql.ErrNoRows):
		return uuid.Nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case err != nil:
		return uuid.Nil, fmt.Errorf("failed to resolve team: %w", err)
	}
	return team, nil
}
