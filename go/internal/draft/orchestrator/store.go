package orchestrator

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/pick"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// Mutation is one atomic write: the new draft header, at most one pick change
// and the outbox rows describing it. A store applies all of it or none.
type Mutation struct {
	Draft *models.Draft
	// Append is recorded after any truncation.
	Append *models.DraftPick
	// TruncateTo, when set, deletes every pick with PickNumber > *TruncateTo.
	TruncateTo *int
	Events     []events.Envelope
}

// DraftStore is the durable record of drafts and their pick logs. Unknown
// drafts are reported with an error wrapping sql.ErrNoRows.
type DraftStore interface {
	GetDraft(ctx context.Context, draftID uuid.UUID) (*models.Draft, error)
	ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error)
	ListDraftIDsByStatus(ctx context.Context, statuses ...models.DraftStatus) ([]uuid.UUID, error)
	Apply(ctx context.Context, m Mutation) error
}

// PlayerPool lists every draftable player.
type PlayerPool interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
}

// Ranking orders players best first. Optional.
type Ranking interface {
	RankedPlayerIDs(ctx context.Context) ([]uuid.UUID, error)
}

// RosterRules supplies the roster predicate for a league. Optional.
type RosterRules interface {
	RuleFor(ctx context.Context, leagueID uuid.UUID) (pick.RosterRule, error)
}

// QueueSource returns a team's queued players in preference order. Optional.
type QueueSource interface {
	Queue(draftID, teamID uuid.UUID) []uuid.UUID
}

// Leagues answers identity questions about a league.
type Leagues interface {
	CommissionerID(ctx context.Context, leagueID uuid.UUID) (uuid.UUID, error)
	// TeamForOwner returns ErrNotTeamOwner when ownerID has no team.
	TeamForOwner(ctx context.Context, leagueID, ownerID uuid.UUID) (uuid.UUID, error)
}

// Broadcaster fans an event out to a draft's subscribers. Publish is called
// only from the draft's actor and must not block.
type Broadcaster interface {
	Publish(draftID uuid.UUID, event events.DraftEvent)
}

// AttachFunc runs on the actor with the subscription snapshot. It must enqueue
// the snapshot and register the subscriber before returning.
type AttachFunc func(snapshot events.DraftEvent)
