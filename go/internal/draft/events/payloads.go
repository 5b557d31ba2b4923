package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// Event payload types shared between the engine, the gateway and the outbox.

// PickView is a recorded pick as clients see it.
type PickView struct {
	ID         int64     `json:"id"`
	Round      int       `json:"round"`
	PickNumber int       `json:"pick_number"`
	TeamID     uuid.UUID `json:"team_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	PickedAt   time.Time `json:"picked_at"`
	IsAuto     bool      `json:"is_auto"`
}

// FullState is the authoritative draft snapshot carried by most events.
type FullState struct {
	DraftID          uuid.UUID          `json:"draft_id"`
	Status           models.DraftStatus `json:"status"`
	CurrentRound     int                `json:"current_round"`
	CurrentPickIndex int                `json:"current_pick_index"`
	CurrentTeamID    *uuid.UUID         `json:"current_team_id,omitempty"`
	SecondsRemaining int                `json:"seconds_remaining"`
	Deadline         *time.Time         `json:"deadline,omitempty"`
	PickSeconds      int                `json:"pick_seconds"`
	RoundsTotal      int                `json:"rounds_total"`
	TeamOrder        []uuid.UUID        `json:"team_order"`
	Picks            []PickView         `json:"picks"`
}

// PickMadePayload is the payload for a pick_made event
type PickMadePayload struct {
	Pick  PickView  `json:"pick"`
	State FullState `json:"state"`
}

// TimerSyncedPayload is the payload for the timer_synced heartbeat
type TimerSyncedPayload struct {
	CurrentPickIndex int `json:"current_pick_index"`
	SecondsRemaining int `json:"seconds_remaining"`
}

// NewPickView converts a stored pick.
func NewPickView(p models.DraftPick) PickView {
	return PickView{
		ID:         p.ID,
		Round:      p.Round,
		PickNumber: p.PickNumber,
		TeamID:     p.TeamID,
		PlayerID:   p.PlayerID,
		PickedAt:   p.PickedAt,
		IsAuto:     p.IsAuto,
	}
}
