package models

import (
	"github.com/google/uuid"
	"time"
)

// DraftPick represents a single recorded pick in a draft. Picks are immutable
// once written.
type DraftPick struct {
	ID         int64     `json:"id"` // monotonic per draft, never reused
	DraftID    uuid.UUID `json:"draft_id"`
	Round      int       `json:"round"`
	PickNumber int       `json:"pick_number"` // overall, 1-based
	TeamID     uuid.UUID `json:"team_id"`
	PlayerID   uuid.UUID `json:"player_id"`
	PickedAt   time.Time `json:"picked_at"`
	IsAuto     bool      `json:"is_auto"`
}
