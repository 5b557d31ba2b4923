package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a draftable player in the pool
type Player struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Position  string    `json:"position"`       // 'QB', 'RB', 'WR', etc.
	Rank      *int      `json:"rank,omitempty"` // consensus rank, nil when unranked
	CreatedAt time.Time `json:"created_at"`
}
