package models

import (
	"github.com/google/uuid"
	"time"
)

// LeagueSettings holds the JSONB settings the draft room reads.
type LeagueSettings struct {
	// RosterCaps maps a position to the most players one team may draft there.
	RosterCaps map[string]int `json:"roster_caps,omitempty"`
}

// League represents a fantasy sports league
type League struct {
	ID             uuid.UUID      `json:"id"`
	Name           string         `json:"name"`
	CommissionerID uuid.UUID      `json:"commissioner_id"`
	Settings       LeagueSettings `json:"settings"`
	CreatedAt      time.Time      `json:"created_at"`
}
