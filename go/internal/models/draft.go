package models

import (
	"github.com/google/uuid"
	"time"
)

// DraftStatus defines the status of a draft.
type DraftStatus string

const (
	DraftStatusPending   DraftStatus = "PENDING"
	DraftStatusActive    DraftStatus = "ACTIVE"
	DraftStatusPaused    DraftStatus = "PAUSED"
	DraftStatusCompleted DraftStatus = "COMPLETED"
)

// Draft is the header of one snake draft. The pick log lives beside it in
// DraftPick rows; CurrentRound and CurrentPickIndex are derived from that log.
type Draft struct {
	ID          uuid.UUID   `json:"id"`
	LeagueID    uuid.UUID   `json:"league_id"`
	TeamOrder   []uuid.UUID `json:"team_order"`
	RoundsTotal int         `json:"rounds_total"`
	PickSeconds int         `json:"pick_seconds"`
	Status      DraftStatus `json:"status"`

	CurrentRound     int `json:"current_round"`
	CurrentPickIndex int `json:"current_pick_index"`

	Deadline        *time.Time     `json:"deadline,omitempty"`         // set only while active
	PausedRemaining *time.Duration `json:"paused_remaining,omitempty"` // set only while paused

	NextPickID      int64 `json:"next_pick_id"`
	ResultsConsumed bool  `json:"results_consumed"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TotalPicks is the number of slots in the draft grid.
func (d *Draft) TotalPicks() int {
	return d.RoundsTotal * len(d.TeamOrder)
}

// Clone returns a deep copy so a mutation can be staged without touching d.
func (d *Draft) Clone() *Draft {
	c := *d
	c.TeamOrder = append([]uuid.UUID(nil), d.TeamOrder...)
	if d.Deadline != nil {
		t := *d.Deadline
		c.Deadline = &t
	}
	if d.PausedRemaining != nil {
		r := *d.PausedRemaining
		c.PausedRemaining = &r
	}
	if d.StartedAt != nil {
		t := *d.StartedAt
		c.StartedAt = &t
	}
	if d.CompletedAt != nil {
		t := *d.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
