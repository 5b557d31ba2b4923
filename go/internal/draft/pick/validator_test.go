package pick

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	team := uuid.New()
	other := uuid.New()
	taken := models.Player{ID: uuid.New(), Position: "QB"}
	free := models.Player{ID: uuid.New(), Position: "QB"}

	board := Board{
		Status:  models.DraftStatusActive,
		OnClock: team,
		Drafted: map[uuid.UUID]struct{}{taken.ID: {}},
	}
	noSecondQB := RosterRuleFunc(func(roster []models.Player, c models.Player) (bool, string) {
		for _, p := range roster {
			if p.Position == c.Position {
				return false, "position QB is full"
			}
		}
		return true, ""
	})

	tests := []struct {
		name      string
		board     Board
		team      uuid.UUID
		roster    []models.Player
		candidate *models.Player
		want      error
	}{
		{name: "accept", board: board, team: team, candidate: &free},
		{name: "paused", board: Board{Status: models.DraftStatusPaused, OnClock: team}, team: team, candidate: &free, want: ErrDraftNotActive},
		{name: "completed", board: Board{Status: models.DraftStatusCompleted}, team: team, candidate: &free, want: ErrDraftAlreadyCompleted},
		{name: "off turn", board: board, team: other, candidate: &free, want: ErrNotYourTurn},
		{name: "taken", board: board, team: team, candidate: &taken, want: ErrPlayerAlreadyDrafted},
		{name: "unknown player", board: board, team: team, want: &RosterRuleViolation{}},
		{name: "roster full", board: board, team: team, roster: []models.Player{taken}, candidate: &free, want: &RosterRuleViolation{Reason: "position QB is full"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.board, tt.team, tt.roster, tt.candidate, noSecondQB)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRosterRuleViolationIs(t *testing.T) {
	err := error(&RosterRuleViolation{Reason: "cap"})
	assert.True(t, errors.Is(err, &RosterRuleViolation{}))
	assert.False(t, errors.Is(err, &RosterRuleViolation{Reason: "other"}))
	assert.False(t, errors.Is(err, ErrNotYourTurn))
}
