package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func players(positions ...string) []models.Player {
	out := make([]models.Player, len(positions))
	for i, p := range positions {
		out[i] = models.Player{ID: uuid.New(), Position: p}
	}
	return out
}

func TestPositionCaps(t *testing.T) {
	caps := PositionCaps{"QB": 1, "RB": 2}

	tests := []struct {
		name      string
		roster    []models.Player
		candidate string
		want      bool
	}{
		{"empty roster", nil, "QB", true},
		{"at qb cap", players("QB"), "QB", false},
		{"lowercase position counts", players("qb"), "QB", false},
		{"under rb cap", players("RB", "QB"), "RB", true},
		{"at rb cap", players("RB", "RB"), "rb", false},
		{"uncapped position", players("WR", "WR", "WR"), "WR", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := caps.Allow(tt.roster, models.Player{ID: uuid.New(), Position: tt.candidate})
			assert.Equal(t, tt.want, ok)
			if !ok {
				assert.Contains(t, reason, "max")
			}
		})
	}
}

type leagueFunc func(ctx context.Context, id uuid.UUID) (*models.League, error)

func (f leagueFunc) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	return f(ctx, id)
}

func TestRuleFor(t *testing.T) {
	ctx := context.Background()

	app := NewApp(leagueFunc(func(context.Context, uuid.UUID) (*models.League, error) {
		return &models.League{Settings: models.LeagueSettings{RosterCaps: map[string]int{"te": 1}}}, nil
	}))
	rule, err := app.RuleFor(ctx, uuid.New())
	require.NoError(t, err)
	ok, _ := rule.Allow(players("TE"), models.Player{Position: "TE"})
	assert.False(t, ok)

	open := NewApp(leagueFunc(func(context.Context, uuid.UUID) (*models.League, error) {
		return &models.League{}, nil
	}))
	rule, err = open.RuleFor(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, rule)

	broken := NewApp(leagueFunc(func(context.Context, uuid.UUID) (*models.League, error) {
		return nil, errors.New("boom")
	}))
	_, err = broken.RuleFor(ctx, uuid.New())
	assert.Error(t, err)
}
