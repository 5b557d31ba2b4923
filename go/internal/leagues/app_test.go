package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	leagues map[uuid.UUID]*models.League
	teams   []models.FantasyTeam
	broken  bool
}

func (m *memRepo) GetLeague(_ context.Context, id uuid.UUID) (*models.League, error) {
	if l, ok := m.leagues[id]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("failed to get league: %w", sql.ErrNoRows)
}

func (m *memRepo) GetTeamByOwner(_ context.Context, leagueID, ownerID uuid.UUID) (*models.FantasyTeam, error) {
	if m.broken {
		return nil, errors.New("connection reset")
	}
	for i := range m.teams {
		if m.teams[i].LeagueID == leagueID && m.teams[i].OwnerID == ownerID {
			return &m.teams[i], nil
		}
	}
	return nil, fmt.Errorf("failed to get fantasy team by owner: %w", sql.ErrNoRows)
}

func (m *memRepo) GetTeamsByLeague(_ context.Context, leagueID uuid.UUID) ([]models.FantasyTeam, error) {
	var out []models.FantasyTeam
	for _, t := range m.teams {
		if t.LeagueID == leagueID {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestApp(t *testing.T) {
	ctx := context.Background()
	league := &models.League{ID: uuid.New(), Name: "Dynasty", CommissionerID: uuid.New()}
	owner := uuid.New()
	repo := &memRepo{
		leagues: map[uuid.UUID]*models.League{league.ID: league},
		teams: []models.FantasyTeam{
			{ID: uuid.New(), LeagueID: league.ID, OwnerID: owner, Name: "A"},
			{ID: uuid.New(), LeagueID: league.ID, OwnerID: uuid.New(), Name: "B"},
			{ID: uuid.New(), LeagueID: uuid.New(), OwnerID: owner, Name: "elsewhere"},
		},
	}
	app := NewApp(repo)

	t.Run("commissioner", func(t *testing.T) {
		id, err := app.CommissionerID(ctx, league.ID)
		require.NoError(t, err)
		assert.Equal(t, league.CommissionerID, id)

		_, err = app.CommissionerID(ctx, uuid.New())
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	t.Run("team for owner", func(t *testing.T) {
		team, err := app.TeamForOwner(ctx, league.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, repo.teams[0].ID, team)

		_, err = app.TeamForOwner(ctx, league.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotAMember)

		gate := orchestrator.NewGate(app, orchestrator.DefaultConfig())
		_, err = gate.TeamFor(ctx, league.ID, uuid.New())
		assert.ErrorIs(t, err, orchestrator.ErrUnauthorized)
	})

	t.Run("repository failure is not membership", func(t *testing.T) {
		repo.broken = true
		defer func() { repo.broken = false }()
		_, err := app.TeamForOwner(ctx, league.ID, owner)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotAMember)

		gate := orchestrator.NewGate(app, orchestrator.DefaultConfig())
		_, err = gate.TeamFor(ctx, league.ID, owner)
		assert.Equal(t, "internal", orchestrator.Code(err))
	})

	t.Run("team order", func(t *testing.T) {
		order, err := app.TeamOrder(ctx, league.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{repo.teams[0].ID, repo.teams[1].ID}, order)

		_, err = app.TeamOrder(ctx, uuid.New())
		assert.Error(t, err)
	})
}
