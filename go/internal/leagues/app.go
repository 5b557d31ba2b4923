package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// ErrNotAMember is returned when a user owns no team in the league.
var ErrNotAMember = orchestrator.ErrNotTeamOwner

// LeaguesRepository defines what the app layer needs from the repository
type LeaguesRepository interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetTeamByOwner(ctx context.Context, leagueID, ownerID uuid.UUID) (*models.FantasyTeam, error)
	GetTeamsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.FantasyTeam, error)
}

// App answers the league questions the draft room asks: who is the
// commissioner, and which team does a user own.
type App struct {
	repo LeaguesRepository
}

// NewApp creates a new leagues App
func NewApp(repo LeaguesRepository) *App {
	return &App{repo: repo}
}

var _ orchestrator.Leagues = (*App)(nil)

// GetLeague retrieves a league by ID
func (a *App) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	league, err := a.repo.GetLeague(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return league, nil
}

func (a *App) CommissionerID(ctx context.Context, leagueID uuid.UUID) (uuid.UUID, error) {
	league, err := a.GetLeague(ctx, leagueID)
	if err != nil {
		return uuid.Nil, err
	}
	return league.CommissionerID, nil
}

func (a *App) TeamForOwner(ctx context.Context, leagueID, ownerID uuid.UUID) (uuid.UUID, error) {
	team, err := a.repo.GetTeamByOwner(ctx, leagueID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNotAMember
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve team: %w", err)
	}
	return team.ID, nil
}

// TeamOrder returns the league's team ids in creation order, the default
// first-round order for a new draft.
func (a *App) TeamOrder(ctx context.Context, leagueID uuid.UUID) ([]uuid.UUID, error) {
	teams, err := a.repo.GetTeamsByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("league %s has no teams", leagueID)
	}
	order := make([]uuid.UUID, len(teams))
	for i, t := range teams {
		order[i] = t.ID
	}
	return order, nil
}
