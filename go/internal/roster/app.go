package roster

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/draft/pick"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// PositionCaps limits how many players of each position one team may draft.
// Positions without an entry are unlimited.
type PositionCaps map[string]int

var _ pick.RosterRule = PositionCaps(nil)

func (c PositionCaps) Allow(roster []models.Player, candidate models.Player) (bool, string) {
	pos := strings.ToUpper(candidate.Position)
	limit, ok := c[pos]
	if !ok {
		return true, ""
	}
	held := 0
	for _, p := range roster {
		if strings.ToUpper(p.Position) == pos {
			held++
		}
	}
	if held >= limit {
		return false, fmt.Sprintf("roster already holds %d %s (max %d)", held, pos, limit)
	}
	return true, ""
}

// LeagueSource defines what the app layer needs to read league settings
type LeagueSource interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
}

// App builds the roster predicate for a league from its settings
type App struct {
	leagues LeagueSource
}

// NewApp creates a new roster App
func NewApp(leagues LeagueSource) *App {
	return &App{leagues: leagues}
}

var _ orchestrator.RosterRules = (*App)(nil)

// RuleFor returns the league's position caps. A league without caps gets a
// nil rule, which accepts any roster.
func (a *App) RuleFor(ctx context.Context, leagueID uuid.UUID) (pick.RosterRule, error) {
	league, err := a.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster settings: %w", err)
	}
	if len(league.Settings.RosterCaps) == 0 {
		return nil, nil
	}
	caps := make(PositionCaps, len(league.Settings.RosterCaps))
	for pos, n := range league.Settings.RosterCaps {
		caps[strings.ToUpper(pos)] = n
	}
	return caps, nil
}
