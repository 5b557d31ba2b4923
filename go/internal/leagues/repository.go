package leagues

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/sqlc-dev/pqtype"
)

// Repository implements league data access operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new leagues repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetLeague retrieves a league by ID
func (r *Repository) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	var (
		league   models.League
		settings pqtype.NullRawMessage
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, commissioner_id, settings, created_at
		FROM leagues
		WHERE id = $1`, id).
		Scan(&league.ID, &league.Name, &league.CommissionerID, &settings, &league.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	if settings.Valid {
		if err := json.Unmarshal(settings.RawMessage, &league.Settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal league settings: %w", err)
		}
	}
	return &league, nil
}

// GetTeamByOwner retrieves the fantasy team ownerID runs in a league
func (r *Repository) GetTeamByOwner(ctx context.Context, leagueID, ownerID uuid.UUID) (*models.FantasyTeam, error) {
	var team models.FantasyTeam
	err := r.db.QueryRowContext(ctx, `
		SELECT id, league_id, owner_id, name, created_at
		FROM fantasy_teams
		WHERE league_id = $1 AND owner_id = $2`, leagueID, ownerID).
		Scan(&team.ID, &team.LeagueID, &team.OwnerID, &team.Name, &team.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get fantasy team by owner: %w", err)
	}
	return &team, nil
}

// GetTeamsByLeague lists a league's fantasy teams in creation order
func (r *Repository) GetTeamsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.FantasyTeam, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, league_id, owner_id, name, created_at
		FROM fantasy_teams
		WHERE league_id = $1
		ORDER BY created_at, id`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fantasy teams: %w", err)
	}
	defer rows.Close()

	var teams []models.FantasyTeam
	for rows.Next() {
		var t models.FantasyTeam
		if err := rows.Scan(&t.ID, &t.LeagueID, &t.OwnerID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fantasy team: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get fantasy teams: %w", err)
	}
	return teams, nil
}
