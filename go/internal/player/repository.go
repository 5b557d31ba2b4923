package player

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/sqlutil"
)

// Repository handles all player-related database operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new player repository
func NewRepository(database *sql.DB) *Repository {
	return &Repository{db: database}
}

var (
	_ orchestrator.PlayerPool = (*Repository)(nil)
	_ orchestrator.Ranking    = (*Repository)(nil)
)

func scanPlayer(scan func(dest ...any) error) (models.Player, error) {
	var (
		p    models.Player
		rank sql.NullInt32
	)
	if err := scan(&p.ID, &p.FullName, &p.Position, &rank, &p.CreatedAt); err != nil {
		return models.Player{}, err
	}
	p.Rank = sqlutil.FromSqlInt32(rank)
	return p, nil
}

// ListPlayers returns the whole draftable pool
func (r *Repository) ListPlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, full_name, position, adp_rank, created_at
		FROM players
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	return players, nil
}

// RankedPlayerIDs returns ranked players best first. Unranked players are
// left to the auto-pick fallback.
func (r *Repository) RankedPlayerIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id
		FROM players
		WHERE adp_rank IS NOT NULL
		ORDER BY adp_rank, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to rank players: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan ranked player: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to rank players: %w", err)
	}
	return ids, nil
}
