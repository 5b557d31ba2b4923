package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/mcdev12/draftroom/go/internal/sqlutil"
)

// Repository is the Postgres draft store. Every statement is scoped to one
// draft id, so writers of different drafts only meet at the row level.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var _ orchestrator.DraftStore = (*Repository)(nil)

const draftColumns = `id, league_id, team_order, rounds_total, pick_seconds, status, deadline,
	paused_remaining_ms, next_pick_id, results_consumed, started_at, completed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+draftColumns+` FROM drafts WHERE id = $1`, id)
	d, err := scanDraft(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return d, nil
}

func (r *Repository) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.DraftPick, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, draft_id, round, pick_number, team_id, player_id, is_auto, picked_at
		FROM draft_picks
		WHERE draft_id = $1
		ORDER BY pick_number`, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}
	defer rows.Close()

	var picks []models.DraftPick
	for rows.Next() {
		var p models.DraftPick
		if err := rows.Scan(&p.ID, &p.DraftID, &p.Round, &p.PickNumber, &p.TeamID, &p.PlayerID, &p.IsAuto, &p.PickedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft pick: %w", err)
		}
		picks = append(picks, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}
	return picks, nil
}

func (r *Repository) ListDraftIDsByStatus(ctx context.Context, statuses ...models.DraftStatus) ([]uuid.UUID, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM drafts WHERE status = ANY($1) ORDER BY created_at`, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts by status: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan draft id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Apply writes the header, the pick change and the outbox rows in one
// transaction.
func (r *Repository) Apply(ctx context.Context, m orchestrator.Mutation) error {
	if m.Draft == nil {
		return fmt.Errorf("mutation has no draft header")
	}
	d := m.Draft
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE drafts SET
				pick_seconds = $2,
				status = $3,
				deadline = $4,
				paused_remaining_ms = $5,
				next_pick_id = $6,
				results_consumed = $7,
				started_at = $8,
				completed_at = $9,
				updated_at = $10
			WHERE id = $1`,
			d.ID, d.PickSeconds, string(d.Status),
			sqlutil.ToSqlTime(d.Deadline), sqlutil.ToSqlMillis(d.PausedRemaining),
			d.NextPickID, d.ResultsConsumed,
			sqlutil.ToSqlTime(d.StartedAt), sqlutil.ToSqlTime(d.CompletedAt), d.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update draft: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update draft %s: %w", d.ID, sql.ErrNoRows)
		}

		if m.TruncateTo != nil {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM draft_picks WHERE draft_id = $1 AND pick_number > $2`, d.ID, *m.TruncateTo); err != nil {
				return fmt.Errorf("truncate picks: %w", err)
			}
		}

		if p := m.Append; p != nil {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO draft_picks (draft_id, id, round, pick_number, team_id, player_id, is_auto, picked_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				p.DraftID, p.ID, p.Round, p.PickNumber, p.TeamID, p.PlayerID, p.IsAuto, p.PickedAt,
			); err != nil {
				return fmt.Errorf("insert pick: %w", err)
			}
		}

		for _, ev := range m.Events {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO draft_outbox (id, draft_id, event_type, payload, created_at)
				VALUES ($1, $2, $3, $4, $5)`,
				ev.ID, ev.DraftID, ev.EventType, []byte(ev.Payload), ev.CreatedAt,
			); err != nil {
				return fmt.Errorf("insert outbox %s: %w", ev.EventType, err)
			}
		}
		return nil
	})
}

// CreateDraft inserts a pending draft header.
func (r *Repository) CreateDraft(ctx context.Context, d *models.Draft) error {
	order := make([]string, len(d.TeamOrder))
	for i, id := range d.TeamOrder {
		order[i] = id.String()
	}
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO drafts (id, league_id, team_order, rounds_total, pick_seconds, status, next_pick_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $7)`,
		d.ID, d.LeagueID, pq.Array(order), d.RoundsTotal, d.PickSeconds, string(models.DraftStatusPending), now,
	)
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

func scanDraft(row rowScanner) (*models.Draft, error) {
	var (
		d           models.Draft
		order       pq.StringArray
		status      string
		deadline    sql.NullTime
		remaining   sql.NullInt64
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	if err := row.Scan(
		&d.ID, &d.LeagueID, &order, &d.RoundsTotal, &d.PickSeconds, &status, &deadline,
		&remaining, &d.NextPickID, &d.ResultsConsumed, &startedAt, &completedAt, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.TeamOrder = make([]uuid.UUID, 0, len(order))
	for _, s := range order {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid team id in team_order: %w", err)
		}
		d.TeamOrder = append(d.TeamOrder, id)
	}
	d.Status = models.DraftStatus(status)
	d.Deadline = sqlutil.FromSqlTime(deadline)
	d.PausedRemaining = sqlutil.FromSqlMillis(remaining)
	d.StartedAt = sqlutil.FromSqlTime(startedAt)
	d.CompletedAt = sqlutil.FromSqlTime(completedAt)
	return &d, nil
}
