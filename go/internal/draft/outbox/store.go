package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/sqlc-dev/pqtype"
)

// ErrAlreadySent is returned by FetchByID when the row was relayed already,
// usually by the fallback sweep racing a notification.
var ErrAlreadySent = errors.New("outbox event not found or already sent")

// Store reads and acknowledges draft_outbox rows.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FetchByID(ctx context.Context, id uuid.UUID) (*events.Envelope, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, draft_id, event_type, payload, created_at
		FROM draft_outbox
		WHERE id = $1 AND sent_at IS NULL`, id)
	env, err := scanEnvelope(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlreadySent
		}
		return nil, fmt.Errorf("failed to fetch outbox event by ID: %w", err)
	}
	return env, nil
}

// FetchUnsent returns up to limit unsent rows, oldest first.
func (s *Store) FetchUnsent(ctx context.Context, limit int) ([]events.Envelope, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, draft_id, event_type, payload, created_at
		FROM draft_outbox
		WHERE sent_at IS NULL
		ORDER BY created_at
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var out []events.Envelope
	for rows.Next() {
		env, err := scanEnvelope(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		out = append(out, *env)
	}
	return out, rows.Err()
}

func (s *Store) MarkSent(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE draft_outbox SET sent_at = $2 WHERE id = $1`, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

func (s *Store) CountPending(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM draft_outbox WHERE sent_at IS NULL`).Scan(&count)
	return count, err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEnvelope(row scanner) (*events.Envelope, error) {
	var (
		env     events.Envelope
		payload pqtype.NullRawMessage
	)
	if err := row.Scan(&env.ID, &env.DraftID, &env.EventType, &payload, &env.CreatedAt); err != nil {
		return nil, err
	}
	if payload.Valid {
		env.Payload = payload.RawMessage
	}
	return &env, nil
}
