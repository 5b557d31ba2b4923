package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to DRAFTROOM_TEST_DSN and applies the schema. Tests
// that need it are skipped when the variable is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("DRAFTROOM_TEST_DSN")
	if dsn == "" {
		t.Skip("DRAFTROOM_TEST_DSN not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(Schema)
	require.NoError(t, err)
	return db
}

func TestPostgresApply(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	leagueID := uuid.New()
	_, err := db.ExecContext(ctx, `INSERT INTO leagues (id, name, commissioner_id) VALUES ($1, 'it', $2)`, leagueID, uuid.New())
	require.NoError(t, err)

	d := &models.Draft{ID: uuid.New(), LeagueID: leagueID, TeamOrder: []uuid.UUID{uuid.New(), uuid.New()}, RoundsTotal: 2, PickSeconds: 60}
	require.NoError(t, repo.CreateDraft(ctx, d))

	got, err := repo.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusPending, got.Status)
	assert.Equal(t, d.TeamOrder, got.TeamOrder)

	now := time.Now().UTC().Truncate(time.Millisecond)
	next := got.Clone()
	next.Status = models.DraftStatusActive
	dl := now.Add(time.Minute)
	next.Deadline = &dl
	next.NextPickID = 2
	p := &models.DraftPick{ID: 1, DraftID: d.ID, Round: 1, PickNumber: 1, TeamID: d.TeamOrder[0], PlayerID: uuid.New(), PickedAt: now}
	ev, err := events.New(d.ID, events.EventTypePickMade, 1, now, map[string]string{"k": "v"})
	require.NoError(t, err)
	require.NoError(t, repo.Apply(ctx, orchestrator.Mutation{Draft: next, Append: p, Events: []events.Envelope{ev.Envelope()}}))

	picks, err := repo.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, p.PlayerID, picks[0].PlayerID)

	ids, err := repo.ListDraftIDsByStatus(ctx, models.DraftStatusActive)
	require.NoError(t, err)
	assert.Contains(t, ids, d.ID)

	var payload []byte
	require.NoError(t, db.QueryRowContext(ctx, `SELECT payload FROM draft_outbox WHERE id = $1`, ev.ID).Scan(&payload))
	assert.True(t, json.Valid(payload))

	// a duplicate pick number rolls the whole mutation back
	again := next.Clone()
	again.NextPickID = 3
	dup := *p
	dup.ID = 2
	dup.PlayerID = uuid.New()
	require.Error(t, repo.Apply(ctx, orchestrator.Mutation{Draft: again, Append: &dup}))
	got, err = repo.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.NextPickID)

	keep := 0
	require.NoError(t, repo.Apply(ctx, orchestrator.Mutation{Draft: next, TruncateTo: &keep}))
	picks, err = repo.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, picks)
}
