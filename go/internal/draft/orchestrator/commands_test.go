package orchestrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLeagues struct {
	commissioner uuid.UUID
	err          error
	teamErr      error
}

func (s staticLeagues) CommissionerID(context.Context, uuid.UUID) (uuid.UUID, error) {
	return s.commissioner, s.err
}

func (s staticLeagues) TeamForOwner(context.Context, uuid.UUID, uuid.UUID) (uuid.UUID, error) {
	if s.teamErr != nil {
		return uuid.Nil, s.teamErr
	}
	return uuid.Nil, ErrNotTeamOwner
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		kind   CommandKind
		status models.DraftStatus
		want   error
	}{
		{CommandStart, models.DraftStatusPending, nil},
		{CommandStart, models.DraftStatusActive, ErrDraftAlreadyStarted},
		{CommandStart, models.DraftStatusCompleted, ErrDraftAlreadyCompleted},
		{commandPick, models.DraftStatusPaused, ErrDraftNotActive},
		{CommandPause, models.DraftStatusActive, nil},
		{CommandPause, models.DraftStatusPaused, ErrDraftNotActive},
		{CommandResume, models.DraftStatusActive, ErrDraftNotPaused},
		{CommandResume, models.DraftStatusPaused, nil},
		{CommandUpdateTimer, models.DraftStatusPending, nil},
		{CommandUpdateTimer, models.DraftStatusCompleted, ErrDraftAlreadyCompleted},
		{CommandRevert, models.DraftStatusPending, ErrDraftNotActive},
		{CommandRevert, models.DraftStatusCompleted, nil},
		{CommandResultsConsumed, models.DraftStatusActive, ErrDraftNotActive},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.kind, tt.status), func(t *testing.T) {
			err := checkStatus(tt.kind, tt.status)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Error(t, checkStatus("shuffle", models.DraftStatusActive))
	assert.Error(t, checkStatus(CommandPause, "UNKNOWN"))
}

func TestGateAuthorize(t *testing.T) {
	ctx := context.Background()
	commissioner := uuid.New()
	league := uuid.New()
	g := NewGate(staticLeagues{commissioner: commissioner}, DefaultConfig())

	assert.NoError(t, g.Authorize(ctx, league, commissioner, PauseCommand()))
	assert.NoError(t, g.Authorize(ctx, league, commissioner, UpdateTimerCommand(10)))
	assert.NoError(t, g.Authorize(ctx, league, commissioner, UpdateTimerCommand(300)))
	assert.NoError(t, g.Authorize(ctx, league, commissioner, RevertCommand(0)))

	assert.ErrorIs(t, g.Authorize(ctx, league, uuid.Nil, PauseCommand()), ErrUnauthenticated)
	assert.ErrorIs(t, g.Authorize(ctx, league, uuid.New(), PauseCommand()), ErrUnauthorized)
	assert.ErrorIs(t, g.Authorize(ctx, league, commissioner, UpdateTimerCommand(9)), ErrInvalidTimerValue)
	assert.ErrorIs(t, g.Authorize(ctx, league, commissioner, UpdateTimerCommand(301)), ErrInvalidTimerValue)
	assert.ErrorIs(t, g.Authorize(ctx, league, commissioner, RevertCommand(-1)), ErrInvalidRevertTarget)
	assert.Error(t, g.Authorize(ctx, league, commissioner, Command{Kind: commandPick}))

	failing := NewGate(staticLeagues{err: errors.New("db down")}, DefaultConfig())
	err := failing.Authorize(ctx, league, commissioner, PauseCommand())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnauthorized)
}

func TestGateTeamFor(t *testing.T) {
	ctx := context.Background()
	g := NewGate(staticLeagues{}, DefaultConfig())
	_, err := g.TeamFor(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = g.TeamFor(ctx, uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	g = NewGate(staticLeagues{teamErr: fmt.Errorf("failed to query team: %w", sql.ErrNoRows)}, DefaultConfig())
	_, err = g.TeamFor(ctx, uuid.New(), uuid.New())
	assert.Equal(t, "unauthorized", Code(err))

	outage := errors.New("dial tcp 127.0.0.1:5432: connection refused")
	g = NewGate(staticLeagues{teamErr: outage}, DefaultConfig())
	_, err = g.TeamFor(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, outage)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "internal", Code(err))
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotYourTurn, "not_your_turn"},
		{fmt.Errorf("wrapped: %w", ErrPlayerAlreadyDrafted), "player_already_drafted"},
		{&RosterRuleViolation{Reason: "QB full"}, "roster_rule_violation"},
		{ErrDraftNotActive, "draft_not_active"},
		{ErrInvalidTimerValue, "invalid_timer_value"},
		{fmt.Errorf("%w: boom", ErrPersistence), "persistence_failure"},
		{errors.New("something else"), "internal"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Code(tt.err), tt.err.Error())
	}
	assert.Empty(t, Code(nil))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
max_pick_seconds: 120
heartbeat_interval: 2s
autopick_fallback: random
allow_revert_after_complete: true
idle_eviction: 30s
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.MinPickSeconds)
	assert.Equal(t, 120, cfg.MaxPickSeconds)
	assert.Equal(t, 2*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, FallbackRandom, cfg.AutoPickFallback)
	assert.True(t, cfg.AllowRevertAfterComplete)
	assert.Equal(t, 2*time.Second, cfg.AutoPickRetry)
	assert.Equal(t, 30*time.Second, cfg.IdleEviction)

	require.NoError(t, os.WriteFile(path, []byte("autopick_fallback: best_available\n"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestStrategies(t *testing.T) {
	players := []models.Player{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}

	p, ok := LowestIDStrategy{}.Select(players)
	require.True(t, ok)
	assert.Equal(t, players[0].ID, p.ID)

	_, ok = LowestIDStrategy{}.Select(nil)
	assert.False(t, ok)

	r := NewRandomStrategy()
	for i := 0; i < 20; i++ {
		p, ok := r.Select(players)
		require.True(t, ok)
		assert.Contains(t, players, p)
	}
	_, ok = r.Select(nil)
	assert.False(t, ok)

	assert.IsType(t, LowestIDStrategy{}, NewStrategy(FallbackLowestID))
	assert.IsType(t, &RandomStrategy{}, NewStrategy(FallbackRandom))
}
