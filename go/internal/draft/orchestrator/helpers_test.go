package orchestrator_test

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/draft/pick"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []events.DraftEvent
}

func (r *recorder) Publish(_ uuid.UUID, ev events.DraftEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []events.DraftEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.DraftEvent(nil), r.events...)
}

func (r *recorder) ofType(typ events.EventType) []events.DraftEvent {
	var out []events.DraftEvent
	for _, ev := range r.all() {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

type fakeLeagues struct {
	commissioner uuid.UUID
	owners       map[uuid.UUID]uuid.UUID // owner -> team
}

func (f *fakeLeagues) CommissionerID(context.Context, uuid.UUID) (uuid.UUID, error) {
	return f.commissioner, nil
}

func (f *fakeLeagues) TeamForOwner(_ context.Context, _, owner uuid.UUID) (uuid.UUID, error) {
	team, ok := f.owners[owner]
	if !ok {
		return uuid.Nil, orchestrator.ErrNotTeamOwner
	}
	return team, nil
}

type fakePool struct {
	players []models.Player
	ranked  []uuid.UUID
}

func (f *fakePool) ListPlayers(context.Context) ([]models.Player, error) {
	return f.players, nil
}

func (f *fakePool) RankedPlayerIDs(context.Context) ([]uuid.UUID, error) {
	return f.ranked, nil
}

type fakeQueues struct {
	mu     sync.Mutex
	queues map[uuid.UUID][]uuid.UUID
}

func (f *fakeQueues) Queue(_, team uuid.UUID) []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queues[team]
}

func (f *fakeQueues) set(team uuid.UUID, ids ...uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues[team] = ids
}

type fakeRules struct {
	rule pick.RosterRule
}

func (f fakeRules) RuleFor(context.Context, uuid.UUID) (pick.RosterRule, error) {
	return f.rule, nil
}

// flakyStore fails Apply while failing is set. When hold is set, Apply
// signals entered and blocks until hold is closed.
type flakyStore struct {
	*repository.Memory
	failing  atomic.Bool
	failures atomic.Int32
	hold     chan struct{}
	entered  chan struct{}
}

func (s *flakyStore) stall() (release func()) {
	s.hold = make(chan struct{})
	s.entered = make(chan struct{}, 1)
	return func() { close(s.hold) }
}

func (s *flakyStore) Apply(ctx context.Context, m orchestrator.Mutation) error {
	if s.hold != nil {
		select {
		case s.entered <- struct{}{}:
		default:
		}
		<-s.hold
	}
	if s.failing.Load() {
		s.failures.Add(1)
		return errors.New("connection reset")
	}
	return s.Memory.Apply(ctx, m)
}

type fixture struct {
	t            *testing.T
	ctx          context.Context
	clock        *clockwork.FakeClock
	store        *flakyStore
	hub          *recorder
	pool         *fakePool
	queues       *fakeQueues
	leagues      *fakeLeagues
	rules        pick.RosterRule
	cfg          orchestrator.Config
	o            *orchestrator.Orchestrator
	draft        *models.Draft
	commissioner uuid.UUID
	owners       []uuid.UUID // owners[i] owns draft.TeamOrder[i]
}

type option func(*fixture)

func withConfig(fn func(*orchestrator.Config)) option {
	return func(f *fixture) { fn(&f.cfg) }
}

func withRule(rule pick.RosterRule) option {
	return func(f *fixture) { f.rules = rule }
}

func withPositions(positions ...string) option {
	return func(f *fixture) {
		for i := range f.pool.players {
			f.pool.players[i].Position = positions[i%len(positions)]
		}
	}
}

func newFixture(t *testing.T, teams, rounds int, opts ...option) *fixture {
	t.Helper()
	f := &fixture{
		t:            t,
		ctx:          context.Background(),
		clock:        clockwork.NewFakeClock(),
		store:        &flakyStore{Memory: repository.NewMemory()},
		hub:          &recorder{},
		pool:         &fakePool{},
		queues:       &fakeQueues{queues: map[uuid.UUID][]uuid.UUID{}},
		cfg:          orchestrator.DefaultConfig(),
		commissioner: uuid.New(),
	}

	f.draft = &models.Draft{
		ID:          uuid.New(),
		LeagueID:    uuid.New(),
		RoundsTotal: rounds,
		PickSeconds: 60,
	}
	f.leagues = &fakeLeagues{commissioner: f.commissioner, owners: map[uuid.UUID]uuid.UUID{}}
	for i := 0; i < teams; i++ {
		team, owner := uuid.New(), uuid.New()
		f.draft.TeamOrder = append(f.draft.TeamOrder, team)
		f.owners = append(f.owners, owner)
		f.leagues.owners[owner] = team
	}
	for i := 0; i < teams*rounds*2; i++ {
		f.pool.players = append(f.pool.players, models.Player{ID: uuid.New(), FullName: "Player", Position: "RB"})
	}
	sort.Slice(f.pool.players, func(i, j int) bool {
		return bytes.Compare(f.pool.players[i].ID[:], f.pool.players[j].ID[:]) < 0
	})

	for _, opt := range opts {
		opt(f)
	}
	require.NoError(t, f.store.CreateDraft(f.ctx, f.draft))
	f.o = f.newOrchestrator()
	return f
}

func (f *fixture) newOrchestrator() *orchestrator.Orchestrator {
	deps := orchestrator.Dependencies{
		Store:   f.store,
		Players: f.pool,
		Leagues: f.leagues,
		Hub:     f.hub,
		Queues:  f.queues,
		Clock:   f.clock,
	}
	if f.pool.ranked != nil {
		deps.Ranking = f.pool
	}
	if f.rules != nil {
		deps.Rules = fakeRules{rule: f.rules}
	}
	o, err := orchestrator.New(deps, f.cfg)
	require.NoError(f.t, err)
	f.t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = o.Shutdown(ctx)
	})
	return o
}

func (f *fixture) start() events.FullState {
	f.t.Helper()
	st, err := f.o.Execute(f.ctx, f.draft.ID, f.commissioner, orchestrator.StartCommand())
	require.NoError(f.t, err)
	return st
}

func (f *fixture) state() events.FullState {
	f.t.Helper()
	st, err := f.o.State(f.ctx, f.draft.ID)
	require.NoError(f.t, err)
	return st
}

func (f *fixture) onClock() uuid.UUID {
	f.t.Helper()
	st := f.state()
	require.NotNil(f.t, st.CurrentTeamID)
	return *st.CurrentTeamID
}

// nextFree returns the lowest-id pool player not yet drafted.
func (f *fixture) nextFree() uuid.UUID {
	f.t.Helper()
	taken := map[uuid.UUID]bool{}
	for _, p := range f.state().Picks {
		taken[p.PlayerID] = true
	}
	for _, p := range f.pool.players {
		if !taken[p.ID] {
			return p.ID
		}
	}
	f.t.Fatal("pool exhausted")
	return uuid.Nil
}

// pickOnClock submits a pick for whichever team is on the clock.
func (f *fixture) pickOnClock() *models.DraftPick {
	f.t.Helper()
	p, err := f.o.SubmitPick(f.ctx, f.draft.ID, f.onClock(), f.nextFree())
	require.NoError(f.t, err)
	return p
}

func (f *fixture) waitForPicks(n int) events.FullState {
	f.t.Helper()
	var st events.FullState
	require.Eventually(f.t, func() bool {
		st = f.state()
		return len(st.Picks) == n
	}, 2*time.Second, 5*time.Millisecond)
	return st
}
