package orchestrator

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Dependencies are the collaborators an Orchestrator drives. Ranking, Rules
// and Queues are optional.
type Dependencies struct {
	Store   DraftStore
	Players PlayerPool
	Leagues Leagues
	Hub     Broadcaster
	Ranking Ranking
	Rules   RosterRules
	Queues  QueueSource
	// Clock defaults to clockwork.NewRealClock(). Tests pass a FakeClock.
	Clock clockwork.Clock
}

// Orchestrator runs one actor per live draft. Drafts never share state, so
// actors never contend with each other.
type Orchestrator struct {
	store    DraftStore
	players  PlayerPool
	ranking  Ranking
	rules    RosterRules
	queues   QueueSource
	hub      Broadcaster
	gate     *Gate
	clock    clockwork.Clock
	cfg      Config
	strategy AutoPickStrategy

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	actors  map[uuid.UUID]*actor
	lastSeq map[uuid.UUID]uint64 // seq reached by evicted actors
	stopped bool
}

// New creates an orchestrator. Actors are spawned lazily on first use or by
// Recover.
func New(deps Dependencies, cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Store == nil || deps.Players == nil || deps.Leagues == nil {
		return nil, errors.New("orchestrator needs a store, a player pool and leagues")
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	hub := deps.Hub
	if hub == nil {
		hub = discard{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		store:    deps.Store,
		players:  deps.Players,
		ranking:  deps.Ranking,
		rules:    deps.Rules,
		queues:   deps.Queues,
		hub:      hub,
		gate:     NewGate(deps.Leagues, cfg),
		clock:    clock,
		cfg:      cfg,
		strategy: NewStrategy(cfg.AutoPickFallback),
		ctx:      ctx,
		cancel:   cancel,
		actors:   make(map[uuid.UUID]*actor),
		lastSeq:  make(map[uuid.UUID]uint64),
	}, nil
}

type discard struct{}

func (discard) Publish(uuid.UUID, events.DraftEvent) {}

// Recover spawns actors for every active or paused draft in the store.
func (o *Orchestrator) Recover(ctx context.Context) error {
	ids, err := o.store.ListDraftIDsByStatus(ctx, models.DraftStatusActive, models.DraftStatusPaused)
	if err != nil {
		return fmt.Errorf("failed to list live drafts: %w", err)
	}
	for _, id := range ids {
		if _, err := o.actorFor(ctx, id); err != nil {
			log.Error().Err(err).Str("draft_id", id.String()).Msg("failed to recover draft")
			continue
		}
	}
	log.Info().Int("drafts", len(ids)).Msg("recovered live drafts")
	return nil
}

// Shutdown stops every actor and its timers, then waits for them to exit.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()
	o.cancel()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info().Msg("orchestrator shut down")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// actorFor returns the draft's actor, loading and spawning it if needed.
func (o *Orchestrator) actorFor(ctx context.Context, draftID uuid.UUID) (*actor, error) {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return nil, ErrStopped
	}
	if a, ok := o.actors[draftID]; ok {
		o.mu.Unlock()
		return a, nil
	}
	o.mu.Unlock()

	a, err := o.load(ctx, draftID)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return nil, ErrStopped
	}
	if existing, ok := o.actors[draftID]; ok {
		return existing, nil
	}
	a.seq = o.lastSeq[draftID]
	o.actors[draftID] = a
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		a.run()
	}()
	return a, nil
}

// evict drops a from the actor table so the next intent reloads the draft.
func (o *Orchestrator) evict(a *actor) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.actors[a.draft.ID] == a {
		delete(o.actors, a.draft.ID)
		o.lastSeq[a.draft.ID] = a.seq
	}
	a.evicted.Store(true)
}

// call runs in on the draft's actor. An intent that raced an eviction was
// never handled, so it is retried on a fresh actor.
func (o *Orchestrator) call(ctx context.Context, draftID uuid.UUID, in intent) reply {
	for {
		a, err := o.actorFor(ctx, draftID)
		if err != nil {
			return reply{err: err}
		}
		r := a.do(ctx, in)
		if errors.Is(r.err, ErrStopped) && a.evicted.Load() {
			continue
		}
		return r
	}
}

// load rebuilds a draft's in-memory state from the store. The pick log is
// the only source for the current index.
func (o *Orchestrator) load(ctx context.Context, draftID uuid.UUID) (*actor, error) {
	d, err := o.store.GetDraft(ctx, draftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, draftID)
		}
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	picks, err := o.store.ListPicks(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].PickNumber < picks[j].PickNumber })

	d.CurrentPickIndex = len(picks)
	d.CurrentRound = roundFor(d, len(picks))
	drafted := make(map[uuid.UUID]struct{}, len(picks))
	for _, p := range picks {
		drafted[p.PlayerID] = struct{}{}
		if p.ID >= d.NextPickID {
			d.NextPickID = p.ID + 1
		}
	}
	if d.NextPickID < 1 {
		d.NextPickID = 1
	}

	players, err := o.players.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load player pool: %w", err)
	}
	pool := make(map[uuid.UUID]models.Player, len(players))
	poolIDs := make([]uuid.UUID, 0, len(players))
	for _, p := range players {
		pool[p.ID] = p
		poolIDs = append(poolIDs, p.ID)
	}
	sort.Slice(poolIDs, func(i, j int) bool { return bytes.Compare(poolIDs[i][:], poolIDs[j][:]) < 0 })

	logger := log.With().Str("draft_id", draftID.String()).Logger()
	a := &actor{
		o:        o,
		ctx:      o.ctx,
		log:      logger,
		leagueID: d.LeagueID,
		draft:    d,
		picks:    picks,
		drafted:  drafted,
		pool:     pool,
		poolIDs:  poolIDs,
		mailbox:  make(chan intent, o.cfg.MailboxSize),
		done:     make(chan struct{}),
	}
	a.timer = newTurnTimer(o.clock, a.onExpire)

	if o.ranking != nil {
		ranked, err := o.ranking.RankedPlayerIDs(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("ranking unavailable; auto-pick will skip it")
		}
		a.ranked = ranked
	}
	if o.rules != nil {
		rule, err := o.rules.RuleFor(ctx, d.LeagueID)
		if err != nil {
			return nil, fmt.Errorf("failed to load roster rules: %w", err)
		}
		a.rule = rule
	}
	return a, nil
}

// Start moves a pending draft to active and puts the first team on the clock.
func (o *Orchestrator) Start(ctx context.Context, draftID uuid.UUID) (events.FullState, error) {
	r := o.call(ctx, draftID, intent{kind: intentStart})
	return r.state, r.err
}

// SubmitPick records playerID for teamID if teamID is on the clock.
func (o *Orchestrator) SubmitPick(ctx context.Context, draftID, teamID, playerID uuid.UUID) (*models.DraftPick, error) {
	r := o.call(ctx, draftID, intent{kind: intentPick, teamID: teamID, playerID: playerID})
	return r.pick, r.err
}

// SubmitPickAs resolves the caller's team before submitting.
func (o *Orchestrator) SubmitPickAs(ctx context.Context, draftID, userID, playerID uuid.UUID) (*models.DraftPick, error) {
	team, err := o.TeamFor(ctx, draftID, userID)
	if err != nil {
		return nil, err
	}
	return o.SubmitPick(ctx, draftID, team, playerID)
}

// TeamFor returns the team userID owns in the draft's league.
func (o *Orchestrator) TeamFor(ctx context.Context, draftID, userID uuid.UUID) (uuid.UUID, error) {
	a, err := o.actorFor(ctx, draftID)
	if err != nil {
		return uuid.Nil, err
	}
	return o.gate.TeamFor(ctx, a.leagueID, userID)
}

// Execute runs a commissioner command after the Gate approves it.
func (o *Orchestrator) Execute(ctx context.Context, draftID, userID uuid.UUID, cmd Command) (events.FullState, error) {
	a, err := o.actorFor(ctx, draftID)
	if err != nil {
		return events.FullState{}, err
	}
	if err := o.gate.Authorize(ctx, a.leagueID, userID, cmd); err != nil {
		return events.FullState{}, err
	}
	r := o.call(ctx, draftID, intent{kind: intentCommand, cmd: cmd})
	if r.err == nil {
		log.Info().
			Str("draft_id", draftID.String()).
			Str("user_id", userID.String()).
			Str("command", string(cmd.Kind)).
			Msg("commissioner command applied")
	}
	return r.state, r.err
}

func (o *Orchestrator) Pause(ctx context.Context, draftID, commissionerID uuid.UUID) (events.FullState, error) {
	return o.Execute(ctx, draftID, commissionerID, PauseCommand())
}

func (o *Orchestrator) Resume(ctx context.Context, draftID, commissionerID uuid.UUID) (events.FullState, error) {
	return o.Execute(ctx, draftID, commissionerID, ResumeCommand())
}

func (o *Orchestrator) UpdateTimer(ctx context.Context, draftID, commissionerID uuid.UUID, seconds int) (events.FullState, error) {
	return o.Execute(ctx, draftID, commissionerID, UpdateTimerCommand(seconds))
}

func (o *Orchestrator) Revert(ctx context.Context, draftID, commissionerID uuid.UUID, keep int) (events.FullState, error) {
	return o.Execute(ctx, draftID, commissionerID, RevertCommand(keep))
}

// State returns the draft's current snapshot.
func (o *Orchestrator) State(ctx context.Context, draftID uuid.UUID) (events.FullState, error) {
	r := o.call(ctx, draftID, intent{kind: intentState})
	return r.state, r.err
}

// Subscribe runs attach on the draft's actor with a state_snapshot event.
// Every event emitted afterwards follows the snapshot in seq order.
func (o *Orchestrator) Subscribe(ctx context.Context, draftID uuid.UUID, attach AttachFunc) error {
	return o.call(ctx, draftID, intent{kind: intentSubscribe, attach: attach}).err
}

// LiveDrafts reports how many actors are running.
func (o *Orchestrator) LiveDrafts() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.actors)
}
