package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/pick"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog"
)

type intentKind int

const (
	intentStart intentKind = iota
	intentPick
	intentExpire
	intentCommand
	intentState
	intentSubscribe
)

// intent is one entry in a draft's mailbox.
type intent struct {
	ctx       context.Context
	kind      intentKind
	teamID    uuid.UUID
	playerID  uuid.UUID
	cmd       Command
	gen       uint64
	pickIndex int
	attach    AttachFunc
	reply     chan reply
}

type reply struct {
	pick  *models.DraftPick
	state events.FullState
	err   error
}

// actor owns one draft. Every read and write of its fields happens on the
// goroutine running run.
type actor struct {
	o   *Orchestrator
	ctx context.Context
	log zerolog.Logger

	// leagueID is fixed at load and may be read from any goroutine.
	leagueID uuid.UUID
	draft    *models.Draft
	picks    []models.DraftPick
	drafted  map[uuid.UUID]struct{}

	pool    map[uuid.UUID]models.Player
	poolIDs []uuid.UUID
	ranked  []uuid.UUID
	rule    pick.RosterRule

	timer *turnTimer
	seq   uint64

	lastActive time.Time
	evicted    atomic.Bool

	mailbox chan intent
	done    chan struct{}
}

func (a *actor) run() {
	defer close(a.done)
	heartbeat := a.o.clock.NewTicker(a.o.cfg.HeartbeatInterval)
	defer heartbeat.Stop()
	defer a.timer.Cancel()

	a.recover()
	a.lastActive = a.o.clock.Now()

	for {
		select {
		case <-a.ctx.Done():
			a.log.Debug().Msg("draft actor stopped")
			return
		case in := <-a.mailbox:
			a.handle(in)
			a.lastActive = a.o.clock.Now()
		case <-heartbeat.Chan():
			if a.idle() {
				a.o.evict(a)
				a.log.Debug().Msg("evicted idle completed draft")
				return
			}
			a.heartbeat()
		}
	}
}

// idle reports whether a completed draft has gone IdleEviction without
// traffic.
func (a *actor) idle() bool {
	return a.draft.Status == models.DraftStatusCompleted &&
		a.o.clock.Since(a.lastActive) >= a.o.cfg.IdleEviction
}

// do posts an intent and waits for its reply. Once the intent is queued the
// reply is the only outcome, so a caller whose ctx expires mid-commit still
// learns whether the commit happened.
func (a *actor) do(ctx context.Context, in intent) reply {
	in.ctx = ctx
	in.reply = make(chan reply, 1)
	select {
	case a.mailbox <- in:
	case <-ctx.Done():
		return reply{err: ctx.Err()}
	case <-a.done:
		return reply{err: ErrStopped}
	}
	select {
	case r := <-in.reply:
		return r
	case <-a.done:
		// A reply sent just before exit still wins.
		select {
		case r := <-in.reply:
			return r
		default:
			return reply{err: ErrStopped}
		}
	}
}

func (a *actor) handle(in intent) {
	var r reply
	if in.kind != intentExpire && in.ctx.Err() != nil {
		// The caller gave up while the intent was queued.
		r.err = in.ctx.Err()
		in.reply <- r
		return
	}
	switch in.kind {
	case intentStart:
		r.err = a.start(in.ctx)
	case intentPick:
		r.pick, r.err = a.submit(in.ctx, in.teamID, in.playerID, false)
	case intentExpire:
		a.expire(in.gen, in.pickIndex)
		return
	case intentCommand:
		r.err = a.command(in.ctx, in.cmd)
	case intentState:
	case intentSubscribe:
		r.err = a.subscribe(in.attach)
	}
	if r.err == nil {
		r.state = a.state()
	}
	if in.reply != nil {
		in.reply <- r
	}
}

// onExpire runs on the clock goroutine.
func (a *actor) onExpire(gen uint64, pickIndex int) {
	select {
	case a.mailbox <- intent{ctx: a.ctx, kind: intentExpire, gen: gen, pickIndex: pickIndex}:
	case <-a.done:
	}
}

func (a *actor) state() events.FullState {
	return buildState(a.draft, a.picks, a.o.clock.Now())
}

func (a *actor) board() pick.Board {
	return pick.Board{
		Status:  a.draft.Status,
		OnClock: pick.TeamOnClock(a.draft.TeamOrder, a.draft.CurrentPickIndex),
		Drafted: a.drafted,
	}
}

func (a *actor) rosterOf(team uuid.UUID) []models.Player {
	var roster []models.Player
	for _, p := range a.picks {
		if p.TeamID == team {
			roster = append(roster, a.pool[p.PlayerID])
		}
	}
	return roster
}

// check validates a pick for team against current state.
func (a *actor) check(team, playerID uuid.UUID) error {
	var candidate *models.Player
	if p, ok := a.pool[playerID]; ok {
		candidate = &p
	}
	return pick.Validate(a.board(), team, a.rosterOf(team), candidate, a.rule)
}

// recover re-arms a draft that was live when the process stopped. The turn
// restarts with its full duration; a paused draft keeps its frozen remainder.
func (a *actor) recover() {
	if a.draft.Status != models.DraftStatusActive {
		return
	}
	now := a.o.clock.Now()
	next := a.draft.Clone()
	if next.CurrentPickIndex >= next.TotalPicks() {
		next.Status = models.DraftStatusCompleted
		next.Deadline = nil
		next.CompletedAt = &now
	} else {
		dl := now.Add(a.pickDuration(next))
		next.Deadline = &dl
	}
	next.UpdatedAt = now
	if err := a.o.store.Apply(a.ctx, Mutation{Draft: next}); err != nil {
		a.log.Error().Err(err).Msg("failed to persist recovered deadline")
	}
	a.draft = next
	if next.Status == models.DraftStatusActive {
		a.timer.Arm(a.pickDuration(next), next.CurrentPickIndex)
		a.log.Info().Int("pick_index", next.CurrentPickIndex).Time("deadline", *next.Deadline).Msg("recovered active draft")
	}
}

func (a *actor) pickDuration(d *models.Draft) time.Duration {
	return time.Duration(d.PickSeconds) * time.Second
}

// persist writes m with the outbox rows for evs. Seqs are assigned here and
// only consumed once the store commits.
func (a *actor) persist(ctx context.Context, m Mutation, evs []events.DraftEvent) error {
	for i := range evs {
		evs[i].Seq = a.seq + uint64(i) + 1
		if evs[i].Type.Durable() {
			m.Events = append(m.Events, evs[i].Envelope())
		}
	}
	if err := a.o.store.Apply(ctx, m); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	a.seq += uint64(len(evs))
	return nil
}

func (a *actor) emit(evs []events.DraftEvent) {
	for _, ev := range evs {
		a.o.hub.Publish(a.draft.ID, ev)
		a.log.Debug().Str("event_type", string(ev.Type)).Uint64("seq", ev.Seq).Msg("event emitted")
	}
}

func (a *actor) newEvent(typ events.EventType, at time.Time, data any) (events.DraftEvent, error) {
	ev, err := events.New(a.draft.ID, typ, 0, at, data)
	if err != nil {
		return events.DraftEvent{}, fmt.Errorf("failed to marshal %s payload: %w", typ, err)
	}
	return ev, nil
}

func (a *actor) start(ctx context.Context) error {
	if err := checkStatus(CommandStart, a.draft.Status); err != nil {
		return err
	}
	if a.draft.TotalPicks() == 0 {
		return fmt.Errorf("draft has no pick slots")
	}
	now := a.o.clock.Now()
	next := a.draft.Clone()
	next.Status = models.DraftStatusActive
	next.CurrentPickIndex = len(a.picks)
	next.CurrentRound = roundFor(next, next.CurrentPickIndex)
	dl := now.Add(a.pickDuration(next))
	next.Deadline = &dl
	next.PausedRemaining = nil
	next.StartedAt = &now
	next.UpdatedAt = now

	ev, err := a.newEvent(events.EventTypeDraftStarted, now, buildState(next, a.picks, now))
	if err != nil {
		return err
	}
	evs := []events.DraftEvent{ev}
	if err := a.persist(ctx, Mutation{Draft: next}, evs); err != nil {
		return err
	}
	a.draft = next
	a.timer.Arm(a.pickDuration(next), next.CurrentPickIndex)
	a.emit(evs)
	a.log.Info().Int("rounds_total", next.RoundsTotal).Int("teams", len(next.TeamOrder)).Msg("draft started")
	return nil
}

// submit is the single path for manual and automatic picks.
func (a *actor) submit(ctx context.Context, team, playerID uuid.UUID, auto bool) (*models.DraftPick, error) {
	if err := checkStatus(commandPick, a.draft.Status); err != nil {
		return nil, err
	}
	if err := a.check(team, playerID); err != nil {
		return nil, err
	}

	now := a.o.clock.Now()
	slot := pick.SlotAt(a.draft.TeamOrder, a.draft.CurrentPickIndex)
	p := models.DraftPick{
		ID:         a.draft.NextPickID,
		DraftID:    a.draft.ID,
		Round:      slot.Round,
		PickNumber: slot.PickNumber,
		TeamID:     team,
		PlayerID:   playerID,
		PickedAt:   now,
		IsAuto:     auto,
	}

	next := a.draft.Clone()
	next.NextPickID++
	next.CurrentPickIndex++
	next.CurrentRound = roundFor(next, next.CurrentPickIndex)
	next.UpdatedAt = now
	completed := next.CurrentPickIndex >= next.TotalPicks()
	if completed {
		next.Status = models.DraftStatusCompleted
		next.Deadline = nil
		next.CompletedAt = &now
	} else {
		dl := now.Add(a.pickDuration(next))
		next.Deadline = &dl
	}

	picks := append(append(make([]models.DraftPick, 0, len(a.picks)+1), a.picks...), p)
	st := buildState(next, picks, now)
	made, err := a.newEvent(events.EventTypePickMade, now, events.PickMadePayload{Pick: events.NewPickView(p), State: st})
	if err != nil {
		return nil, err
	}
	evs := []events.DraftEvent{made}
	if completed {
		done, err := a.newEvent(events.EventTypeDraftCompleted, now, st)
		if err != nil {
			return nil, err
		}
		evs = append(evs, done)
	}

	if err := a.persist(ctx, Mutation{Draft: next, Append: &p}, evs); err != nil {
		return nil, err
	}

	a.draft = next
	a.picks = picks
	a.drafted[playerID] = struct{}{}
	if completed {
		a.timer.Cancel()
	} else {
		a.timer.Arm(a.pickDuration(next), next.CurrentPickIndex)
	}
	a.emit(evs)

	a.log.Info().
		Str("team_id", team.String()).
		Str("player_id", playerID.String()).
		Int("pick_number", p.PickNumber).
		Bool("is_auto", auto).
		Msg("pick recorded")
	if completed {
		a.log.Info().Int("total_picks", len(picks)).Msg("draft completed")
	}
	return &p, nil
}

// expire handles a timer firing. Stale firings are dropped.
func (a *actor) expire(gen uint64, pickIndex int) {
	if a.draft.Status != models.DraftStatusActive || !a.timer.Current(gen) || pickIndex != a.draft.CurrentPickIndex {
		a.log.Debug().Uint64("gen", gen).Int("pick_index", pickIndex).Msg("ignoring stale timer expiry")
		return
	}
	team := pick.TeamOnClock(a.draft.TeamOrder, pickIndex)
	playerID, source, ok := a.chooseAutoPick(team)
	if !ok {
		a.log.Error().Str("team_id", team.String()).Int("pick_index", pickIndex).Msg("no legal auto-pick candidate; retrying")
		a.timer.Arm(a.o.cfg.AutoPickRetry, pickIndex)
		return
	}
	if _, err := a.submit(a.ctx, team, playerID, true); err != nil {
		a.log.Error().Err(err).Str("team_id", team.String()).Int("pick_index", pickIndex).Msg("auto-pick failed; retrying")
		a.timer.Arm(a.o.cfg.AutoPickRetry, pickIndex)
		return
	}
	a.log.Info().Str("team_id", team.String()).Str("source", string(source)).Msg("auto-pick made")
}

func (a *actor) command(ctx context.Context, cmd Command) error {
	if err := checkStatus(cmd.Kind, a.draft.Status); err != nil {
		return err
	}
	switch cmd.Kind {
	case CommandStart:
		return a.start(ctx)
	case CommandPause:
		return a.pause(ctx)
	case CommandResume:
		return a.resume(ctx)
	case CommandUpdateTimer:
		return a.updateTimer(ctx, cmd.Seconds)
	case CommandRevert:
		return a.revert(ctx, cmd.TargetPick)
	case CommandResultsConsumed:
		return a.markConsumed(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd.Kind)
	}
}

func (a *actor) pause(ctx context.Context) error {
	now := a.o.clock.Now()
	var remaining time.Duration
	if a.draft.Deadline != nil {
		remaining = a.draft.Deadline.Sub(now)
	}
	if remaining < 0 {
		remaining = 0
	}
	next := a.draft.Clone()
	next.Status = models.DraftStatusPaused
	next.Deadline = nil
	next.PausedRemaining = &remaining
	next.UpdatedAt = now

	ev, err := a.newEvent(events.EventTypeDraftPaused, now, buildState(next, a.picks, now))
	if err != nil {
		return err
	}
	evs := []events.DraftEvent{ev}
	if err := a.persist(ctx, Mutation{Draft: next}, evs); err != nil {
		return err
	}
	a.draft = next
	a.timer.Cancel()
	a.emit(evs)
	a.log.Info().Dur("remaining", remaining).Msg("draft paused")
	return nil
}

func (a *actor) resume(ctx context.Context) error {
	now := a.o.clock.Now()
	remaining := a.pickDuration(a.draft)
	if a.draft.PausedRemaining != nil {
		remaining = *a.draft.PausedRemaining
	}
	next := a.draft.Clone()
	next.Status = models.DraftStatusActive
	dl := now.Add(remaining)
	next.Deadline = &dl
	next.PausedRemaining = nil
	next.UpdatedAt = now

	ev, err := a.newEvent(events.EventTypeDraftResumed, now, buildState(next, a.picks, now))
	if err != nil {
		return err
	}
	evs := []events.DraftEvent{ev}
	if err := a.persist(ctx, Mutation{Draft: next}, evs); err != nil {
		return err
	}
	a.draft = next
	a.timer.Arm(remaining, next.CurrentPickIndex)
	a.emit(evs)
	a.log.Info().Dur("remaining", remaining).Msg("draft resumed")
	return nil
}

// updateTimer changes the duration of later turns. The live deadline stays.
func (a *actor) updateTimer(ctx context.Context, seconds int) error {
	now := a.o.clock.Now()
	next := a.draft.Clone()
	next.PickSeconds = seconds
	next.UpdatedAt = now

	ev, err := a.newEvent(events.EventTypeTimerUpdated, now, buildState(next, a.picks, now))
	if err != nil {
		return err
	}
	evs := []events.DraftEvent{ev}
	if err := a.persist(ctx, Mutation{Draft: next}, evs); err != nil {
		return err
	}
	a.draft = next
	a.emit(evs)
	a.log.Info().Int("pick_seconds", seconds).Msg("pick timer updated")
	return nil
}

// revert truncates the log to keep picks and puts the restored team on the
// clock. Keeping every pick restarts the current turn.
func (a *actor) revert(ctx context.Context, keep int) error {
	if keep < 0 || keep > len(a.picks) || keep >= a.draft.TotalPicks() {
		return fmt.Errorf("%w: keep %d of %d picks", ErrInvalidRevertTarget, keep, len(a.picks))
	}
	if a.draft.Status == models.DraftStatusCompleted && (!a.o.cfg.AllowRevertAfterComplete || a.draft.ResultsConsumed) {
		return ErrDraftAlreadyCompleted
	}

	now := a.o.clock.Now()
	next := a.draft.Clone()
	next.CurrentPickIndex = keep
	next.CurrentRound = roundFor(next, keep)
	next.UpdatedAt = now
	full := a.pickDuration(next)
	if next.Status == models.DraftStatusPaused {
		next.PausedRemaining = &full
	} else {
		next.Status = models.DraftStatusActive
		next.CompletedAt = nil
		dl := now.Add(full)
		next.Deadline = &dl
	}

	picks := append([]models.DraftPick(nil), a.picks[:keep]...)
	ev, err := a.newEvent(events.EventTypeDraftReverted, now, buildState(next, picks, now))
	if err != nil {
		return err
	}
	evs := []events.DraftEvent{ev}
	m := Mutation{Draft: next}
	if keep < len(a.picks) {
		m.TruncateTo = &keep
	}
	if err := a.persist(ctx, m, evs); err != nil {
		return err
	}

	a.draft = next
	a.picks = picks
	a.drafted = make(map[uuid.UUID]struct{}, len(picks))
	for _, p := range picks {
		a.drafted[p.PlayerID] = struct{}{}
	}
	if next.Status == models.DraftStatusActive {
		a.timer.Arm(full, keep)
	} else {
		a.timer.Cancel()
	}
	a.emit(evs)
	a.log.Warn().Int("keep", keep).Msg("draft reverted")
	return nil
}

func (a *actor) markConsumed(ctx context.Context) error {
	next := a.draft.Clone()
	next.ResultsConsumed = true
	next.UpdatedAt = a.o.clock.Now()
	if err := a.persist(ctx, Mutation{Draft: next}, nil); err != nil {
		return err
	}
	a.draft = next
	return nil
}

// subscribe hands the snapshot to attach on the actor goroutine, so no event
// can slip between the snapshot and registration.
func (a *actor) subscribe(attach AttachFunc) error {
	snap, err := events.New(a.draft.ID, events.EventTypeStateSnapshot, a.seq, a.o.clock.Now(), a.state())
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}
	attach(snap)
	return nil
}

func (a *actor) heartbeat() {
	if a.draft.Status != models.DraftStatusActive {
		return
	}
	st := a.state()
	ev, err := a.newEvent(events.EventTypeTimerSynced, a.o.clock.Now(), events.TimerSyncedPayload{
		CurrentPickIndex: st.CurrentPickIndex,
		SecondsRemaining: st.SecondsRemaining,
	})
	if err != nil {
		a.log.Error().Err(err).Msg("failed to build heartbeat")
		return
	}
	a.seq++
	ev.Seq = a.seq
	a.emit([]events.DraftEvent{ev})
}
