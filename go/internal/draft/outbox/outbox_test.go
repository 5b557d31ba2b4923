package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRows struct {
	mu   sync.Mutex
	rows []events.Envelope
	sent map[uuid.UUID]bool
}

func newMemRows(envs ...events.Envelope) *memRows {
	return &memRows{rows: envs, sent: map[uuid.UUID]bool{}}
}

func (m *memRows) FetchByID(_ context.Context, id uuid.UUID) (*events.Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id && !m.sent[id] {
			env := r
			return &env, nil
		}
	}
	return nil, ErrAlreadySent
}

func (m *memRows) FetchUnsent(_ context.Context, limit int) ([]events.Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.Envelope
	for _, r := range m.rows {
		if !m.sent[r.ID] && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRows) MarkSent(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[id] = true
	return nil
}

func (m *memRows) Ping(context.Context) error { return nil }

func (m *memRows) CountPending(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows) - len(m.sent), nil
}

type flakyPublisher struct {
	mu        sync.Mutex
	failFirst int
	calls     int
	published []events.Envelope
}

func (p *flakyPublisher) Publish(_ context.Context, env events.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failFirst {
		return errors.New("nats: timeout")
	}
	p.published = append(p.published, env)
	return nil
}

func envelope(typ events.EventType) events.Envelope {
	return events.Envelope{
		ID:        uuid.New(),
		DraftID:   uuid.New(),
		EventType: string(typ),
		Payload:   json.RawMessage(`{"status":"ACTIVE"}`),
		CreatedAt: time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC),
	}
}

func testListener(rows rowSource, pub Publisher) *Listener {
	cfg := DefaultListenerConfig()
	cfg.RetryDelay = time.Millisecond
	cfg.MaxRetries = 2
	return &Listener{rows: rows, publisher: pub, cfg: cfg}
}

func TestBuildMessage(t *testing.T) {
	env := envelope(events.EventTypePickMade)
	msg, err := buildMessage("draft.events", env)
	require.NoError(t, err)

	assert.Equal(t, "draft.events.pick_made", msg.Subject)
	assert.Equal(t, "pick_made", msg.Header.Get("Event-Type"))
	assert.Equal(t, env.DraftID.String(), msg.Header.Get("Draft-ID"))
	assert.Equal(t, env.ID.String(), msg.Header.Get("Event-ID"))

	var body wireEvent
	require.NoError(t, json.Unmarshal(msg.Data, &body))
	assert.Equal(t, env.ID.String(), body.EventID)
	assert.Equal(t, env.DraftID.String(), body.DraftID)
	assert.True(t, env.CreatedAt.Equal(body.Timestamp))
	assert.JSONEq(t, `{"status":"ACTIVE"}`, string(body.Payload))
}

func TestHandleNotificationRelaysOnce(t *testing.T) {
	env := envelope(events.EventTypeDraftStarted)
	rows := newMemRows(env)
	pub := &flakyPublisher{}
	l := testListener(rows, pub)
	ctx := context.Background()

	require.NoError(t, l.handleNotification(ctx, env.ID.String()))
	require.NoError(t, l.handleNotification(ctx, env.ID.String()))

	assert.Len(t, pub.published, 1)
	assert.True(t, rows.sent[env.ID])
	processed, last, _ := l.Stats()
	assert.Equal(t, uint64(1), processed)
	assert.False(t, last.IsZero())

	assert.Error(t, l.handleNotification(ctx, "not-a-uuid"))
}

func TestPublishRetriesThenMarksSent(t *testing.T) {
	env := envelope(events.EventTypePickMade)
	rows := newMemRows(env)
	pub := &flakyPublisher{failFirst: 2}
	l := testListener(rows, pub)

	require.NoError(t, l.handleNotification(context.Background(), env.ID.String()))
	assert.Equal(t, 3, pub.calls)
	assert.True(t, rows.sent[env.ID])
}

func TestPublishGivesUpAndLeavesRowUnsent(t *testing.T) {
	env := envelope(events.EventTypePickMade)
	rows := newMemRows(env)
	pub := &flakyPublisher{failFirst: 10}
	l := testListener(rows, pub)

	err := l.handleNotification(context.Background(), env.ID.String())
	require.Error(t, err)
	assert.Equal(t, 3, pub.calls)
	assert.False(t, rows.sent[env.ID])
}

func TestProcessUnsentSweepsBatch(t *testing.T) {
	a, b, c := envelope(events.EventTypeDraftStarted), envelope(events.EventTypePickMade), envelope(events.EventTypeDraftCompleted)
	rows := newMemRows(a, b, c)
	pub := &flakyPublisher{}
	l := testListener(rows, pub)
	l.cfg.BatchSize = 2

	require.NoError(t, l.processUnsent(context.Background()))
	require.Len(t, pub.published, 2)
	assert.Equal(t, a.ID, pub.published[0].ID)
	assert.Equal(t, b.ID, pub.published[1].ID)

	require.NoError(t, l.processUnsent(context.Background()))
	require.Len(t, pub.published, 3)
	assert.Equal(t, c.ID, pub.published[2].ID)
}

type fakeRelay struct {
	processed uint64
	last      time.Time
	running   bool
}

func (f fakeRelay) Stats() (uint64, time.Time, bool) { return f.processed, f.last, f.running }

type natsState bool

func (n natsState) Connected() bool { return bool(n) }

func TestHealthChecker(t *testing.T) {
	now := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	t.Run("healthy", func(t *testing.T) {
		h := NewHealthChecker(fakeRelay{processed: 4, last: now, running: true}, newMemRows(), natsState(true), time.Minute)
		h.now = func() time.Time { return now }
		st := h.Check(context.Background())
		assert.True(t, st.Healthy)
		assert.Empty(t, st.Errors)
		assert.Equal(t, uint64(4), st.EventsProcessed)
	})

	t.Run("stalled backlog", func(t *testing.T) {
		rows := newMemRows(envelope(events.EventTypePickMade))
		h := NewHealthChecker(fakeRelay{processed: 1, last: now, running: true}, rows, natsState(true), time.Minute)
		h.now = func() time.Time { return now.Add(2 * time.Minute) }
		st := h.Check(context.Background())
		assert.False(t, st.Healthy)
		assert.Equal(t, 1, st.PendingEvents)
	})

	t.Run("http status", func(t *testing.T) {
		h := NewHealthChecker(fakeRelay{running: false}, newMemRows(), natsState(false), time.Minute)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var st HealthStatus
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
		assert.False(t, st.ListenerActive)
		assert.False(t, st.NATSConnected)
		assert.Len(t, st.Errors, 2)
	})
}
