package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndEnvelope(t *testing.T) {
	draftID := uuid.New()
	at := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)

	ev, err := New(draftID, EventTypeTimerSynced, 7, at, TimerSyncedPayload{CurrentPickIndex: 3, SecondsRemaining: 12})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), ev.Seq)
	assert.JSONEq(t, `{"current_pick_index":3,"seconds_remaining":12}`, string(ev.Data))

	env := ev.Envelope()
	assert.Equal(t, ev.ID, env.ID)
	assert.Equal(t, "timer_synced", env.EventType)
	assert.Equal(t, at, env.CreatedAt)
}

func TestDurable(t *testing.T) {
	assert.True(t, EventTypePickMade.Durable())
	assert.True(t, EventTypeDraftReverted.Durable())
	assert.False(t, EventTypeTimerSynced.Durable())
	assert.False(t, EventTypeStateSnapshot.Durable())
}

func TestDraftEventWireShape(t *testing.T) {
	ev, err := New(uuid.New(), EventTypeDraftPaused, 1, time.Now(), FullState{Picks: []PickView{}})
	require.NoError(t, err)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "draft_paused", decoded["type"])
	assert.EqualValues(t, 1, decoded["seq"])
	assert.Contains(t, decoded["data"], "picks")
}
