package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names an event on the draft feed.
type EventType string

const (
	EventTypeDraftStarted   EventType = "draft_started"
	EventTypePickMade       EventType = "pick_made"
	EventTypeDraftPaused    EventType = "draft_paused"
	EventTypeDraftResumed   EventType = "draft_resumed"
	EventTypeTimerSynced    EventType = "timer_synced"
	EventTypeTimerUpdated   EventType = "timer_updated"
	EventTypeDraftReverted  EventType = "draft_reverted"
	EventTypeDraftCompleted EventType = "draft_completed"
	EventTypeStateSnapshot  EventType = "state_snapshot"
)

// Durable reports whether the event is recorded in the outbox. Heartbeats
// and per-connection snapshots are not.
func (t EventType) Durable() bool {
	return t != EventTypeTimerSynced && t != EventTypeStateSnapshot
}

// DraftEvent is one message on a draft's live feed. Seq increases by one per
// emitted event; a snapshot carries the seq of the last event it includes.
type DraftEvent struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draft_id"`
	Type      EventType       `json:"type"`
	Seq       uint64          `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// New builds an event with data marshaled to JSON.
func New(draftID uuid.UUID, typ EventType, seq uint64, at time.Time, data any) (DraftEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return DraftEvent{}, err
	}
	return DraftEvent{
		ID:        uuid.New(),
		DraftID:   draftID,
		Type:      typ,
		Seq:       seq,
		Timestamp: at,
		Data:      raw,
	}, nil
}

// Envelope is a row of the draft outbox, written in the same transaction as
// the state change it describes.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draft_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// Envelope converts a feed event into its outbox row.
func (e DraftEvent) Envelope() Envelope {
	return Envelope{
		ID:        e.ID,
		DraftID:   e.DraftID,
		EventType: string(e.Type),
		Payload:   e.Data,
		CreatedAt: e.Timestamp,
	}
}
