package service

import (
	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
)

type StartDraftRequest struct {
	DraftID uuid.UUID `json:"draft_id"`
}

type SubmitPickRequest struct {
	DraftID  uuid.UUID `json:"draft_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

type SubmitPickResponse struct {
	Pick events.PickView `json:"pick"`
}

type PauseDraftRequest struct {
	DraftID uuid.UUID `json:"draft_id"`
}

type ResumeDraftRequest struct {
	DraftID uuid.UUID `json:"draft_id"`
}

type UpdateTimerRequest struct {
	DraftID uuid.UUID `json:"draft_id"`
	Seconds int       `json:"seconds"`
}

// RevertDraftRequest truncates the pick log so that TargetPick picks remain.
type RevertDraftRequest struct {
	DraftID    uuid.UUID `json:"draft_id"`
	TargetPick int       `json:"target_pick"`
}

type GetDraftStateRequest struct {
	DraftID uuid.UUID `json:"draft_id"`
}

// SetPickQueueRequest replaces the caller's queued picks. An empty list
// clears the queue.
type SetPickQueueRequest struct {
	DraftID   uuid.UUID   `json:"draft_id"`
	PlayerIDs []uuid.UUID `json:"player_ids"`
}

type SetPickQueueResponse struct {
	TeamID    uuid.UUID   `json:"team_id"`
	PlayerIDs []uuid.UUID `json:"player_ids"`
}

// DraftStateResponse is returned by every command that changes or reads the
// draft header.
type DraftStateResponse struct {
	State events.FullState `json:"state"`
}
