package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
)

// Client message types.
const (
	MsgSubmitPick  = "submit_pick"
	MsgSetQueue    = "set_queue"
	MsgStartDraft  = "start_draft"
	MsgPause       = "pause"
	MsgResume      = "resume"
	MsgUpdateTimer = "update_timer"
	MsgRevert      = "revert"

	MsgCommandResult = "command_result"
)

// ClientMessage is a command frame sent by a client.
type ClientMessage struct {
	Type       string      `json:"type"`
	RequestID  string      `json:"request_id,omitempty"`
	PlayerID   uuid.UUID   `json:"player_id"`
	PlayerIDs  []uuid.UUID `json:"player_ids,omitempty"`
	Seconds    int         `json:"seconds,omitempty"`
	TargetPick int         `json:"target_pick,omitempty"` // picks a revert keeps
}

// CommandResult answers one ClientMessage on the same connection. Successful
// commands are also visible through the event they caused.
type CommandResult struct {
	Type      string     `json:"type"`
	RequestID string     `json:"request_id,omitempty"`
	OK        bool       `json:"ok"`
	Error     *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errUnknownMessage = errors.New("unknown message type")

func resultFor(requestID string, err error) CommandResult {
	res := CommandResult{Type: MsgCommandResult, RequestID: requestID, OK: err == nil}
	if err != nil {
		code := orchestrator.Code(err)
		if errors.Is(err, errUnknownMessage) {
			code = "bad_request"
		}
		res.Error = &ErrorBody{Code: code, Message: err.Error()}
	}
	return res
}

// dispatch runs one client command for the connection's user.
func (h *Handler) dispatch(ctx context.Context, c *Connection, msg ClientMessage) error {
	switch msg.Type {
	case MsgSubmitPick:
		_, err := h.engine.SubmitPickAs(ctx, c.DraftID, c.UserID, msg.PlayerID)
		return err
	case MsgSetQueue:
		team, err := h.engine.TeamFor(ctx, c.DraftID, c.UserID)
		if err != nil {
			return err
		}
		h.queues.Set(c.DraftID, team, msg.PlayerIDs)
		return nil
	case MsgStartDraft:
		return h.execute(ctx, c, orchestrator.StartCommand())
	case MsgPause:
		return h.execute(ctx, c, orchestrator.PauseCommand())
	case MsgResume:
		return h.execute(ctx, c, orchestrator.ResumeCommand())
	case MsgUpdateTimer:
		return h.execute(ctx, c, orchestrator.UpdateTimerCommand(msg.Seconds))
	case MsgRevert:
		return h.execute(ctx, c, orchestrator.RevertCommand(msg.TargetPick))
	default:
		return fmt.Errorf("%w: %q", errUnknownMessage, msg.Type)
	}
}

func (h *Handler) execute(ctx context.Context, c *Connection, cmd orchestrator.Command) error {
	_, err := h.engine.Execute(ctx, c.DraftID, c.UserID, cmd)
	return err
}

// decodeMessage parses a client frame.
func decodeMessage(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, fmt.Errorf("%w: %v", errUnknownMessage, err)
	}
	return msg, nil
}
