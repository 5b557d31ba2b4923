package service

import (
	"errors"

	"connectrpc.com/connect"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
)

var errMissingDraftID = errors.New("draft_id is required")

// toConnectError maps engine errors onto connect codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var code connect.Code
	switch {
	case errors.Is(err, orchestrator.ErrUnauthenticated):
		code = connect.CodeUnauthenticated
	case errors.Is(err, orchestrator.ErrUnauthorized):
		code = connect.CodePermissionDenied
	case errors.Is(err, orchestrator.ErrPlayerAlreadyDrafted),
		errors.Is(err, orchestrator.ErrDraftAlreadyStarted):
		code = connect.CodeAlreadyExists
	case errors.Is(err, orchestrator.ErrNotYourTurn),
		errors.Is(err, &orchestrator.RosterRuleViolation{}),
		errors.Is(err, orchestrator.ErrDraftNotActive),
		errors.Is(err, orchestrator.ErrDraftNotPaused),
		errors.Is(err, orchestrator.ErrDraftAlreadyCompleted):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, orchestrator.ErrInvalidTimerValue),
		errors.Is(err, orchestrator.ErrInvalidRevertTarget),
		errors.Is(err, errMissingDraftID):
		code = connect.CodeInvalidArgument
	case errors.Is(err, orchestrator.ErrDraftNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, orchestrator.ErrPersistence),
		errors.Is(err, orchestrator.ErrStopped):
		code = connect.CodeUnavailable
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, err)
}
