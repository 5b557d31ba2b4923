package service

import (
	"context"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/auth"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/models"
)

// Engine defines what the service layer needs from the orchestrator
type Engine interface {
	State(ctx context.Context, draftID uuid.UUID) (events.FullState, error)
	SubmitPickAs(ctx context.Context, draftID, userID, playerID uuid.UUID) (*models.DraftPick, error)
	TeamFor(ctx context.Context, draftID, userID uuid.UUID) (uuid.UUID, error)
	Execute(ctx context.Context, draftID, userID uuid.UUID, cmd orchestrator.Command) (events.FullState, error)
}

// QueueWriter stores a team's queued picks for auto-pick.
type QueueWriter interface {
	Set(draftID, teamID uuid.UUID, players []uuid.UUID)
}

// Service implements the DraftService RPCs
type Service struct {
	engine Engine
	queues QueueWriter
}

// NewService creates a new draft RPC service
func NewService(engine Engine, queues QueueWriter) *Service {
	return &Service{engine: engine, queues: queues}
}

var _ DraftServiceHandler = (*Service)(nil)

// caller returns the identity the auth interceptor placed on the context.
func caller(ctx context.Context) (uuid.UUID, error) {
	userID, ok := auth.UserFromContext(ctx)
	if !ok {
		return uuid.Nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrUnauthenticated)
	}
	return userID, nil
}

func (s *Service) command(ctx context.Context, draftID uuid.UUID, cmd orchestrator.Command) (*connect.Response[DraftStateResponse], error) {
	if draftID == uuid.Nil {
		return nil, toConnectError(errMissingDraftID)
	}
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.engine.Execute(ctx, draftID, userID, cmd)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DraftStateResponse{State: st}), nil
}

// StartDraft moves a pending draft to active. Commissioner only.
func (s *Service) StartDraft(ctx context.Context, req *connect.Request[StartDraftRequest]) (*connect.Response[DraftStateResponse], error) {
	return s.command(ctx, req.Msg.DraftID, orchestrator.StartCommand())
}

func (s *Service) PauseDraft(ctx context.Context, req *connect.Request[PauseDraftRequest]) (*connect.Response[DraftStateResponse], error) {
	return s.command(ctx, req.Msg.DraftID, orchestrator.PauseCommand())
}

func (s *Service) ResumeDraft(ctx context.Context, req *connect.Request[ResumeDraftRequest]) (*connect.Response[DraftStateResponse], error) {
	return s.command(ctx, req.Msg.DraftID, orchestrator.ResumeCommand())
}

func (s *Service) UpdateTimer(ctx context.Context, req *connect.Request[UpdateTimerRequest]) (*connect.Response[DraftStateResponse], error) {
	return s.command(ctx, req.Msg.DraftID, orchestrator.UpdateTimerCommand(req.Msg.Seconds))
}

func (s *Service) RevertDraft(ctx context.Context, req *connect.Request[RevertDraftRequest]) (*connect.Response[DraftStateResponse], error) {
	return s.command(ctx, req.Msg.DraftID, orchestrator.RevertCommand(req.Msg.TargetPick))
}

// SubmitPick records a pick for the caller's team.
func (s *Service) SubmitPick(ctx context.Context, req *connect.Request[SubmitPickRequest]) (*connect.Response[SubmitPickResponse], error) {
	if req.Msg.DraftID == uuid.Nil {
		return nil, toConnectError(errMissingDraftID)
	}
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.engine.SubmitPickAs(ctx, req.Msg.DraftID, userID, req.Msg.PlayerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&SubmitPickResponse{Pick: events.NewPickView(*p)}), nil
}

func (s *Service) GetDraftState(ctx context.Context, req *connect.Request[GetDraftStateRequest]) (*connect.Response[DraftStateResponse], error) {
	if req.Msg.DraftID == uuid.Nil {
		return nil, toConnectError(errMissingDraftID)
	}
	if _, err := caller(ctx); err != nil {
		return nil, err
	}
	st, err := s.engine.State(ctx, req.Msg.DraftID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&DraftStateResponse{State: st}), nil
}

// SetPickQueue replaces the caller's queued picks. The queue is consulted
// only when the caller's timer expires.
func (s *Service) SetPickQueue(ctx context.Context, req *connect.Request[SetPickQueueRequest]) (*connect.Response[SetPickQueueResponse], error) {
	if req.Msg.DraftID == uuid.Nil {
		return nil, toConnectError(errMissingDraftID)
	}
	userID, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	teamID, err := s.engine.TeamFor(ctx, req.Msg.DraftID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	s.queues.Set(req.Msg.DraftID, teamID, req.Msg.PlayerIDs)
	return connect.NewResponse(&SetPickQueueResponse{TeamID: teamID, PlayerIDs: req.Msg.PlayerIDs}), nil
}
