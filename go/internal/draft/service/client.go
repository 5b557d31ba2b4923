package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
)

// Client is a typed DraftService client, for tools and tests.
type Client struct {
	startDraft    *connect.Client[StartDraftRequest, DraftStateResponse]
	submitPick    *connect.Client[SubmitPickRequest, SubmitPickResponse]
	pauseDraft    *connect.Client[PauseDraftRequest, DraftStateResponse]
	resumeDraft   *connect.Client[ResumeDraftRequest, DraftStateResponse]
	updateTimer   *connect.Client[UpdateTimerRequest, DraftStateResponse]
	revertDraft   *connect.Client[RevertDraftRequest, DraftStateResponse]
	getDraftState *connect.Client[GetDraftStateRequest, DraftStateResponse]
	setPickQueue  *connect.Client[SetPickQueueRequest, SetPickQueueResponse]
}

// NewClient builds a client for the server at baseURL, for example
// http://localhost:8080.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &Client{
		startDraft:    connect.NewClient[StartDraftRequest, DraftStateResponse](httpClient, baseURL+DraftServiceStartDraftProcedure, opts...),
		submitPick:    connect.NewClient[SubmitPickRequest, SubmitPickResponse](httpClient, baseURL+DraftServiceSubmitPickProcedure, opts...),
		pauseDraft:    connect.NewClient[PauseDraftRequest, DraftStateResponse](httpClient, baseURL+DraftServicePauseDraftProcedure, opts...),
		resumeDraft:   connect.NewClient[ResumeDraftRequest, DraftStateResponse](httpClient, baseURL+DraftServiceResumeDraftProcedure, opts...),
		updateTimer:   connect.NewClient[UpdateTimerRequest, DraftStateResponse](httpClient, baseURL+DraftServiceUpdateTimerProcedure, opts...),
		revertDraft:   connect.NewClient[RevertDraftRequest, DraftStateResponse](httpClient, baseURL+DraftServiceRevertDraftProcedure, opts...),
		getDraftState: connect.NewClient[GetDraftStateRequest, DraftStateResponse](httpClient, baseURL+DraftServiceGetDraftStateProcedure, opts...),
		setPickQueue:  connect.NewClient[SetPickQueueRequest, SetPickQueueResponse](httpClient, baseURL+DraftServiceSetPickQueueProcedure, opts...),
	}
}

func state(res *connect.Response[DraftStateResponse], err error) (events.FullState, error) {
	if err != nil {
		return events.FullState{}, err
	}
	return res.Msg.State, nil
}

func (c *Client) StartDraft(ctx context.Context, draftID uuid.UUID) (events.FullState, error) {
	return state(c.startDraft.CallUnary(ctx, connect.NewRequest(&StartDraftRequest{DraftID: draftID})))
}

func (c *Client) SubmitPick(ctx context.Context, draftID, playerID uuid.UUID) (events.PickView, error) {
	res, err := c.submitPick.CallUnary(ctx, connect.NewRequest(&SubmitPickRequest{DraftID: draftID, PlayerID: playerID}))
	if err != nil {
		return events.PickView{}, err
	}
	return res.Msg.Pick, nil
}

func (c *Client) PauseDraft(ctx context.Context, draftID uuid.UUID) (events.FullState, error) {
	return state(c.pauseDraft.CallUnary(ctx, connect.NewRequest(&PauseDraftRequest{DraftID: draftID})))
}

func (c *Client) ResumeDraft(ctx context.Context, draftID uuid.UUID) (events.FullState, error) {
	return state(c.resumeDraft.CallUnary(ctx, connect.NewRequest(&ResumeDraftRequest{DraftID: draftID})))
}

func (c *Client) UpdateTimer(ctx context.Context, draftID uuid.UUID, seconds int) (events.FullState, error) {
	return state(c.updateTimer.CallUnary(ctx, connect.NewRequest(&UpdateTimerRequest{DraftID: draftID, Seconds: seconds})))
}

func (c *Client) RevertDraft(ctx context.Context, draftID uuid.UUID, targetPick int) (events.FullState, error) {
	return state(c.revertDraft.CallUnary(ctx, connect.NewRequest(&RevertDraftRequest{DraftID: draftID, TargetPick: targetPick})))
}

func (c *Client) GetDraftState(ctx context.Context, draftID uuid.UUID) (events.FullState, error) {
	return state(c.getDraftState.CallUnary(ctx, connect.NewRequest(&GetDraftStateRequest{DraftID: draftID})))
}

func (c *Client) SetPickQueue(ctx context.Context, draftID uuid.UUID, players []uuid.UUID) (uuid.UUID, error) {
	res, err := c.setPickQueue.CallUnary(ctx, connect.NewRequest(&SetPickQueueRequest{DraftID: draftID, PlayerIDs: players}))
	if err != nil {
		return uuid.Nil, err
	}
	return res.Msg.TeamID, nil
}
