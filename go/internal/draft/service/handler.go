package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// DraftServiceName is the fully-qualified name of the DraftService service.
const DraftServiceName = "draft.v1.DraftService"

// Procedure paths. They keep the layout protoc-gen-connect-go would produce
// so existing Connect clients can call the service by name.
const (
	DraftServiceStartDraftProcedure    = "/draft.v1.DraftService/StartDraft"
	DraftServiceSubmitPickProcedure    = "/draft.v1.DraftService/SubmitPick"
	DraftServicePauseDraftProcedure    = "/draft.v1.DraftService/PauseDraft"
	DraftServiceResumeDraftProcedure   = "/draft.v1.DraftService/ResumeDraft"
	DraftServiceUpdateTimerProcedure   = "/draft.v1.DraftService/UpdateTimer"
	DraftServiceRevertDraftProcedure   = "/draft.v1.DraftService/RevertDraft"
	DraftServiceGetDraftStateProcedure = "/draft.v1.DraftService/GetDraftState"
	DraftServiceSetPickQueueProcedure  = "/draft.v1.DraftService/SetPickQueue"
)

// DraftServiceHandler is implemented by Service.
type DraftServiceHandler interface {
	StartDraft(context.Context, *connect.Request[StartDraftRequest]) (*connect.Response[DraftStateResponse], error)
	SubmitPick(context.Context, *connect.Request[SubmitPickRequest]) (*connect.Response[SubmitPickResponse], error)
	PauseDraft(context.Context, *connect.Request[PauseDraftRequest]) (*connect.Response[DraftStateResponse], error)
	ResumeDraft(context.Context, *connect.Request[ResumeDraftRequest]) (*connect.Response[DraftStateResponse], error)
	UpdateTimer(context.Context, *connect.Request[UpdateTimerRequest]) (*connect.Response[DraftStateResponse], error)
	RevertDraft(context.Context, *connect.Request[RevertDraftRequest]) (*connect.Response[DraftStateResponse], error)
	GetDraftState(context.Context, *connect.Request[GetDraftStateRequest]) (*connect.Response[DraftStateResponse], error)
	SetPickQueue(context.Context, *connect.Request[SetPickQueueRequest]) (*connect.Response[SetPickQueueResponse], error)
}

// NewDraftServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewDraftServiceHandler(svc DraftServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	routes := map[string]http.Handler{
		DraftServiceStartDraftProcedure:    connect.NewUnaryHandler(DraftServiceStartDraftProcedure, svc.StartDraft, opts...),
		DraftServiceSubmitPickProcedure:    connect.NewUnaryHandler(DraftServiceSubmitPickProcedure, svc.SubmitPick, opts...),
		DraftServicePauseDraftProcedure:    connect.NewUnaryHandler(DraftServicePauseDraftProcedure, svc.PauseDraft, opts...),
		DraftServiceResumeDraftProcedure:   connect.NewUnaryHandler(DraftServiceResumeDraftProcedure, svc.ResumeDraft, opts...),
		DraftServiceUpdateTimerProcedure:   connect.NewUnaryHandler(DraftServiceUpdateTimerProcedure, svc.UpdateTimer, opts...),
		DraftServiceRevertDraftProcedure:   connect.NewUnaryHandler(DraftServiceRevertDraftProcedure, svc.RevertDraft, opts...),
		DraftServiceGetDraftStateProcedure: connect.NewUnaryHandler(DraftServiceGetDraftStateProcedure, svc.GetDraftState, opts...),
		DraftServiceSetPickQueueProcedure:  connect.NewUnaryHandler(DraftServiceSetPickQueueProcedure, svc.SetPickQueue, opts...),
	}

	return "/" + DraftServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
