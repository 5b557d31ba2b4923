package service

import (
	"context"

	"connectrpc.com/connect"
	"github.com/mcdev12/draftroom/go/internal/auth"
	"github.com/rs/zerolog/log"
)

// NewAuthInterceptor verifies the bearer token on every inbound call and
// stores the caller's user id on the context.
func NewAuthInterceptor(verifier *auth.Verifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				return next(ctx, req)
			}
			token, ok := auth.BearerToken(req.Header().Get("Authorization"))
			if !ok {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrUnauthenticated)
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				log.Debug().Err(err).Str("procedure", req.Spec().Procedure).Msg("rejected token")
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(auth.WithUser(ctx, userID), req)
		}
	}
}

// WithBearerToken attaches token to every outbound call.
func WithBearerToken(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}
