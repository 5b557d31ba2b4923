package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/mcdev12/draftroom/go/internal/draft/service"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(port string, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	// Register services
	registerServices(mux, services)

	// Add health check endpoint
	setupHealthCheck(mux, services)

	// Wrap with CORS
	handler := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	// Register draft RPC service
	draftServicePath, draftServiceHandler := service.NewDraftServiceHandler(
		services.Draft,
		connect.WithInterceptors(service.NewAuthInterceptor(services.Verifier)),
	)
	mux.Handle(draftServicePath, draftServiceHandler)

	// Register live feed and snapshot endpoints
	services.Gateway.RegisterRoutes(mux)
	services.State.RegisterStateRoutes(mux)
}

func setupHealthCheck(mux *http.ServeMux, services *Services) {
	if services.Health != nil {
		mux.Handle("/health/outbox", services.Health)
	}
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body := map[string]any{
			"status":      "ok",
			"live_drafts": services.Orchestrator.LiveDrafts(),
			"connections": services.Hub.GetConnectionStats().TotalConnections,
		}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
