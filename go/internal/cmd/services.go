package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mcdev12/draftroom/go/internal/auth"
	"github.com/mcdev12/draftroom/go/internal/draft/gateway"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/draft/outbox"
	"github.com/mcdev12/draftroom/go/internal/draft/repository"
	"github.com/mcdev12/draftroom/go/internal/draft/service"
	"github.com/mcdev12/draftroom/go/internal/leagues"
	"github.com/mcdev12/draftroom/go/internal/player"
	"github.com/mcdev12/draftroom/go/internal/roster"
)

type Services struct {
	Orchestrator *orchestrator.Orchestrator
	Hub          *gateway.Hub
	Gateway      *gateway.Handler
	State        *gateway.StateHandler
	Draft        *service.Service
	Verifier     *auth.Verifier

	// Relay and Health are set only when the outbox relay is embedded.
	Relay     *outbox.Listener
	Publisher *outbox.JetStreamPublisher
	Health    *outbox.HealthChecker
}

func setupServices(ctx context.Context, database *sql.DB, cfg Config, engineCfg orchestrator.Config, dsn string) (*Services, error) {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Engine → Transports

	verifier, err := auth.NewVerifier(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	// Collaborators
	leagueApp := leagues.NewApp(leagues.NewRepository(database))
	rosterApp := roster.NewApp(leagueApp)
	playerRepo := player.NewRepository(database)

	// Transport state
	connCfg := gateway.DefaultConnectionConfig()
	connCfg.SendBuffer = engineCfg.SubscriberBuffer
	hub := gateway.NewHub(connCfg)
	queues := gateway.NewQueueStore()

	// Engine
	orch, err := orchestrator.New(orchestrator.Dependencies{
		Store:   repository.NewRepository(database),
		Players: playerRepo,
		Ranking: playerRepo,
		Leagues: leagueApp,
		Rules:   rosterApp,
		Hub:     hub,
		Queues:  queues,
	}, engineCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create orchestrator: %w", err)
	}

	s := &Services{
		Orchestrator: orch,
		Hub:          hub,
		Gateway:      gateway.NewHandler(hub, orch, verifier, queues),
		State:        gateway.NewStateHandler(orch),
		Draft:        service.NewService(orch, queues),
		Verifier:     verifier,
	}

	if cfg.EmbeddedRelay {
		jsCfg := outbox.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATSURL
		publisher, err := outbox.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream publisher: %w", err)
		}
		store := outbox.NewStore(database)
		ltCfg := outbox.DefaultListenerConfig()
		ltCfg.DatabaseURL = dsn
		ltCfg.FallbackInterval = cfg.FallbackInterval
		relay, err := outbox.NewListener(store, publisher, ltCfg)
		if err != nil {
			_ = publisher.Close()
			return nil, fmt.Errorf("failed to create outbox listener: %w", err)
		}
		s.Relay = relay
		s.Publisher = publisher
		s.Health = outbox.NewHealthChecker(relay, store, publisher, 2*ltCfg.FallbackInterval)
	}
	return s, nil
}
