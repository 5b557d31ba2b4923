package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mcdev12/draftroom/go/internal/dbconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	engineCfg, err := loadEngineConfig(cfg.EngineConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load engine config")
	}

	dbCfg, err := dbconfig.NewConfigFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load database config")
	}
	database, err := setupDatabase(dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup database")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := setupServices(ctx, database, cfg, engineCfg, dbCfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to setup services")
	}

	// Re-arm drafts that were live when the last process stopped
	if err := services.Orchestrator.Recover(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to recover live drafts")
	}

	relayDone := make(chan error, 1)
	if services.Relay != nil {
		go func() {
			log.Info().Msg("starting embedded outbox relay")
			relayDone <- services.Relay.Start(ctx)
		}()
	} else {
		close(relayDone)
	}

	server := setupServer(cfg.Port, services)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("draft room listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := services.Orchestrator.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("orchestrator shutdown")
	}
	if err := <-relayDone; err != nil {
		log.Error().Err(err).Msg("outbox relay stop")
	}
	if services.Publisher != nil {
		if err := services.Publisher.Close(); err != nil {
			log.Error().Err(err).Msg("close publisher")
		}
	}
	log.Info().Msg("graceful shutdown complete")
}
