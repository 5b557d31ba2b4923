package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
)

// Config is the server's environment.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	JWTSecret    string `env:"JWT_SECRET,required"`
	EngineConfig string `env:"ENGINE_CONFIG"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// EmbeddedRelay runs the outbox relay inside the server instead of as
	// its own process.
	EmbeddedRelay    bool          `env:"OUTBOX_EMBEDDED" envDefault:"false"`
	NATSURL          string        `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`
	FallbackInterval time.Duration `env:"FALLBACK_INTERVAL" envDefault:"30s"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// loadEngineConfig reads the engine policy file. With no file configured the
// defaults apply.
func loadEngineConfig(path string) (orchestrator.Config, error) {
	if path == "" {
		return orchestrator.DefaultConfig(), nil
	}
	cfg, err := orchestrator.LoadConfig(path)
	if err != nil {
		return orchestrator.Config{}, fmt.Errorf("failed to load engine config: %w", err)
	}
	return cfg, nil
}
