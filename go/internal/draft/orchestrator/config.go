package orchestrator

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Fallback names the last-resort auto-pick policy.
type Fallback string

const (
	FallbackLowestID Fallback = "lowest_id"
	FallbackRandom   Fallback = "random"
)

// Config is the engine policy, loaded from YAML.
type Config struct {
	MinPickSeconds           int           `yaml:"min_pick_seconds"`
	MaxPickSeconds           int           `yaml:"max_pick_seconds"`
	HeartbeatInterval        time.Duration `yaml:"heartbeat_interval"`
	AutoPickRetry            time.Duration `yaml:"autopick_retry"`
	AutoPickFallback         Fallback      `yaml:"autopick_fallback"`
	AllowRevertAfterComplete bool          `yaml:"allow_revert_after_complete"`
	MailboxSize              int           `yaml:"mailbox_size"`

	// IdleEviction is how long a completed draft's actor stays loaded
	// without traffic.
	IdleEviction time.Duration `yaml:"idle_eviction"`

	// SubscriberBuffer is the per-connection outbound queue. A subscriber
	// that falls this far behind is dropped.
	SubscriberBuffer int `yaml:"subscriber_buffer"`
}

func DefaultConfig() Config {
	return Config{
		MinPickSeconds:    10,
		MaxPickSeconds:    300,
		HeartbeatInterval: 5 * time.Second,
		AutoPickRetry:     2 * time.Second,
		AutoPickFallback:  FallbackLowestID,
		MailboxSize:       64,
		IdleEviction:      10 * time.Minute,
		SubscriberBuffer:  256,
	}
}

// LoadConfig reads a YAML policy file. Keys missing from the file keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read engine config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse engine config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MinPickSeconds <= 0 || c.MaxPickSeconds < c.MinPickSeconds {
		return fmt.Errorf("invalid pick seconds range [%d, %d]", c.MinPickSeconds, c.MaxPickSeconds)
	}
	if c.HeartbeatInterval <= 0 || c.AutoPickRetry <= 0 || c.IdleEviction <= 0 {
		return fmt.Errorf("heartbeat_interval, autopick_retry and idle_eviction must be positive")
	}
	switch c.AutoPickFallback {
	case FallbackLowestID, FallbackRandom:
	default:
		return fmt.Errorf("unknown autopick_fallback %q", c.AutoPickFallback)
	}
	if c.MailboxSize <= 0 || c.SubscriberBuffer <= 0 {
		return fmt.Errorf("mailbox_size and subscriber_buffer must be positive")
	}
	return nil
}
