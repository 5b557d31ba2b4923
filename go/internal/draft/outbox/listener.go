package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/rs/zerolog/log"
)

type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // channel the outbox trigger notifies
	FallbackInterval time.Duration // sweep for missed notifications
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel:    "draft_outbox_events",
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// rowSource is the part of Store the relay needs.
type rowSource interface {
	FetchByID(ctx context.Context, id uuid.UUID) (*events.Envelope, error)
	FetchUnsent(ctx context.Context, limit int) ([]events.Envelope, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// Listener relays outbox rows to a Publisher as their NOTIFYs arrive, with a
// periodic sweep for anything a dropped connection missed. A row is marked
// sent only after the publisher acknowledged it, so delivery is at least once.
type Listener struct {
	rows      rowSource
	publisher Publisher
	cfg       ListenerConfig
	pq        *pq.Listener
	notify    <-chan *pq.Notification

	mu        sync.Mutex
	running   bool
	processed uint64
	lastEvent time.Time
}

func NewListener(rows rowSource, publisher Publisher, cfg ListenerConfig) (*Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Int("event", int(ev)).Msg("outbox listener connection event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}
	log.Info().Str("channel", cfg.NotifyChannel).Msg("listening for notifications")

	return &Listener{
		rows:      rows,
		publisher: publisher,
		cfg:       cfg,
		pq:        l,
		notify:    l.Notify,
	}, nil
}

// Start runs until ctx is canceled. It sweeps once on entry so rows written
// while the relay was down go out first.
func (l *Listener) Start(ctx context.Context) error {
	l.setRunning(true)
	defer l.setRunning(false)

	log.Info().
		Str("channel", l.cfg.NotifyChannel).
		Dur("ping_interval", l.cfg.PingInterval).
		Dur("fallback_interval", l.cfg.FallbackInterval).
		Msg("listener started")

	if err := l.processUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed initial outbox sweep")
	}

	pingTicker := time.NewTicker(l.cfg.PingInterval)
	fallbackTicker := time.NewTicker(l.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("listener shutting down")
			return l.Stop()
		case note := <-l.notify:
			if note == nil {
				// the connection was re-established; notifications may be lost
				if err := l.processUnsent(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process unsent events after reconnect")
				}
				continue
			}
			if err := l.handleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.C:
			if err := l.processUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent events")
			}
		case <-pingTicker.C:
			if l.pq != nil {
				if err := l.pq.Ping(); err != nil {
					log.Error().Err(err).Msg("failed to ping listener")
				}
			}
		}
	}
}

func (l *Listener) Stop() error {
	if l.pq == nil {
		return nil
	}
	return l.pq.Close()
}

// Stats returns how many rows were relayed and when the last one went out.
func (l *Listener) Stats() (processed uint64, last time.Time, running bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.processed, l.lastEvent, l.running
}

func (l *Listener) setRunning(v bool) {
	l.mu.Lock()
	l.running = v
	l.mu.Unlock()
}

// handleNotification relays the row named by a NOTIFY payload.
func (l *Listener) handleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event ID in notification: %w", err)
	}
	env, err := l.rows.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAlreadySent) {
			log.Debug().Str("event_id", id.String()).Msg("outbox event already relayed")
			return nil
		}
		return err
	}
	return l.relay(ctx, *env)
}

// processUnsent relays one batch of unsent rows. A failed row is logged and
// left for the next sweep.
func (l *Listener) processUnsent(ctx context.Context) error {
	unsent, err := l.rows.FetchUnsent(ctx, l.cfg.BatchSize)
	if err != nil {
		return err
	}
	for _, env := range unsent {
		if err := l.relay(ctx, env); err != nil {
			log.Error().Err(err).Str("event_id", env.ID.String()).Msg("failed to relay outbox event")
		}
	}
	if len(unsent) > 0 {
		log.Info().Int("count", len(unsent)).Msg("swept unsent outbox events")
	}
	return nil
}

func (l *Listener) relay(ctx context.Context, env events.Envelope) error {
	if err := l.publishWithRetry(ctx, env); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := l.rows.MarkSent(ctx, env.ID); err != nil {
		// JetStream dedupes on the message id, so a later resend is harmless
		return err
	}
	l.mu.Lock()
	l.processed++
	l.lastEvent = time.Now()
	l.mu.Unlock()

	log.Info().
		Str("event_id", env.ID.String()).
		Str("draft_id", env.DraftID.String()).
		Str("event_type", env.EventType).
		Msg("published and marked event as sent")
	return nil
}

// publishWithRetry backs off linearly between attempts.
func (l *Listener) publishWithRetry(ctx context.Context, env events.Envelope) error {
	var lastErr error
	for attempt := 0; attempt <= l.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.cfg.RetryDelay * time.Duration(attempt)):
			}
		}
		if err := l.publisher.Publish(ctx, env); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", env.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}
		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", env.ID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}
	return fmt.Errorf("publish failed after %d attempts: %w", l.cfg.MaxRetries+1, lastErr)
}
