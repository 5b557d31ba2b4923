package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type HealthStatus struct {
	Healthy           bool      `json:"healthy"`
	EventsProcessed   uint64    `json:"events_processed"`
	LastEventTime     time.Time `json:"last_event_time"`
	PendingEvents     int       `json:"pending_events"`
	DatabaseConnected bool      `json:"database_connected"`
	NATSConnected     bool      `json:"nats_connected"`
	ListenerActive    bool      `json:"listener_active"`
	Errors            []string  `json:"errors"`
}

type database interface {
	Ping(ctx context.Context) error
	CountPending(ctx context.Context) (int, error)
}

type relayStats interface {
	Stats() (processed uint64, last time.Time, running bool)
}

type connection interface {
	Connected() bool
}

// HealthChecker reports relay health. The relay is unhealthy when any
// dependency is down, or when rows are pending and nothing was relayed for
// longer than threshold.
type HealthChecker struct {
	relay      relayStats
	db         database
	nats       connection
	threshold  time.Duration
	maxBacklog int
	now        func() time.Time
}

func NewHealthChecker(relay relayStats, db database, nats connection, threshold time.Duration) *HealthChecker {
	return &HealthChecker{
		relay:      relay,
		db:         db,
		nats:       nats,
		threshold:  threshold,
		maxBacklog: 1000,
		now:        time.Now,
	}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Healthy: true, Errors: []string{}}
	fail := func(msg string) {
		status.Healthy = false
		status.Errors = append(status.Errors, msg)
	}

	status.EventsProcessed, status.LastEventTime, status.ListenerActive = h.relay.Stats()
	if !status.ListenerActive {
		fail("listener not active")
	}

	if err := h.db.Ping(ctx); err != nil {
		fail(fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	if h.nats != nil {
		status.NATSConnected = h.nats.Connected()
		if !status.NATSConnected {
			fail("NATS disconnected")
		}
	}

	if status.DatabaseConnected {
		pending, err := h.db.CountPending(ctx)
		if err != nil {
			status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending events: %v", err))
		} else {
			status.PendingEvents = pending
			if pending > h.maxBacklog {
				status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", pending))
			}
		}
	}

	if status.PendingEvents > 0 && !status.LastEventTime.IsZero() {
		if idle := h.now().Sub(status.LastEventTime); idle > h.threshold {
			fail(fmt.Sprintf("no events processed for %s", idle.Round(time.Second)))
		}
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)
	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
