package gateway

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/rs/zerolog/log"
)

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBuffer      int
	CheckOrigin     func(r *http.Request) bool
}

func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBuffer:      256,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// Hub fans draft events out to WebSocket subscribers. Publish is called from
// a draft's actor and never blocks: a subscriber whose buffer is full is
// dropped and can reconnect for a fresh snapshot.
type Hub struct {
	mu       sync.RWMutex
	drafts   map[uuid.UUID]map[*Connection]struct{}
	upgrader websocket.Upgrader
	cfg      ConnectionConfig
}

var _ orchestrator.Broadcaster = (*Hub)(nil)

func NewHub(cfg ConnectionConfig) *Hub {
	return &Hub{
		drafts: make(map[uuid.UUID]map[*Connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     cfg.CheckOrigin,
		},
		cfg: cfg,
	}
}

// Connection is one subscriber of one draft.
type Connection struct {
	ID          string
	UserID      uuid.UUID
	DraftID     uuid.UUID
	ConnectedAt time.Time

	hub  *Hub
	ws   *websocket.Conn
	send chan []byte

	// closed is closed exactly once when the connection is torn down. send
	// is never closed, so a late enqueue cannot panic.
	closed    chan struct{}
	closeOnce sync.Once
}

func (h *Hub) newConnection(ws *websocket.Conn, draftID, userID uuid.UUID) *Connection {
	return &Connection{
		ID:          uuid.New().String(),
		UserID:      userID,
		DraftID:     draftID,
		ConnectedAt: time.Now(),
		hub:         h,
		ws:          ws,
		send:        make(chan []byte, h.cfg.SendBuffer),
		closed:      make(chan struct{}),
	}
}

// Attach returns the function the engine runs with the subscription
// snapshot. It queues the snapshot ahead of any later event and registers
// the connection.
func (h *Hub) Attach(c *Connection) orchestrator.AttachFunc {
	return func(snapshot events.DraftEvent) {
		data, err := json.Marshal(snapshot)
		if err != nil {
			log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to marshal snapshot")
			c.Close()
			return
		}
		if !c.enqueue(data) {
			return
		}
		h.register(c)
	}
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-c.closed:
		return
	default:
	}
	if h.drafts[c.DraftID] == nil {
		h.drafts[c.DraftID] = make(map[*Connection]struct{})
	}
	h.drafts[c.DraftID][c] = struct{}{}

	log.Debug().
		Str("connection_id", c.ID).
		Str("draft_id", c.DraftID.String()).
		Int("total_connections", len(h.drafts[c.DraftID])).
		Msg("connection registered")
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.drafts[c.DraftID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.drafts, c.DraftID)
	}
	log.Info().
		Str("connection_id", c.ID).
		Str("user_id", c.UserID.String()).
		Str("draft_id", c.DraftID.String()).
		Msg("connection unregistered")
}

// Publish sends event to every subscriber of draftID.
func (h *Hub) Publish(draftID uuid.UUID, event events.DraftEvent) {
	h.mu.RLock()
	targets := make([]*Connection, 0, len(h.drafts[draftID]))
	for c := range h.drafts[draftID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	if len(targets) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to marshal event for broadcast")
		return
	}
	for _, c := range targets {
		if !c.enqueue(data) {
			log.Warn().
				Str("connection_id", c.ID).
				Str("user_id", c.UserID.String()).
				Str("draft_id", draftID.String()).
				Msg("connection send buffer full, dropping subscriber")
		}
	}

	log.Debug().
		Str("event_type", string(event.Type)).
		Str("draft_id", draftID.String()).
		Uint64("seq", event.Seq).
		Int("connections", len(targets)).
		Msg("event broadcasted")
}

// ConnectionStats is a point-in-time view of the hub.
type ConnectionStats struct {
	TotalConnections int            `json:"total_connections"`
	ActiveDrafts     int            `json:"active_drafts"`
	DraftConnections map[string]int `json:"draft_connections"`
}

func (h *Hub) GetConnectionStats() ConnectionStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := ConnectionStats{
		ActiveDrafts:     len(h.drafts),
		DraftConnections: make(map[string]int, len(h.drafts)),
	}
	for draftID, conns := range h.drafts {
		stats.TotalConnections += len(conns)
		stats.DraftConnections[draftID.String()] = len(conns)
	}
	return stats
}

// Subscribers reports the live connections for one draft.
func (h *Hub) Subscribers(draftID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.drafts[draftID])
}

// enqueue queues data without blocking. A full buffer closes the connection.
func (c *Connection) enqueue(data []byte) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		c.Close()
		return false
	}
}

// Close unregisters the connection and tells writePump to send a close frame
// and release the socket. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.hub.unregister(c)
	})
}

// writePump drains send to the socket and keeps the peer alive with pings.
// It owns the socket and closes it on exit.
func (c *Connection) writePump() {
	cfg := c.hub.cfg
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.closed:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case message := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to write message to WebSocket")
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump hands each client frame to handle until the socket fails.
func (c *Connection) readPump(handle func(c *Connection, message []byte)) {
	cfg := c.hub.cfg
	defer c.Close()

	c.ws.SetReadLimit(cfg.MaxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Error().
					Err(err).
					Str("connection_id", c.ID).
					Msg("unexpected WebSocket close error")
			}
			return
		}
		handle(c, message)
		_ = c.ws.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	}
}
