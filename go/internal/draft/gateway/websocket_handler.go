package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/draftroom/go/internal/auth"
	"github.com/mcdev12/draftroom/go/internal/draft/events"
	"github.com/mcdev12/draftroom/go/internal/draft/orchestrator"
	"github.com/mcdev12/draftroom/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Engine is the part of the orchestrator the gateway drives.
type Engine interface {
	State(ctx context.Context, draftID uuid.UUID) (events.FullState, error)
	Subscribe(ctx context.Context, draftID uuid.UUID, attach orchestrator.AttachFunc) error
	SubmitPickAs(ctx context.Context, draftID, userID, playerID uuid.UUID) (*models.DraftPick, error)
	TeamFor(ctx context.Context, draftID, userID uuid.UUID) (uuid.UUID, error)
	Execute(ctx context.Context, draftID, userID uuid.UUID, cmd orchestrator.Command) (events.FullState, error)
}

// Handler upgrades authenticated clients onto a draft's feed and runs the
// commands they send.
type Handler struct {
	hub            *Hub
	engine         Engine
	verifier       *auth.Verifier
	queues         *QueueStore
	commandTimeout time.Duration
}

func NewHandler(hub *Hub, engine Engine, verifier *auth.Verifier, queues *QueueStore) *Handler {
	return &Handler{
		hub:            hub,
		engine:         engine,
		verifier:       verifier,
		queues:         queues,
		commandTimeout: 10 * time.Second,
	}
}

// authenticate reads the token from the Authorization header, or from the
// token query parameter for browsers that cannot set headers on upgrade.
func (h *Handler) authenticate(r *http.Request) (uuid.UUID, error) {
	token, ok := auth.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return uuid.Nil, auth.ErrUnauthenticated
	}
	return h.verifier.Verify(token)
}

// HandleDraftConnection serves /ws/draft?draft_id=...
func (h *Handler) HandleDraftConnection(w http.ResponseWriter, r *http.Request) {
	draftIDStr := r.URL.Query().Get("draft_id")
	if draftIDStr == "" {
		http.Error(w, "draft_id is required", http.StatusBadRequest)
		return
	}
	draftID, err := uuid.Parse(draftIDStr)
	if err != nil {
		http.Error(w, "invalid draft_id format", http.StatusBadRequest)
		return
	}
	userID, err := h.authenticate(r)
	if err != nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	if _, err := h.engine.State(r.Context(), draftID); err != nil {
		if errors.Is(err, orchestrator.ErrDraftNotFound) {
			http.Error(w, "draft not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("draft_id", draftID.String()).Msg("failed to load draft for connection")
		http.Error(w, "failed to load draft", http.StatusInternalServerError)
		return
	}

	ws, err := h.hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client
		log.Error().Err(err).Str("draft_id", draftID.String()).Msg("failed to upgrade WebSocket connection")
		return
	}

	c := h.hub.newConnection(ws, draftID, userID)
	go c.writePump()

	ctx, cancel := context.WithTimeout(context.Background(), h.commandTimeout)
	defer cancel()
	if err := h.engine.Subscribe(ctx, draftID, h.hub.Attach(c)); err != nil {
		log.Error().Err(err).Str("connection_id", c.ID).Msg("failed to subscribe connection")
		c.Close()
		return
	}
	go c.readPump(h.handleClientMessage)

	log.Info().
		Str("connection_id", c.ID).
		Str("user_id", userID.String()).
		Str("draft_id", draftID.String()).
		Msg("WebSocket connection established")
}

// handleClientMessage runs a command and replies on the same connection.
func (h *Handler) handleClientMessage(c *Connection, data []byte) {
	msg, err := decodeMessage(data)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), h.commandTimeout)
		err = h.dispatch(ctx, c, msg)
		cancel()
	}
	if err != nil {
		log.Debug().
			Err(err).
			Str("connection_id", c.ID).
			Str("type", msg.Type).
			Msg("client command rejected")
	}

	reply, mErr := json.Marshal(resultFor(msg.RequestID, err))
	if mErr != nil {
		log.Error().Err(mErr).Msg("failed to marshal command result")
		return
	}
	c.enqueue(reply)
}

// HandleConnectionStats serves /ws/stats.
func (h *Handler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.hub.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/draft", h.HandleDraftConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
