package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/al-chris/1-2-3-game/internal/model"
	"github.com/al-chris/1-2-3-game/internal/services/room"
)

// EventHandler receives decoded inbound envelopes and connection teardown
// notifications. It is satisfied by room.Coordinator.
type EventHandler interface {
	HandleEvent(ctx context.Context, playerID model.PlayerID, env model.Envelope)
	OnDisconnect(ctx context.Context, playerID model.PlayerID)
}

// OccupantResolver maps a session to the players currently seated in it.
// It is satisfied by session.Store.
type OccupantResolver interface {
	Occupants(ctx context.Context, id model.SessionID) []model.PlayerID
}

// Hub tracks live connections and fans events out to them. It is the
// room.Sink implementation backing the coordinator.
type Hub struct {
	mu       sync.RWMutex
	clients  map[model.PlayerID]*Client
	handler  EventHandler
	resolver OccupantResolver
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

var _ room.Sink = (*Hub)(nil)

func NewHub(resolver OccupantResolver, logger *slog.Logger) *Hub {
	return &Hub{
		clients:  make(map[model.PlayerID]*Client),
		resolver: resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The static client is served from the same origin; other
			// origins are for local development against a separate port
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "websocket-hub")),
	}
}

// SetHandler attaches the event handler. The hub delivers outbound events
// for the handler, so the two are wired in separate steps. Must be called
// before ServeWS accepts connections.
func (h *Hub) SetHandler(handler EventHandler) {
	h.handler = handler
}

// ServeWS upgrades an HTTP request to a websocket connection, assigns the
// player an identifier, and starts the connection's pumps
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 32),
		id:   model.PlayerID(uuid.NewString()),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()

	h.logger.Info("player connected", slog.String("player_id", string(client.id)))

	go client.writePump()
	go client.readPump()
}

// Send delivers a single event to one player. Unknown players and full
// queues are dropped silently: either the player has already departed or
// the connection is about to be torn down anyway.
func (h *Hub) Send(ctx context.Context, playerID model.PlayerID, event model.EventType, payload any) {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("event", string(event)),
			slog.String("error", err.Error()),
		)
		return
	}
	h.deliver(playerID, data)
}

// Broadcast delivers an event to every occupant of a session, optionally
// excluding one player
func (h *Hub) Broadcast(ctx context.Context, sessionID model.SessionID, event model.EventType, payload any, exclude model.PlayerID) {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		h.logger.Error("failed to encode event",
			slog.String("event", string(event)),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, playerID := range h.resolver.Occupants(ctx, sessionID) {
		if playerID == exclude {
			continue
		}
		h.deliver(playerID, data)
	}
}

func (h *Hub) deliver(playerID model.PlayerID, data []byte) {
	// The send stays under the lock so it cannot race the channel close in
	// disconnect. It is non-blocking, so holding the read lock is safe.
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[playerID]
	if !ok {
		return
	}

	select {
	case client.send <- data:
	default:
		// Queue full; the write pump has stalled and the ping deadline
		// will reap the connection
		h.logger.Warn("dropping event for slow client", slog.String("player_id", string(playerID)))
	}
}

// disconnect removes a client from the hub and notifies the handler so any
// sessions the player was in can be cleaned up
func (h *Hub) disconnect(ctx context.Context, client *Client) {
	h.mu.Lock()
	if current, ok := h.clients[client.id]; ok && current == client {
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mu.Unlock()

	h.logger.Info("player disconnected", slog.String("player_id", string(client.id)))
	h.handler.OnDisconnect(ctx, client.id)
}

// ClientCount reports the number of live connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func encodeEnvelope(event model.EventType, payload any) ([]byte, error) {
	env := model.Envelope{Event: event}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
