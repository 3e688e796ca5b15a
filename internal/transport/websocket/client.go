package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/al-chris/1-2-3-game/internal/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is one connected player: a websocket connection plus its outbound
// queue. Inbound events are handled on the read pump's goroutine, so each
// client is served by its own task.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   model.PlayerID
}

// ID returns the opaque identifier assigned to this connection
func (c *Client) ID() model.PlayerID {
	return c.id
}

// readPump reads envelopes off the connection and hands them to the event
// handler until the peer goes away. The context is scoped to the
// connection, not the upgrade request: the request context is canceled as
// soon as the HTTP handler returns, long before the connection ends.
func (c *Client) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer func() {
		c.hub.disconnect(ctx, c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error",
					slog.String("client_id", string(c.id)),
					slog.String("error", err.Error()),
				)
			}
			return
		}

		var env model.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// Malformed frame; drop it and keep the connection alive
			continue
		}

		c.hub.handler.HandleEvent(ctx, c.id, env)
	}
}

// writePump drains the send queue onto the connection and keeps the peer
// alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
