package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/al-chris/1-2-3-game/internal/model"
)

// Client is a websocket connection to the game server
type Client struct {
	conn *websocket.Conn
}

// Connect dials the server's websocket endpoint. The server URL may be
// given with an http, https, ws or wss scheme.
func Connect(serverURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}

	return &Client{conn: conn}, nil
}

// Send writes one event envelope to the server
func (c *Client) Send(event model.EventType, payload any) error {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		raw = data
	}
	return c.conn.WriteJSON(model.Envelope{Event: event, Payload: raw})
}

// Read blocks until the next event envelope arrives
func (c *Client) Read() (model.Envelope, error) {
	var env model.Envelope
	if err := c.conn.ReadJSON(&env); err != nil {
		return model.Envelope{}, err
	}
	return env, nil
}

// Close shuts down the connection
func (c *Client) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
