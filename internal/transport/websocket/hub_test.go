package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/al-chris/1-2-3-game/internal/model"
	"github.com/al-chris/1-2-3-game/internal/testutil"
)

type recordedEvent struct {
	playerID model.PlayerID
	env      model.Envelope
}

type fakeHandler struct {
	mu                sync.Mutex
	events            []recordedEvent
	disconnects       []model.PlayerID
	lastConnected    model.PlayerID
	eventCtxErr      error
	disconnectCtxErr error
}

func (f *fakeHandler) HandleEvent(ctx context.Context, playerID model.PlayerID, env model.Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{playerID: playerID, env: env})
	f.lastConnected = playerID
	f.eventCtxErr = ctx.Err()
}

func (f *fakeHandler) OnDisconnect(ctx context.Context, playerID model.PlayerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects = append(f.disconnects, playerID)
	f.disconnectCtxErr = ctx.Err()
}

func (f *fakeHandler) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeHandler) disconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.disconnects)
}

type fakeResolver struct {
	mu        sync.Mutex
	occupants map[model.SessionID][]model.PlayerID
}

func (f *fakeResolver) Occupants(_ context.Context, id model.SessionID) []model.PlayerID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.occupants[id]
}

func (f *fakeResolver) set(id model.SessionID, players ...model.PlayerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.occupants == nil {
		f.occupants = make(map[model.SessionID][]model.PlayerID)
	}
	f.occupants[id] = players
}

type HubSuite struct {
	suite.Suite

	handler  *fakeHandler
	resolver *fakeResolver
	hub      *Hub
	server   *httptest.Server
}

func (s *HubSuite) SetupTest() {
	s.handler = &fakeHandler{}
	s.resolver = &fakeResolver{}
	s.hub = NewHub(s.resolver, testutil.NopLogger())
	s.hub.SetHandler(s.handler)
	s.server = httptest.NewServer(http.HandlerFunc(s.hub.ServeWS))
}

func (s *HubSuite) TearDownTest() {
	s.server.Close()
}

func (s *HubSuite) dial() *gws.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	return conn
}

// connectedID waits for the hub to register a connection and returns its id
// by sending a probe event through the handler
func (s *HubSuite) connectedID(conn *gws.Conn) model.PlayerID {
	before := s.handler.eventCount()
	err := conn.WriteJSON(model.Envelope{Event: model.EventCreateGame})
	s.Require().NoError(err)
	s.Require().Eventually(func() bool {
		return s.handler.eventCount() > before
	}, time.Second, 5*time.Millisecond)

	s.handler.mu.Lock()
	defer s.handler.mu.Unlock()
	return s.handler.lastConnected
}

func (s *HubSuite) TestInboundEventReachesHandler() {
	conn := s.dial()
	defer conn.Close()

	payload, err := json.Marshal(model.JoinGamePayload{
		GameID:   "ABC234",
		Username: "alice",
	})
	s.Require().NoError(err)
	err = conn.WriteJSON(model.Envelope{Event: model.EventJoinGame, Payload: payload})
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		return s.handler.eventCount() == 1
	}, time.Second, 5*time.Millisecond)

	s.handler.mu.Lock()
	defer s.handler.mu.Unlock()
	s.Equal(model.EventJoinGame, s.handler.events[0].env.Event)
	s.NotEmpty(s.handler.events[0].playerID)
}

func (s *HubSuite) TestMalformedFrameIsDropped() {
	conn := s.dial()
	defer conn.Close()

	err := conn.WriteMessage(gws.TextMessage, []byte("{not json"))
	s.Require().NoError(err)
	err = conn.WriteJSON(model.Envelope{Event: model.EventCreateGame})
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		return s.handler.eventCount() == 1
	}, time.Second, 5*time.Millisecond)

	s.handler.mu.Lock()
	defer s.handler.mu.Unlock()
	s.Equal(model.EventCreateGame, s.handler.events[0].env.Event)
}

func (s *HubSuite) TestSendDeliversToClient() {
	conn := s.dial()
	defer conn.Close()
	playerID := s.connectedID(conn)

	s.hub.Send(context.Background(), playerID, model.EventGameCreated, model.GameCreatedPayload{
		GameID: "XYZ789",
	})

	var env model.Envelope
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(time.Second)))
	s.Require().NoError(conn.ReadJSON(&env))
	s.Equal(model.EventGameCreated, env.Event)

	var payload model.GameCreatedPayload
	s.Require().NoError(json.Unmarshal(env.Payload, &payload))
	s.Equal(model.SessionID("XYZ789"), payload.GameID)
}

func (s *HubSuite) TestSendToUnknownClientIsSilent() {
	s.hub.Send(context.Background(), "nobody", model.EventGameCreated, nil)
	s.Equal(0, s.hub.ClientCount())
}

func (s *HubSuite) TestBroadcastExcludesPlayer() {
	conn1 := s.dial()
	defer conn1.Close()
	player1 := s.connectedID(conn1)

	conn2 := s.dial()
	defer conn2.Close()
	player2 := s.connectedID(conn2)

	s.resolver.set("GAME42", player1, player2)

	s.hub.Broadcast(context.Background(), "GAME42", model.EventPlayerJoined, model.PlayerJoinedPayload{
		Player1: "alice",
		Player2: "bob",
	}, player1)

	var env model.Envelope
	s.Require().NoError(conn2.SetReadDeadline(time.Now().Add(time.Second)))
	s.Require().NoError(conn2.ReadJSON(&env))
	s.Equal(model.EventPlayerJoined, env.Event)

	// The excluded connection must not have received anything
	s.Require().NoError(conn1.SetReadDeadline(time.Now().Add(100 * time.Millisecond)))
	s.Error(conn1.ReadJSON(&env))
}

func (s *HubSuite) TestDisconnectNotifiesHandler() {
	conn := s.dial()
	playerID := s.connectedID(conn)
	s.Require().NoError(conn.Close())

	s.Require().Eventually(func() bool {
		return s.handler.disconnectCount() == 1
	}, time.Second, 5*time.Millisecond)

	s.handler.mu.Lock()
	defer s.handler.mu.Unlock()
	s.Equal(playerID, s.handler.disconnects[0])
	s.Equal(0, s.hub.ClientCount())
}

// The upgrade request's context dies as soon as ServeWS returns, so events
// and disconnect cleanup must run on a context scoped to the connection.
// A context-honoring backend like redis rejects every operation otherwise.
func (s *HubSuite) TestEventContextOutlivesUpgradeRequest() {
	conn := s.dial()
	err := conn.WriteJSON(model.Envelope{Event: model.EventCreateGame})
	s.Require().NoError(err)
	s.Require().Eventually(func() bool {
		return s.handler.eventCount() == 1
	}, time.Second, 5*time.Millisecond)

	s.handler.mu.Lock()
	s.NoError(s.handler.eventCtxErr)
	s.handler.mu.Unlock()

	s.Require().NoError(conn.Close())
	s.Require().Eventually(func() bool {
		return s.handler.disconnectCount() == 1
	}, time.Second, 5*time.Millisecond)

	s.handler.mu.Lock()
	defer s.handler.mu.Unlock()
	s.NoError(s.handler.disconnectCtxErr)
}

// Concurrent delivery and teardown must never send on the closed queue
func (s *HubSuite) TestSendDuringDisconnectDoesNotPanic() {
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		client := &Client{
			hub:  s.hub,
			send: make(chan []byte, 1),
			id:   model.PlayerID(fmt.Sprintf("player-%d", i)),
		}
		s.hub.mu.Lock()
		s.hub.clients[client.id] = client
		s.hub.mu.Unlock()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 4; j++ {
				s.hub.Send(ctx, client.id, model.EventCountdown, model.CountdownPayload{Count: "3"})
			}
		}()
		go func() {
			defer wg.Done()
			s.hub.disconnect(ctx, client)
		}()
		wg.Wait()
	}

	s.Equal(0, s.hub.ClientCount())
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}
