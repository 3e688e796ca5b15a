package factory

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/suite"

	"github.com/al-chris/1-2-3-game/internal/model"
	"github.com/al-chris/1-2-3-game/internal/testutil"
	"github.com/al-chris/1-2-3-game/internal/transport"
)

// IntegrationSuite drives full games over real websocket connections
// against a fully wired application. The mocked clock collapses countdown
// pauses so sequences complete immediately.
type IntegrationSuite struct {
	suite.Suite

	app    *TestApp
	server *httptest.Server
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	router := transport.NewRouter(transport.RouterConfig{
		Logger: testutil.NopLogger(),
		Hub:    s.app.Hub,
	})
	s.server = httptest.NewServer(router)
}

func (s *IntegrationSuite) TearDownTest() {
	s.server.Close()
}

func (s *IntegrationSuite) dial() *gws.Conn {
	url := "ws" + strings.TrimPrefix(s.server.URL, "http") + "/ws"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err)
	return conn
}

func (s *IntegrationSuite) send(conn *gws.Conn, event model.EventType, payload any) {
	raw, err := json.Marshal(payload)
	s.Require().NoError(err)
	s.Require().NoError(conn.WriteJSON(model.Envelope{Event: event, Payload: raw}))
}

func (s *IntegrationSuite) read(conn *gws.Conn) model.Envelope {
	var env model.Envelope
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	s.Require().NoError(conn.ReadJSON(&env))
	return env
}

// expect reads the next envelope and asserts its event type
func (s *IntegrationSuite) expect(conn *gws.Conn, event model.EventType) model.Envelope {
	env := s.read(conn)
	s.Require().Equal(event, env.Event)
	return env
}

// expectCountdown consumes a full countdown sequence ending in roundStart
func (s *IntegrationSuite) expectCountdown(conn *gws.Conn) {
	for _, count := range []string{"Ready?", "3", "2", "1", "GO!"} {
		env := s.expect(conn, model.EventCountdown)
		var p model.CountdownPayload
		s.Require().NoError(json.Unmarshal(env.Payload, &p))
		s.Equal(count, p.Count)
	}
	s.expect(conn, model.EventRoundStart)
}

// startGame creates a room on conn1, joins conn2, and consumes the join
// broadcasts on both connections
func (s *IntegrationSuite) startGame(conn1, conn2 *gws.Conn, code string) model.SessionID {
	s.app.MockRandom.QueueString(code)

	s.send(conn1, model.EventCreateGame, model.CreateGamePayload{Username: "alice"})
	env := s.expect(conn1, model.EventGameCreated)
	var created model.GameCreatedPayload
	s.Require().NoError(json.Unmarshal(env.Payload, &created))
	s.Require().Equal(model.SessionID(code), created.GameID)

	s.send(conn2, model.EventJoinGame, model.JoinGamePayload{GameID: created.GameID, Username: "bob"})
	for _, conn := range []*gws.Conn{conn1, conn2} {
		env := s.expect(conn, model.EventPlayerJoined)
		var joined model.PlayerJoinedPayload
		s.Require().NoError(json.Unmarshal(env.Payload, &joined))
		s.Equal("alice", joined.Player1)
		s.Equal("bob", joined.Player2)
	}

	return created.GameID
}

func (s *IntegrationSuite) TestFullRound() {
	conn1 := s.dial()
	defer conn1.Close()
	conn2 := s.dial()
	defer conn2.Close()

	gameID := s.startGame(conn1, conn2, "ABC234")

	s.send(conn1, model.EventReadyForRound, model.ReadyForRoundPayload{GameID: gameID})
	s.send(conn2, model.EventReadyForRound, model.ReadyForRoundPayload{GameID: gameID})
	s.expectCountdown(conn1)
	s.expectCountdown(conn2)

	s.send(conn1, model.EventSubmitWord, model.SubmitWordPayload{GameID: gameID, Word: "cat"})
	s.send(conn2, model.EventSubmitWord, model.SubmitWordPayload{GameID: gameID, Word: "CAT"})

	for _, conn := range []*gws.Conn{conn1, conn2} {
		env := s.expect(conn, model.EventRoundResults)
		var results model.RoundResultsPayload
		s.Require().NoError(json.Unmarshal(env.Payload, &results))
		s.True(results.IsMatch)
		s.Equal("cat", results.Player1Word)
		s.Equal("CAT", results.Player2Word)
		s.Equal(1, results.Player1Score)
		s.Equal(1, results.Player2Score)
	}
}

func (s *IntegrationSuite) TestRematchKeepsScores() {
	conn1 := s.dial()
	defer conn1.Close()
	conn2 := s.dial()
	defer conn2.Close()

	gameID := s.startGame(conn1, conn2, "DEF567")

	s.send(conn1, model.EventReadyForRound, model.ReadyForRoundPayload{GameID: gameID})
	s.send(conn2, model.EventReadyForRound, model.ReadyForRoundPayload{GameID: gameID})
	s.expectCountdown(conn1)
	s.expectCountdown(conn2)

	s.send(conn1, model.EventSubmitWord, model.SubmitWordPayload{GameID: gameID, Word: "dog"})
	s.send(conn2, model.EventSubmitWord, model.SubmitWordPayload{GameID: gameID, Word: "dog"})
	s.expect(conn1, model.EventRoundResults)
	s.expect(conn2, model.EventRoundResults)

	s.send(conn1, model.EventPlayAgainChoice, model.PlayAgainPayload{GameID: gameID, PlayAgain: true})
	s.expect(conn1, model.EventWaitingForOther)

	s.send(conn2, model.EventPlayAgainChoice, model.PlayAgainPayload{GameID: gameID, PlayAgain: true})

	for _, conn := range []*gws.Conn{conn1, conn2} {
		env := s.expect(conn, model.EventNewGameStarting)
		var starting model.NewGameStartingPayload
		s.Require().NoError(json.Unmarshal(env.Payload, &starting))
		s.Equal(1, starting.Player1Score)
		s.Equal(1, starting.Player2Score)
		s.Equal(1, starting.Round)
		s.expectCountdown(conn)
	}
}

func (s *IntegrationSuite) TestDeclineEndsGame() {
	conn1 := s.dial()
	defer conn1.Close()
	conn2 := s.dial()
	defer conn2.Close()

	gameID := s.startGame(conn1, conn2, "GHJ892")

	s.send(conn2, model.EventPlayAgainChoice, model.PlayAgainPayload{GameID: gameID, PlayAgain: false})

	for _, conn := range []*gws.Conn{conn1, conn2} {
		env := s.expect(conn, model.EventGameEnded)
		var ended model.GameEndedPayload
		s.Require().NoError(json.Unmarshal(env.Payload, &ended))
		s.Contains(ended.Message, "chose not to continue")
	}
}

func (s *IntegrationSuite) TestDisconnectNotifiesRemainingPlayer() {
	conn1 := s.dial()
	defer conn1.Close()
	conn2 := s.dial()

	gameID := s.startGame(conn1, conn2, "KMN234")
	s.Require().NoError(conn2.Close())

	s.expect(conn1, model.EventPlayerDisconnected)

	// The session reverts to waiting with the host still seated. The
	// notification goes out before the removal, so poll for the removal.
	s.Require().Eventually(func() bool {
		session, err := s.app.SessionStore.Get(context.Background(), gameID)
		if err != nil {
			return false
		}
		return session.Status == model.SessionWaiting &&
			session.Slot1.Occupied() && !session.Slot2.Occupied()
	}, time.Second, 5*time.Millisecond)
}

func (s *IntegrationSuite) TestJoinUnknownGame() {
	conn := s.dial()
	defer conn.Close()

	s.send(conn, model.EventJoinGame, model.JoinGamePayload{GameID: "NOPE99", Username: "bob"})
	s.expect(conn, model.EventGameNotFound)
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}
