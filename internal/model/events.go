package model

import "encoding/json"

// EventType identifies the type of event carried in an envelope
type EventType string

// Inbound events (client -> server)
const (
	EventCreateGame      EventType = "createGame"
	EventJoinGame        EventType = "joinGame"
	EventReadyForRound   EventType = "readyForRound"
	EventSubmitWord      EventType = "submitWord"
	EventPlayAgainChoice EventType = "playAgainChoice"
	EventLeaveGame       EventType = "leaveGame"
)

// Outbound events (server -> client)
const (
	EventGameCreated        EventType = "gameCreated"
	EventGameNotFound       EventType = "gameNotFound"
	EventGameFull           EventType = "gameFull"
	EventPlayerJoined       EventType = "playerJoined"
	EventCountdown          EventType = "countdown"
	EventRoundStart         EventType = "roundStart"
	EventRoundResults       EventType = "roundResults"
	EventGameError          EventType = "gameError"
	EventWaitingForOther    EventType = "waitingForOtherPlayer"
	EventGameEnded          EventType = "gameEnded"
	EventNewGameStarting    EventType = "newGameStarting"
	EventPlayerDisconnected EventType = "playerDisconnected"
)

// Envelope is the tagged wire format for every message in both directions
type Envelope struct {
	Event   EventType       `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Inbound payloads

type CreateGamePayload struct {
	Username string `json:"username"`
}

type JoinGamePayload struct {
	GameID   SessionID `json:"gameId"`
	Username string    `json:"username"`
}

type ReadyForRoundPayload struct {
	GameID SessionID `json:"gameId"`
}

type SubmitWordPayload struct {
	GameID SessionID `json:"gameId"`
	Word   string    `json:"word"`
}

type PlayAgainPayload struct {
	GameID    SessionID `json:"gameId"`
	PlayAgain bool      `json:"playAgain"`
}

type LeaveGamePayload struct {
	GameID SessionID `json:"gameId"`
}

// Outbound payloads

type GameCreatedPayload struct {
	GameID SessionID `json:"gameId"`
}

type PlayerJoinedPayload struct {
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`
}

type CountdownPayload struct {
	Count string `json:"count"`
}

type RoundResultsPayload struct {
	Player1Word  string `json:"player1Word"`
	Player2Word  string `json:"player2Word"`
	IsMatch      bool   `json:"isMatch"`
	Player1Score int    `json:"player1Score"`
	Player2Score int    `json:"player2Score"`
}

type GameErrorPayload struct {
	Message string `json:"message"`
}

type GameEndedPayload struct {
	Message string `json:"message"`
}

type NewGameStartingPayload struct {
	Player1      string `json:"player1"`
	Player2      string `json:"player2"`
	Player1Score int    `json:"player1Score"`
	Player2Score int    `json:"player2Score"`
	Round        int    `json:"round"`
}
