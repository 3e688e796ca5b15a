package room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/al-chris/1-2-3-game/internal/dependencies/clock"
	"github.com/al-chris/1-2-3-game/internal/dependencies/random"
	"github.com/al-chris/1-2-3-game/internal/model"
	"github.com/al-chris/1-2-3-game/internal/services/session"
)

// Sink delivers outbound events. Implementations must tolerate unknown or
// departed client ids: such sends are dropped silently, never an error.
type Sink interface {
	// Send delivers an event to a single client
	Send(ctx context.Context, clientID model.PlayerID, event model.EventType, payload any)

	// Broadcast delivers an event to every occupant of a session, minus an
	// optional excluded client
	Broadcast(ctx context.Context, sessionID model.SessionID, event model.EventType, payload any, exclude model.PlayerID)
}

const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// Config holds timing and code-generation settings for the coordinator
type Config struct {
	// CountdownTick is the pause between countdown steps
	CountdownTick time.Duration
	// GoGrace is the pause between "GO!" and the round opening for input
	GoGrace time.Duration
	// RematchGrace is the pause between newGameStarting and the countdown
	RematchGrace time.Duration
	// CodeLength is the length of generated room codes
	CodeLength int
}

// DefaultConfig returns the standard game pacing
func DefaultConfig() Config {
	return Config{
		CountdownTick: time.Second,
		GoGrace:       500 * time.Millisecond,
		RematchGrace:  2 * time.Second,
		CodeLength:    6,
	}
}

// Coordinator interprets inbound events, drives session state through the
// store, and fans resulting events out through the sink. It holds no game
// state of its own.
type Coordinator struct {
	store  *session.Store
	sink   Sink
	clock  clock.Clock
	random random.Random
	cfg    Config
	logger *slog.Logger
}

// NewCoordinator creates a new room coordinator
func NewCoordinator(store *session.Store, sink Sink, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		sink:   sink,
		clock:  clk,
		random: rnd,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "room-coordinator")),
	}
}

// HandleEvent routes one inbound envelope to its handler. Malformed
// payloads and unknown events are dropped; a handler never takes down the
// client's connection.
func (c *Coordinator) HandleEvent(ctx context.Context, clientID model.PlayerID, env model.Envelope) {
	switch env.Event {
	case model.EventCreateGame:
		var p model.CreateGamePayload
		if !decode(env.Payload, &p) {
			return
		}
		c.HandleCreateGame(ctx, clientID, p)
	case model.EventJoinGame:
		var p model.JoinGamePayload
		if !decode(env.Payload, &p) {
			return
		}
		c.HandleJoinGame(ctx, clientID, p)
	case model.EventReadyForRound:
		var p model.ReadyForRoundPayload
		if !decode(env.Payload, &p) {
			return
		}
		c.HandleReadyForRound(ctx, clientID, p)
	case model.EventSubmitWord:
		var p model.SubmitWordPayload
		if !decode(env.Payload, &p) {
			return
		}
		c.HandleSubmitWord(ctx, clientID, p)
	case model.EventPlayAgainChoice:
		var p model.PlayAgainPayload
		if !decode(env.Payload, &p) {
			return
		}
		c.HandlePlayAgainChoice(ctx, clientID, p)
	case model.EventLeaveGame:
		var p model.LeaveGamePayload
		if !decode(env.Payload, &p) {
			return
		}
		c.HandleLeaveGame(ctx, clientID, p)
	default:
		c.logger.Debug("unknown inbound event",
			slog.String("event", string(env.Event)),
			slog.String("client_id", string(clientID)),
		)
	}
}

// HandleCreateGame creates a room and replies with its code
func (c *Coordinator) HandleCreateGame(ctx context.Context, clientID model.PlayerID, p model.CreateGamePayload) {
	username := p.Username
	if username == "" {
		username = "Player"
	}

	sessionID := model.SessionID(c.random.String(c.cfg.CodeLength, codeAlphabet))

	if _, err := c.store.Create(ctx, sessionID, clientID, username); err != nil {
		c.logger.Warn("failed to create session",
			slog.String("session_id", string(sessionID)),
			slog.String("error", err.Error()),
		)
		c.sink.Send(ctx, clientID, model.EventGameError, model.GameErrorPayload{
			Message: "Could not create game",
		})
		return
	}

	c.sink.Send(ctx, clientID, model.EventGameCreated, model.GameCreatedPayload{
		GameID: sessionID,
	})
}

// HandleJoinGame seats a second player or reports why it cannot
func (c *Coordinator) HandleJoinGame(ctx context.Context, clientID model.PlayerID, p model.JoinGamePayload) {
	username := p.Username
	if username == "" {
		username = "Player"
	}

	updated, err := c.store.Join(ctx, p.GameID, clientID, username)
	switch {
	case session.IsNotFound(err):
		c.sink.Send(ctx, clientID, model.EventGameNotFound, struct{}{})
		return
	case errors.Is(err, model.ErrSessionFull):
		c.sink.Send(ctx, clientID, model.EventGameFull, struct{}{})
		return
	case err != nil:
		c.sink.Send(ctx, clientID, model.EventGameError, model.GameErrorPayload{
			Message: "Could not join game",
		})
		return
	}

	c.sink.Broadcast(ctx, p.GameID, model.EventPlayerJoined, model.PlayerJoinedPayload{
		Player1: updated.Slot1.DisplayName,
		Player2: updated.Slot2.DisplayName,
	}, "")
}

// HandleReadyForRound flags readiness; when both players are ready the
// round state clears and the countdown begins
func (c *Coordinator) HandleReadyForRound(ctx context.Context, clientID model.PlayerID, p model.ReadyForRoundPayload) {
	bothReady, err := c.store.MarkReady(ctx, p.GameID, clientID)
	if err != nil || !bothReady {
		return
	}

	if err := c.store.ResetRound(ctx, p.GameID); err != nil {
		return
	}

	c.startCountdown(p.GameID, 0)
}

// HandleSubmitWord records a word; the round resolves once both are in
func (c *Coordinator) HandleSubmitWord(ctx context.Context, clientID model.PlayerID, p model.SubmitWordPayload) {
	result, err := c.store.RecordWord(ctx, p.GameID, clientID, p.Word)
	if err != nil || result == nil {
		return
	}

	c.sink.Broadcast(ctx, p.GameID, model.EventRoundResults, model.RoundResultsPayload{
		Player1Word:  result.Player1Word,
		Player2Word:  result.Player2Word,
		IsMatch:      result.IsMatch,
		Player1Score: result.Player1Score,
		Player2Score: result.Player2Score,
	}, "")
}

// HandlePlayAgainChoice records a rematch vote and branches on the
// aggregate outcome
func (c *Coordinator) HandlePlayAgainChoice(ctx context.Context, clientID model.PlayerID, p model.PlayAgainPayload) {
	outcome := c.store.RecordPlayAgain(ctx, p.GameID, clientID, p.PlayAgain)

	c.logger.Info("play again choice",
		slog.String("session_id", string(p.GameID)),
		slog.String("client_id", string(clientID)),
		slog.Bool("play_again", p.PlayAgain),
		slog.String("outcome", outcome.String()),
	)

	switch outcome {
	case model.PlayAgainNotFound:
		c.sink.Send(ctx, clientID, model.EventGameError, model.GameErrorPayload{
			Message: "Game not found",
		})

	case model.PlayAgainNotParticipant:
		c.sink.Send(ctx, clientID, model.EventGameError, model.GameErrorPayload{
			Message: "You are not in this game",
		})

	case model.PlayAgainDeclined, model.PlayAgainMismatch:
		c.sink.Broadcast(ctx, p.GameID, model.EventGameEnded, model.GameEndedPayload{
			Message: "Game ended - a player chose not to continue",
		}, "")

	case model.PlayAgainStillWaiting:
		c.sink.Send(ctx, clientID, model.EventWaitingForOther, struct{}{})

	case model.PlayAgainBothAccepted:
		updated, err := c.store.Get(ctx, p.GameID)
		if err != nil {
			return
		}
		c.sink.Broadcast(ctx, p.GameID, model.EventNewGameStarting, model.NewGameStartingPayload{
			Player1:      updated.Slot1.DisplayName,
			Player2:      updated.Slot2.DisplayName,
			Player1Score: updated.Slot1.Score,
			Player2Score: updated.Slot2.Score,
			Round:        updated.Round,
		}, "")
		c.startCountdown(p.GameID, c.cfg.RematchGrace)
	}
}

// HandleLeaveGame removes the player, then tells whoever is left. A host
// leaving deletes the session first, so the broadcast resolves nobody and
// the departure is silent, matching disconnect-free room teardown.
func (c *Coordinator) HandleLeaveGame(ctx context.Context, clientID model.PlayerID, p model.LeaveGamePayload) {
	if p.GameID == "" {
		return
	}

	_ = c.store.RemovePlayer(ctx, p.GameID, clientID)
	c.sink.Broadcast(ctx, p.GameID, model.EventPlayerDisconnected, struct{}{}, clientID)
}

// OnDisconnect cleans up every session the client occupied. Unlike an
// explicit leave, the remaining player is notified before removal so the
// notification still goes out when the departing client was the host.
func (c *Coordinator) OnDisconnect(ctx context.Context, clientID model.PlayerID) {
	ids, err := c.store.FindSessionsFor(ctx, clientID)
	if err != nil {
		c.logger.Warn("disconnect cleanup failed",
			slog.String("client_id", string(clientID)),
			slog.String("error", err.Error()),
		)
		return
	}

	for _, id := range ids {
		c.sink.Broadcast(ctx, id, model.EventPlayerDisconnected, struct{}{}, clientID)
		_ = c.store.RemovePlayer(ctx, id, clientID)
	}
}

// startCountdown launches the countdown sequence on its own goroutine.
// The sequence outlives the triggering message and runs to completion even
// if a player disconnects mid-flight; sends to departed clients are
// dropped by the sink.
func (c *Coordinator) startCountdown(sessionID model.SessionID, delay time.Duration) {
	go c.runCountdown(context.Background(), sessionID, delay)
}

func (c *Coordinator) runCountdown(ctx context.Context, sessionID model.SessionID, delay time.Duration) {
	if delay > 0 {
		if err := c.clock.Sleep(ctx, delay); err != nil {
			return
		}
	}

	c.sink.Broadcast(ctx, sessionID, model.EventCountdown, model.CountdownPayload{Count: "Ready?"}, "")

	for count := 3; count > 0; count-- {
		if err := c.clock.Sleep(ctx, c.cfg.CountdownTick); err != nil {
			return
		}
		c.sink.Broadcast(ctx, sessionID, model.EventCountdown, model.CountdownPayload{
			Count: strconv.Itoa(count),
		}, "")
	}

	if err := c.clock.Sleep(ctx, c.cfg.CountdownTick); err != nil {
		return
	}
	c.sink.Broadcast(ctx, sessionID, model.EventCountdown, model.CountdownPayload{Count: "GO!"}, "")

	if err := c.clock.Sleep(ctx, c.cfg.GoGrace); err != nil {
		return
	}
	c.sink.Broadcast(ctx, sessionID, model.EventRoundStart, struct{}{}, "")
}

// decode unmarshals a payload, treating an absent payload as the zero
// value and a malformed one as a dropped event
func decode(raw json.RawMessage, dst any) bool {
	if len(raw) == 0 {
		return true
	}
	return json.Unmarshal(raw, dst) == nil
}
