package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/al-chris/1-2-3-game/internal/dependencies/clock"
	"github.com/al-chris/1-2-3-game/internal/model"
	"github.com/al-chris/1-2-3-game/internal/storage"
)

// Store owns every session and serializes all session mutation. Session
// counts are small, so a single store-level mutex guards each
// read-modify-write sequence rather than per-session locks.
type Store struct {
	mu      sync.Mutex
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewStore creates a new session store
func NewStore(storage storage.Storage, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		storage: storage,
		clock:   clk,
		logger:  logger.With(slog.String("component", "session-store")),
	}
}

// RoundResult describes a resolved round
type RoundResult struct {
	Player1Word  string
	Player2Word  string
	IsMatch      bool
	Player1Score int
	Player2Score int
}

// Create allocates a new session with the creator in slot 1. It fails with
// model.ErrSessionExists if the id is already taken; ids are never
// overwritten.
func (s *Store) Create(ctx context.Context, id model.SessionID, playerID model.PlayerID, displayName string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.storage.SessionExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrSessionExists
	}

	now := s.clock.Now()
	session := &model.Session{
		ID:     id,
		Status: model.SessionWaiting,
		Slot1: model.Slot{
			PlayerID:    playerID,
			DisplayName: displayName,
		},
		Round:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session created",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)),
	)

	return session, nil
}

// Get retrieves a session by id
func (s *Store) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return s.storage.GetSession(ctx, id)
}

// Join occupies slot 2 and activates the session. It fails with
// model.ErrSessionNotFound or model.ErrSessionFull.
func (s *Store) Join(ctx context.Context, id model.SessionID, playerID model.PlayerID, displayName string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Slot2.Occupied() {
		return nil, model.ErrSessionFull
	}

	session.Slot2 = model.Slot{
		PlayerID:    playerID,
		DisplayName: displayName,
	}
	session.Status = model.SessionActive
	session.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("player joined session",
		slog.String("session_id", string(id)),
		slog.String("player_id", string(playerID)),
	)

	return session, nil
}

// MarkReady flags a player as ready for the next round and reports whether
// both players are now ready. Unknown players and sessions report errors.
func (s *Store) MarkReady(ctx context.Context, id model.SessionID, playerID model.PlayerID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return false, err
	}

	slot := session.SlotFor(playerID)
	if slot == nil {
		return false, model.ErrNotParticipant
	}

	slot.Ready = true
	session.UpdatedAt = s.clock.Now()

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return false, err
	}

	return session.BothReady(), nil
}

// RecordWord stores a player's submission for the current round. When both
// words are in, the round resolves in the same call: words are compared
// case-insensitively (whitespace is not trimmed), scores update on a match,
// both words are cleared, and the result is returned. A nil result means
// the round is still waiting on the other player. Empty submissions are
// ignored.
func (s *Store) RecordWord(ctx context.Context, id model.SessionID, playerID model.PlayerID, word string) (*RoundResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	slot := session.SlotFor(playerID)
	if slot == nil {
		return nil, model.ErrNotParticipant
	}

	slot.Word = word
	session.UpdatedAt = s.clock.Now()

	if !session.BothSubmitted() {
		if err := s.storage.SaveSession(ctx, session); err != nil {
			return nil, err
		}
		return nil, nil
	}

	// Both words present: resolve exactly once
	word1, word2 := session.Slot1.Word, session.Slot2.Word
	isMatch := strings.ToLower(word1) == strings.ToLower(word2)
	if isMatch {
		session.Slot1.Score++
		session.Slot2.Score++
		session.MatchFound = true
	}
	session.Slot1.Word = ""
	session.Slot2.Word = ""

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("round resolved",
		slog.String("session_id", string(id)),
		slog.Bool("is_match", isMatch),
		slog.Int("player1_score", session.Slot1.Score),
		slog.Int("player2_score", session.Slot2.Score),
	)

	return &RoundResult{
		Player1Word:  word1,
		Player2Word:  word2,
		IsMatch:      isMatch,
		Player1Score: session.Slot1.Score,
		Player2Score: session.Slot2.Score,
	}, nil
}

// ResetRound clears both ready flags and both words. Scores, round number
// and play-again state are untouched.
func (s *Store) ResetRound(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return err
	}

	clearRound(session)
	session.UpdatedAt = s.clock.Now()
	return s.storage.SaveSession(ctx, session)
}

// ResetForNewGame prepares a confirmed rematch: round state, match flag and
// play-again votes are cleared and the round number returns to 1. Scores
// carry over across rematches.
func (s *Store) ResetForNewGame(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return err
	}

	resetForNewGame(session)
	session.UpdatedAt = s.clock.Now()
	return s.storage.SaveSession(ctx, session)
}

// RecordPlayAgain records a rematch vote and aggregates it with the other
// player's. A decline ends the room the instant it is recorded, even when
// it is the second vote; a yes that completes the pair either starts a
// fresh match (both yes) or surfaces the earlier decline as a mismatch.
func (s *Store) RecordPlayAgain(ctx context.Context, id model.SessionID, playerID model.PlayerID, wantsToContinue bool) model.PlayAgainOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return model.PlayAgainNotFound
	}

	slot := session.SlotFor(playerID)
	if slot == nil {
		return model.PlayAgainNotParticipant
	}

	if !wantsToContinue {
		slot.PlayAgain = model.PlayAgainNo
		session.Status = model.SessionEnded
		session.UpdatedAt = s.clock.Now()
		if err := s.storage.SaveSession(ctx, session); err != nil {
			return model.PlayAgainNotFound
		}
		s.logger.Info("rematch declined",
			slog.String("session_id", string(id)),
			slog.String("player_id", string(playerID)),
		)
		return model.PlayAgainDeclined
	}

	slot.PlayAgain = model.PlayAgainYes
	other := session.OtherSlot(playerID)

	switch {
	case other == nil || other.PlayAgain == model.PlayAgainUnset:
		session.UpdatedAt = s.clock.Now()
		if err := s.storage.SaveSession(ctx, session); err != nil {
			return model.PlayAgainNotFound
		}
		return model.PlayAgainStillWaiting

	case other.PlayAgain == model.PlayAgainYes:
		resetForNewGame(session)
		session.UpdatedAt = s.clock.Now()
		if err := s.storage.SaveSession(ctx, session); err != nil {
			return model.PlayAgainNotFound
		}
		s.logger.Info("rematch accepted",
			slog.String("session_id", string(id)),
		)
		return model.PlayAgainBothAccepted

	default:
		// The other player declined on an earlier call
		session.Status = model.SessionEnded
		session.UpdatedAt = s.clock.Now()
		if err := s.storage.SaveSession(ctx, session); err != nil {
			return model.PlayAgainNotFound
		}
		return model.PlayAgainMismatch
	}
}

// RemovePlayer takes a player out of a session. The host leaving destroys
// the whole session; slot 2 leaving reverts the session to waiting with
// slot 1's score intact.
func (s *Store) RemovePlayer(ctx context.Context, id model.SessionID, playerID model.PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case session.Slot1.PlayerID == playerID:
		if err := s.storage.DeleteSession(ctx, id); err != nil {
			return err
		}
		s.logger.Info("host left, session deleted",
			slog.String("session_id", string(id)),
		)
		return nil

	case session.Slot2.PlayerID == playerID:
		session.Slot2 = model.Slot{}
		session.Status = model.SessionWaiting
		session.UpdatedAt = s.clock.Now()
		if err := s.storage.SaveSession(ctx, session); err != nil {
			return err
		}
		s.logger.Info("player left session",
			slog.String("session_id", string(id)),
			slog.String("player_id", string(playerID)),
		)
		return nil
	}

	return model.ErrNotParticipant
}

// FindSessionsFor returns the id of every session the player occupies.
// Used on disconnect to clean up whatever rooms the client was in.
func (s *Store) FindSessionsFor(ctx context.Context, playerID model.PlayerID) ([]model.SessionID, error) {
	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	var ids []model.SessionID
	for _, session := range sessions {
		if session.HasParticipant(playerID) {
			ids = append(ids, session.ID)
		}
	}
	return ids, nil
}

// Occupants returns the players currently in a session, or nil if the
// session is gone. Broadcast delivery uses this to resolve recipients.
func (s *Store) Occupants(ctx context.Context, id model.SessionID) []model.PlayerID {
	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return nil
	}
	return session.Occupants()
}

// CleanupEnded removes every ended session and returns how many were
// removed. Scheduling is the caller's concern.
func (s *Store) CleanupEnded(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, session := range sessions {
		if session.Status != model.SessionEnded {
			continue
		}
		if err := s.storage.DeleteSession(ctx, session.ID); err != nil {
			return removed, err
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info("ended sessions cleaned up", slog.Int("removed", removed))
	}
	return removed, nil
}

// IsNotFound reports whether err indicates a missing session
func IsNotFound(err error) bool {
	return errors.Is(err, model.ErrSessionNotFound)
}

func clearRound(session *model.Session) {
	session.Slot1.Ready = false
	session.Slot2.Ready = false
	session.Slot1.Word = ""
	session.Slot2.Word = ""
}

func resetForNewGame(session *model.Session) {
	clearRound(session)
	session.MatchFound = false
	session.Slot1.PlayAgain = model.PlayAgainUnset
	session.Slot2.PlayAgain = model.PlayAgainUnset
	session.Round = 1
}
