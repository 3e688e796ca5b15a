package model

import "time"

// SessionID is the short opaque room code players share to pair up
type SessionID string

// PlayerID is an opaque identifier assigned per connected client
type PlayerID string

// SessionStatus represents the current phase of a session
type SessionStatus string

const (
	SessionWaiting SessionStatus = "waiting" // Slot 2 unoccupied
	SessionActive  SessionStatus = "active"  // Both slots occupied
	SessionEnded   SessionStatus = "ended"   // Terminal; eligible for cleanup
)

// Slot is one of the two player positions in a session
type Slot struct {
	PlayerID    PlayerID
	DisplayName string
	Score       int
	Ready       bool
	Word        string // Empty means no word submitted this round
	PlayAgain   PlayAgainChoice
}

// Occupied reports whether a player holds this slot
func (s *Slot) Occupied() bool {
	return s.PlayerID != ""
}

// Session is one game room: two slots playing rounds until a rematch is
// declined or the host leaves
type Session struct {
	ID     SessionID
	Status SessionStatus

	// Slot1 is the room creator; the session is destroyed when they leave
	Slot1 Slot
	Slot2 Slot

	Round      int
	MatchFound bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotFor returns the slot occupied by the given player, or nil if the
// player is in neither slot
func (s *Session) SlotFor(playerID PlayerID) *Slot {
	if s.Slot1.PlayerID == playerID && s.Slot1.Occupied() {
		return &s.Slot1
	}
	if s.Slot2.PlayerID == playerID && s.Slot2.Occupied() {
		return &s.Slot2
	}
	return nil
}

// OtherSlot returns the slot opposite the one held by playerID, or nil if
// the player is in neither slot
func (s *Session) OtherSlot(playerID PlayerID) *Slot {
	switch {
	case s.Slot1.PlayerID == playerID:
		return &s.Slot2
	case s.Slot2.PlayerID == playerID:
		return &s.Slot1
	}
	return nil
}

// HasParticipant reports whether the player occupies either slot
func (s *Session) HasParticipant(playerID PlayerID) bool {
	return s.SlotFor(playerID) != nil
}

// Occupants returns the players currently in the session, slot1 first
func (s *Session) Occupants() []PlayerID {
	var ids []PlayerID
	if s.Slot1.Occupied() {
		ids = append(ids, s.Slot1.PlayerID)
	}
	if s.Slot2.Occupied() {
		ids = append(ids, s.Slot2.PlayerID)
	}
	return ids
}

// BothReady reports whether both occupants have flagged ready this round
func (s *Session) BothReady() bool {
	return s.Slot1.Ready && s.Slot2.Ready
}

// BothSubmitted reports whether both occupants have submitted a word this
// round. An empty string does not count as a submission.
func (s *Session) BothSubmitted() bool {
	return s.Slot1.Word != "" && s.Slot2.Word != ""
}
