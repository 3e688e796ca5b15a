package model

// PlayAgainChoice is a player's rematch vote. The zero value means the
// player has not chosen yet.
type PlayAgainChoice int

const (
	PlayAgainUnset PlayAgainChoice = iota
	PlayAgainYes
	PlayAgainNo
)

// PlayAgainOutcome is the result of recording a rematch vote. The store
// returns exactly one of these so the coordinator can match exhaustively.
type PlayAgainOutcome int

const (
	// PlayAgainNotFound means the session does not exist
	PlayAgainNotFound PlayAgainOutcome = iota
	// PlayAgainNotParticipant means the voter occupies neither slot
	PlayAgainNotParticipant
	// PlayAgainDeclined means this vote was a decline; the room ends
	// immediately regardless of the other player's state
	PlayAgainDeclined
	// PlayAgainStillWaiting means the vote was recorded and the other
	// player has not voted yet
	PlayAgainStillWaiting
	// PlayAgainBothAccepted means both players voted yes; the session has
	// been reset for a fresh match as part of the same call
	PlayAgainBothAccepted
	// PlayAgainMismatch means both votes are in and at least one is no,
	// but the no was recorded on an earlier call
	PlayAgainMismatch
)

func (o PlayAgainOutcome) String() string {
	switch o {
	case PlayAgainNotFound:
		return "not_found"
	case PlayAgainNotParticipant:
		return "not_a_participant"
	case PlayAgainDeclined:
		return "declined"
	case PlayAgainStillWaiting:
		return "still_waiting"
	case PlayAgainBothAccepted:
		return "both_accepted"
	case PlayAgainMismatch:
		return "mismatch"
	}
	return "unknown"
}
