package redis

import (
	"fmt"

	"github.com/al-chris/1-2-3-game/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "123game"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionIndexKey returns the Redis key for the SET of all session ids
func sessionIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}
