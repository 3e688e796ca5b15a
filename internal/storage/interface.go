package storage

import (
	"context"

	"github.com/al-chris/1-2-3-game/internal/model"
)

// Storage defines the interface for session persistence
type Storage interface {
	// SaveSession inserts or replaces a session
	SaveSession(ctx context.Context, session *model.Session) error

	// GetSession returns the session with the given id, or
	// model.ErrSessionNotFound
	GetSession(ctx context.Context, id model.SessionID) (*model.Session, error)

	// DeleteSession removes a session; deleting an absent session is a no-op
	DeleteSession(ctx context.Context, id model.SessionID) error

	// SessionExists reports whether a session with the given id exists
	SessionExists(ctx context.Context, id model.SessionID) (bool, error)

	// ListSessions returns every stored session in no particular order
	ListSessions(ctx context.Context) ([]*model.Session, error)
}
