package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/al-chris/1-2-3-game/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.SessionTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) sampleSession(id string) *model.Session {
	return &model.Session{
		ID:     model.SessionID(id),
		Status: model.SessionActive,
		Slot1: model.Slot{
			PlayerID:    "p1",
			DisplayName: "Alice",
			Score:       2,
		},
		Slot2: model.Slot{
			PlayerID:    "p2",
			DisplayName: "Bob",
			Score:       2,
		},
		Round:     1,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *StorageSuite) TestSaveAndGetSession() {
	session := s.sampleSession("ABC123")

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.Equal(session.ID, retrieved.ID)
	s.Equal(session.Status, retrieved.Status)
	s.Equal(2, retrieved.Slot1.Score)
	s.Equal("Bob", retrieved.Slot2.DisplayName)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "NOPE")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *StorageSuite) TestSessionHasTTL() {
	_ = s.storage.SaveSession(s.ctx, s.sampleSession("ABC123"))

	ttl := s.mini.TTL(sessionKey("ABC123"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestDeleteSession() {
	_ = s.storage.SaveSession(s.ctx, s.sampleSession("ABC123"))

	err := s.storage.DeleteSession(s.ctx, "ABC123")
	s.Require().NoError(err)

	_, err = s.storage.GetSession(s.ctx, "ABC123")
	s.ErrorIs(err, model.ErrSessionNotFound)

	// Index entry is gone too
	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(sessions)
}

func (s *StorageSuite) TestSessionExists() {
	_ = s.storage.SaveSession(s.ctx, s.sampleSession("ABC123"))

	exists, err := s.storage.SessionExists(s.ctx, "ABC123")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.storage.SessionExists(s.ctx, "NOPE")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestListSessions() {
	_ = s.storage.SaveSession(s.ctx, s.sampleSession("AAA111"))
	_ = s.storage.SaveSession(s.ctx, s.sampleSession("BBB222"))

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Len(sessions, 2)
}

func (s *StorageSuite) TestListSkipsExpiredSessions() {
	_ = s.storage.SaveSession(s.ctx, s.sampleSession("AAA111"))
	_ = s.storage.SaveSession(s.ctx, s.sampleSession("BBB222"))

	// Expire one value while its index entry remains
	s.mini.FastForward(2 * time.Hour)
	_ = s.storage.SaveSession(s.ctx, s.sampleSession("BBB222"))

	sessions, err := s.storage.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(sessions, 1)
	s.Equal(model.SessionID("BBB222"), sessions[0].ID)
}
