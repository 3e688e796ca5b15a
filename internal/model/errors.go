package model

import "errors"

// Common errors used across the application
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionFull     = errors.New("session already has two players")
	ErrNotParticipant  = errors.New("player is not in this session")
)
