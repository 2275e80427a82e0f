// Package service is the high-level API over the room, consumed by the
// HTTP layer and by embedders that want to observe or poke the chat
// without speaking the wire protocol.
package service

import (
	"fmt"

	"github.com/roomcast/roomcast/src/room"
	"github.com/roomcast/roomcast/src/types"
	"github.com/rs/zerolog"
)

// Service exposes room information and server-originated notices.
type Service struct {
	room   *room.Room
	logger zerolog.Logger
}

// New creates a service backed by the given room.
func New(r *room.Room, logger zerolog.Logger) *Service {
	return &Service{room: r, logger: logger}
}

// Room returns the underlying room.
func (s *Service) Room() *room.Room { return s.room }

// Info summarizes the room for the info endpoint.
type Info struct {
	Sessions int      `json:"sessions"`
	Users    int      `json:"users"`
	Messages int      `json:"messages"`
	Typing   []string `json:"typing"`
}

// Info returns current room counters.
func (s *Service) Info() Info {
	snap := s.room.Snapshot()
	return Info{
		Sessions: s.room.SessionCount(),
		Users:    len(snap.Users),
		Messages: len(snap.Messages),
		Typing:   s.room.TypingUsers(),
	}
}

// Snapshot returns the latest room snapshot.
func (s *Service) Snapshot() types.RoomState {
	return s.room.Snapshot()
}

// Sessions returns metadata for all connected sessions.
func (s *Service) Sessions() []types.SessionInfo {
	return s.room.Sessions()
}

// SessionInfo returns metadata for one session, or an error.
func (s *Service) SessionInfo(id string) (*types.SessionInfo, error) {
	info := s.room.SessionInfo(id)
	if info == nil {
		return nil, fmt.Errorf("session %s not found", id)
	}
	return info, nil
}

// Announce posts a server notice into the room and broadcasts it.
func (s *Service) Announce(text string) error {
	if err := s.room.Announce(text); err != nil {
		return err
	}
	s.logger.Info().Str("text", text).Msg("server announcement")
	return nil
}
