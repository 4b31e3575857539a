package game

import (
	"strings"
	"time"
)

// AddPlayer admits one player. Checks run in admission order: name
// shape, capacity, duplicate connection, duplicate name.
func (s *Session) AddPlayer(connID, name string, now time.Time) (Player, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 20 {
		return Player{}, ErrBadName
	}
	if len(s.Players) >= s.Settings.MaxPlayers {
		return Player{}, ErrGameFull
	}
	for _, p := range s.Players {
		if p.ID == connID {
			return Player{}, ErrAlreadyJoined
		}
		if strings.EqualFold(p.Name, name) {
			return Player{}, ErrNameTaken
		}
	}

	p := Player{ID: connID, Name: name, Score: 0, JoinedAt: now}
	s.Players = append(s.Players, p)
	return p, nil
}

// RemovePlayer removes the player bound to connID, preserving join order.
func (s *Session) RemovePlayer(connID string) (Player, bool) {
	for i, p := range s.Players {
		if p.ID == connID {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			return p, true
		}
	}
	return Player{}, false
}

func (s *Session) FindPlayer(connID string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == connID {
			return p, true
		}
	}
	return Player{}, false
}

// CanStart gates the lobby -> starting transition.
func (s *Session) CanStart() error {
	if s.Status != StatusLobby {
		return ErrAlreadyStarted
	}
	if len(s.Players) < 2 {
		return ErrNotEnoughPlayers
	}
	return nil
}

func (s *Session) HasHost() bool {
	return s.HostConnID != ""
}
