package game

import (
	"strings"
	"time"
)

type Status string

const (
	StatusLobby    Status = "lobby"
	StatusStarting Status = "starting"
	StatusActive   Status = "active"
)

type Role string

const (
	RoleHost   Role = "host"
	RolePlayer Role = "player"
)

// Settings is configured by the host UI. Only MaxPlayers is read by the
// server; the rest rides along for the clients.
type Settings struct {
	MaxPlayers      int    `json:"maxPlayers"`
	MusicVolume     int    `json:"musicVolume,omitempty"`
	AudioOutput     string `json:"audioOutput,omitempty"`
	LiveLeaderboard bool   `json:"liveLeaderboard,omitempty"`
}

// Round is opaque payload as far as the server is concerned.
type Round struct {
	RoundNumber      int            `json:"roundNumber"`
	RoundID          string         `json:"roundId,omitempty"`
	RoundName        string         `json:"roundName"`
	RoundDescription string         `json:"roundDescription,omitempty"`
	Settings         map[string]any `json:"settings,omitempty"`
}

type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Session struct {
	JoinCode   string
	Settings   Settings
	Rounds     []Round
	Status     Status
	Players    []Player
	HostConnID string
	CreatedAt  time.Time
}

// NormalizeCode uppercases a join code so lookups are case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether a normalized code is 6 alphanumeric chars.
// Code generation (and its reduced alphabet) lives client-side.
func ValidCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

func NewSession(code string, settings Settings, rounds []Round, now time.Time) (Session, error) {
	code = NormalizeCode(code)
	if code == "" || settings.MaxPlayers <= 0 || len(rounds) == 0 {
		return Session{}, ErrMissingConfig
	}
	if !ValidCode(code) {
		return Session{}, ErrBadJoinCode
	}
	return Session{
		JoinCode:  code,
		Settings:  settings,
		Rounds:    rounds,
		Status:    StatusLobby,
		Players:   []Player{},
		CreatedAt: now,
	}, nil
}
