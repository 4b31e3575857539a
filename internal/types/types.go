package types

import "github.com/Rascal55/MusicQuizApp/internal/game"

// Client -> server message types.
const (
	CmdHostJoin      = "host-join-game"
	CmdPlayerJoin    = "player-join-game"
	CmdPlayerLeave   = "player-leave-game"
	CmdHostCancel    = "host-cancel-game"
	CmdStartGame     = "start-game"
	CmdGetGameStatus = "get-game-status"
)

// Server -> client event types.
const (
	EvtJoinSuccess     = "join-success"
	EvtJoinError       = "join-error"
	EvtPlayersUpdated  = "players-updated"
	EvtGameCancelled   = "game-cancelled"
	EvtGameStarting    = "game-starting"
	EvtCountdownUpdate = "countdown-update"
	EvtGameStarted     = "game-started"
	EvtGameStatus      = "game-status"
	EvtError           = "error"
)

type ClientMessage struct {
	Type       string `json:"type"`
	JoinCode   string `json:"joinCode,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	PlayerID   string `json:"playerId,omitempty"`
}

// ServerMessage is the single outbound envelope; which fields are set
// depends on Type. Countdown and PlayerCount are pointers so a zero
// value still serializes.
type ServerMessage struct {
	Type        string        `json:"type"`
	Message     string        `json:"message,omitempty"`
	GameID      string        `json:"gameId,omitempty"`
	JoinCode    string        `json:"joinCode,omitempty"`
	PlayerID    string        `json:"playerId,omitempty"`
	PlayerName  string        `json:"playerName,omitempty"`
	Players     []game.Player `json:"players,omitempty"`
	PlayerCount *int          `json:"playerCount,omitempty"`
	MaxPlayers  int           `json:"maxPlayers,omitempty"`
	Status      game.Status   `json:"status,omitempty"`
	Countdown   *int          `json:"countdown,omitempty"`
}

func Int(n int) *int { return &n }
