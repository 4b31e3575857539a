package game

import "errors"

var ErrMissingConfig = errors.New("missing required game configuration")
var ErrBadJoinCode = errors.New("invalid join code")
var ErrCodeTaken = errors.New("game with this code already exists")
var ErrNotFound = errors.New("game not found")
var ErrNotHost = errors.New("only the host can do that")
var ErrGameFull = errors.New("game is full")
var ErrNameTaken = errors.New("name already taken")
var ErrBadName = errors.New("player name must be 1-20 characters")
var ErrAlreadyJoined = errors.New("already in the game")
var ErrNotEnoughPlayers = errors.New("need at least 2 players")
var ErrAlreadyStarted = errors.New("game already started")

// Message maps an admission/lifecycle error to the text shown to
// clients. Internal details never leak; unknown errors get a generic
// line.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "Game not found"
	case errors.Is(err, ErrGameFull):
		return "Game is full"
	case errors.Is(err, ErrNameTaken):
		return "Name already taken"
	case errors.Is(err, ErrBadName):
		return "Player name must be 1-20 characters"
	case errors.Is(err, ErrAlreadyJoined):
		return "Already in the game"
	case errors.Is(err, ErrNotEnoughPlayers):
		return "Need at least 2 players to start"
	case errors.Is(err, ErrAlreadyStarted):
		return "Game already started"
	case errors.Is(err, ErrNotHost):
		return "Only the host can do that"
	case errors.Is(err, ErrMissingConfig):
		return "Missing required game configuration"
	case errors.Is(err, ErrBadJoinCode):
		return "Invalid join code"
	case errors.Is(err, ErrCodeTaken):
		return "Game with this code already exists"
	default:
		return "Something went wrong"
	}
}
