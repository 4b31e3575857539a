package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(maxPlayers int) Settings {
	return Settings{MaxPlayers: maxPlayers, AudioOutput: "host", LiveLeaderboard: true}
}

func testRounds() []Round {
	return []Round{{RoundNumber: 1, RoundID: "intro-drop", RoundName: "Intro Drop"}}
}

func TestNewSession_Validation(t *testing.T) {
	now := time.Now()

	_, err := NewSession("", testSettings(4), testRounds(), now)
	assert.ErrorIs(t, err, ErrMissingConfig)

	_, err = NewSession("ABC123", Settings{}, testRounds(), now)
	assert.ErrorIs(t, err, ErrMissingConfig)

	_, err = NewSession("ABC123", testSettings(4), nil, now)
	assert.ErrorIs(t, err, ErrMissingConfig)

	_, err = NewSession("AB12", testSettings(4), testRounds(), now)
	assert.ErrorIs(t, err, ErrBadJoinCode)

	_, err = NewSession("AB-123", testSettings(4), testRounds(), now)
	assert.ErrorIs(t, err, ErrBadJoinCode)

	s, err := NewSession("abc123", testSettings(4), testRounds(), now)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", s.JoinCode, "codes normalize to uppercase")
	assert.Equal(t, StatusLobby, s.Status)
	assert.Empty(t, s.Players)
	assert.Equal(t, now, s.CreatedAt)
}

func TestAddPlayer_AdmissionRules(t *testing.T) {
	s, err := NewSession("ABC123", testSettings(4), testRounds(), time.Now())
	require.NoError(t, err)

	now := time.Now()

	p, err := s.AddPlayer("c1", "  Alice  ", now)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name, "names are trimmed")
	assert.Equal(t, "c1", p.ID)
	assert.Zero(t, p.Score)

	_, err = s.AddPlayer("c2", "alice", now)
	assert.ErrorIs(t, err, ErrNameTaken, "name uniqueness is case-insensitive")

	_, err = s.AddPlayer("c1", "Other", now)
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = s.AddPlayer("c3", "", now)
	assert.ErrorIs(t, err, ErrBadName)
	_, err = s.AddPlayer("c3", "   ", now)
	assert.ErrorIs(t, err, ErrBadName)
	_, err = s.AddPlayer("c3", "abcdefghijklmnopqrstu", now)
	assert.ErrorIs(t, err, ErrBadName)

	for i, name := range []string{"Bob", "Carl", "Dee"} {
		_, err = s.AddPlayer(string(rune('d'+i)), name, now)
		require.NoError(t, err)
	}
	require.Len(t, s.Players, 4)

	_, err = s.AddPlayer("c9", "Eve", now)
	assert.ErrorIs(t, err, ErrGameFull)
	assert.Len(t, s.Players, 4, "rejected joins leave the roster alone")
}

func TestRemovePlayer_PreservesJoinOrder(t *testing.T) {
	s, err := NewSession("ABC123", testSettings(8), testRounds(), time.Now())
	require.NoError(t, err)

	now := time.Now()
	for i, name := range []string{"Alice", "Bob", "Carl"} {
		_, err = s.AddPlayer(string(rune('a'+i)), name, now)
		require.NoError(t, err)
	}

	p, ok := s.RemovePlayer("b")
	require.True(t, ok)
	assert.Equal(t, "Bob", p.Name)

	names := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Alice", "Carl"}, names)

	_, ok = s.RemovePlayer("b")
	assert.False(t, ok, "second removal is a no-op")

	// freed seat and name are reusable
	_, err = s.AddPlayer("d", "bob", now)
	assert.NoError(t, err)
}

func TestCanStart(t *testing.T) {
	s, err := NewSession("ABC123", testSettings(8), testRounds(), time.Now())
	require.NoError(t, err)

	assert.ErrorIs(t, s.CanStart(), ErrNotEnoughPlayers)

	_, err = s.AddPlayer("a", "Alice", time.Now())
	require.NoError(t, err)
	assert.ErrorIs(t, s.CanStart(), ErrNotEnoughPlayers)

	_, err = s.AddPlayer("b", "Bob", time.Now())
	require.NoError(t, err)
	assert.NoError(t, s.CanStart())

	s.Status = StatusStarting
	assert.ErrorIs(t, s.CanStart(), ErrAlreadyStarted)
	s.Status = StatusActive
	assert.ErrorIs(t, s.CanStart(), ErrAlreadyStarted)
}

func TestValidCode(t *testing.T) {
	assert.True(t, ValidCode("ABC123"))
	assert.True(t, ValidCode("QUIZ42"))
	assert.False(t, ValidCode("abc123"), "ValidCode expects normalized input")
	assert.False(t, ValidCode("ABC12"))
	assert.False(t, ValidCode("ABC1234"))
	assert.False(t, ValidCode("ABC 12"))
}
