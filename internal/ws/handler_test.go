package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/Rascal55/MusicQuizApp/internal/game"
	"github.com/Rascal55/MusicQuizApp/internal/hub"
	"github.com/Rascal55/MusicQuizApp/internal/types"
)

func newTestStack(t *testing.T) (*hub.Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := hub.NewHub(ctx, hub.Options{Tick: 5 * time.Millisecond, Logger: zap.NewNop()})
	srv := httptest.NewServer(Handler(h, nil, zap.NewNop()))
	t.Cleanup(srv.Close)
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, m types.ClientMessage) {
	t.Helper()
	payload, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recvMsg(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m types.ServerMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return m
}

func expectType(t *testing.T, conn *websocket.Conn, want string) types.ServerMessage {
	t.Helper()
	m := recvMsg(t, conn)
	if m.Type != want {
		t.Fatalf("want %q, got %+v", want, m)
	}
	return m
}

func TestHandler_FullGameFlow(t *testing.T) {
	h, wsURL := newTestStack(t)

	if _, err := h.Create("QUIZ42", game.Settings{MaxPlayers: 4},
		[]game.Round{{RoundNumber: 1, RoundName: "Intro Drop"}}); err != nil {
		t.Fatalf("create: %v", err)
	}

	host := dial(t, wsURL)
	sendMsg(t, host, types.ClientMessage{Type: types.CmdHostJoin, JoinCode: "quiz42"})
	expectType(t, host, types.EvtPlayersUpdated) // empty roster snapshot

	alice := dial(t, wsURL)
	sendMsg(t, alice, types.ClientMessage{Type: types.CmdPlayerJoin, JoinCode: "QUIZ42", PlayerName: "Alice"})
	ack := expectType(t, alice, types.EvtJoinSuccess)
	if ack.PlayerName != "Alice" || ack.PlayerID == "" {
		t.Fatalf("bad ack: %+v", ack)
	}
	roster := expectType(t, alice, types.EvtPlayersUpdated)
	if roster.PlayerCount == nil || *roster.PlayerCount != 1 {
		t.Fatalf("joiner must see the roster including itself: %+v", roster)
	}
	expectType(t, host, types.EvtPlayersUpdated)

	bob := dial(t, wsURL)
	sendMsg(t, bob, types.ClientMessage{Type: types.CmdPlayerJoin, JoinCode: "QUIZ42", PlayerName: "Bob"})
	expectType(t, bob, types.EvtJoinSuccess)
	expectType(t, bob, types.EvtPlayersUpdated)
	expectType(t, alice, types.EvtPlayersUpdated)
	expectType(t, host, types.EvtPlayersUpdated)

	// duplicate name rejected privately, roster unaffected
	eve := dial(t, wsURL)
	sendMsg(t, eve, types.ClientMessage{Type: types.CmdPlayerJoin, JoinCode: "QUIZ42", PlayerName: "alice"})
	rej := expectType(t, eve, types.EvtJoinError)
	if rej.Message != "Name already taken" {
		t.Fatalf("bad rejection: %+v", rej)
	}

	sendMsg(t, host, types.ClientMessage{Type: types.CmdStartGame})
	starting := expectType(t, alice, types.EvtGameStarting)
	if starting.Countdown == nil || *starting.Countdown != 3 {
		t.Fatalf("bad game-starting: %+v", starting)
	}
	for want := 2; want >= 0; want-- {
		tick := expectType(t, alice, types.EvtCountdownUpdate)
		if tick.Countdown == nil || *tick.Countdown != want {
			t.Fatalf("want countdown %d, got %+v", want, tick)
		}
	}
	expectType(t, alice, types.EvtGameStarted)

	sendMsg(t, bob, types.ClientMessage{Type: types.CmdGetGameStatus})
	status := expectType(t, bob, types.EvtGameStarting) // drain bob's countdown traffic
	_ = status
	for i := 0; i < 3; i++ {
		expectType(t, bob, types.EvtCountdownUpdate)
	}
	expectType(t, bob, types.EvtGameStarted)
	gs := expectType(t, bob, types.EvtGameStatus)
	if gs.Status != game.StatusActive || gs.GameID != "QUIZ42" {
		t.Fatalf("bad game-status: %+v", gs)
	}

	// host drops: everyone gets game-cancelled, session disappears
	host.Close(websocket.StatusNormalClosure, "bye")
	cancelled := expectType(t, alice, types.EvtGameCancelled)
	if cancelled.Message != "Host disconnected" {
		t.Fatalf("bad cancel reason: %+v", cancelled)
	}

	deadline := time.After(2 * time.Second)
	for h.Get("QUIZ42") != nil {
		select {
		case <-deadline:
			t.Fatal("session still in the store after host disconnect")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestHandler_JoinUnknownGame(t *testing.T) {
	_, wsURL := newTestStack(t)

	conn := dial(t, wsURL)
	sendMsg(t, conn, types.ClientMessage{Type: types.CmdPlayerJoin, JoinCode: "NOPE99", PlayerName: "Alice"})
	rej := expectType(t, conn, types.EvtJoinError)
	if rej.Message != "Game not found" {
		t.Fatalf("bad rejection: %+v", rej)
	}
}

func TestHandler_PlayerLeave_EmptiesHostlessLobby(t *testing.T) {
	h, wsURL := newTestStack(t)

	if _, err := h.Create("QUIZ42", game.Settings{MaxPlayers: 4},
		[]game.Round{{RoundNumber: 1, RoundName: "Intro Drop"}}); err != nil {
		t.Fatalf("create: %v", err)
	}

	conn := dial(t, wsURL)
	sendMsg(t, conn, types.ClientMessage{Type: types.CmdPlayerJoin, JoinCode: "QUIZ42", PlayerName: "Alice"})
	expectType(t, conn, types.EvtJoinSuccess)
	expectType(t, conn, types.EvtPlayersUpdated)

	sendMsg(t, conn, types.ClientMessage{Type: types.CmdPlayerLeave})

	deadline := time.After(2 * time.Second)
	for h.Get("QUIZ42") != nil {
		select {
		case <-deadline:
			t.Fatal("hostless empty lobby should have been deleted")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
