package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rascal55/MusicQuizApp/internal/game"
	"github.com/Rascal55/MusicQuizApp/internal/hub"
	"github.com/Rascal55/MusicQuizApp/internal/room"
	"github.com/Rascal55/MusicQuizApp/internal/types"
)

// binding is the per-connection record: which room this connection is
// attached to and in what role. Kept here, not on the transport object,
// so disconnect handling needs no knowledge of the socket internals.
type binding struct {
	room *room.Room
	role game.Role
}

func Handler(h *hub.Hub, originPatterns []string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		// The outbox belongs to the room side: only rooms send on it and
		// only the currently-bound room may close it. Local protocol
		// errors are written straight to the socket instead.
		outbox := make(chan types.ServerMessage, 16)
		log := log.With(zap.String("conn_id", connID))
		log.Info("client connected")

		var bound binding
		defer func() {
			// Transport-level disconnect: host -> cancel, player ->
			// leave, unbound -> nothing.
			if bound.room != nil {
				bound.room.Send(room.Disconnect{ConnID: connID})
			}
			log.Info("client disconnected")
		}()

		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go writer(writeCtx, conn, outbox)

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeMessage(r.Context(), conn, types.ServerMessage{Type: types.EvtError, Message: "bad json"})
				continue
			}

			if reply := handle(h, cm, connID, outbox, &bound, log); reply != nil {
				writeMessage(r.Context(), conn, *reply)
			}
		}
	}
}

// writer drains the outbox onto the wire. When the room closes the
// outbox the connection is being torn down server-side; closing the
// socket lets the reader loop exit too.
func writer(ctx context.Context, conn *websocket.Conn, outbox <-chan types.ServerMessage) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-outbox:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "game closed")
				return
			}
			writeMessage(ctx, conn, msg)
		}
	}
}

func writeMessage(ctx context.Context, conn *websocket.Conn, m types.ServerMessage) {
	payload, err := json.Marshal(m)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}

// handle dispatches one inbound message. A non-nil return is a local
// reply the reader writes to the socket itself; everything else reaches
// the client through the room and the outbox.
func handle(h *hub.Hub, cm types.ClientMessage, connID string, outbox chan types.ServerMessage, bound *binding, log *zap.Logger) *types.ServerMessage {
	switch cm.Type {
	case types.CmdHostJoin:
		if bound.room != nil {
			return errMessage(game.ErrAlreadyJoined)
		}
		rm := h.Get(cm.JoinCode)
		if rm == nil {
			return joinError(game.ErrNotFound)
		}
		if !rm.Send(room.HostJoin{ConnID: connID, Outbox: outbox}) {
			return joinError(game.ErrNotFound)
		}
		*bound = binding{room: rm, role: game.RoleHost}

	case types.CmdPlayerJoin:
		if bound.room != nil {
			return errMessage(game.ErrAlreadyJoined)
		}
		rm := h.Get(cm.JoinCode)
		if rm == nil {
			return joinError(game.ErrNotFound)
		}
		reply := make(chan error, 1)
		if !rm.Send(room.PlayerJoin{ConnID: connID, Name: cm.PlayerName, Outbox: outbox, Reply: reply}) {
			return joinError(game.ErrNotFound)
		}
		select {
		case err := <-reply:
			if err == nil {
				*bound = binding{room: rm, role: game.RolePlayer}
			}
			// on admission failure the room already sent join-error
		case <-rm.Done():
		}

	case types.CmdPlayerLeave:
		if bound.room == nil || bound.role != game.RolePlayer {
			return nil
		}
		rm := bound.room
		reply := make(chan struct{}, 1)
		if rm.Send(room.Leave{ConnID: connID, Reply: reply}) {
			select {
			case <-reply:
			case <-rm.Done():
			}
		}
		*bound = binding{}

	case types.CmdHostCancel:
		if bound.room == nil || bound.role != game.RoleHost {
			return errMessage(game.ErrNotHost)
		}
		reply := make(chan error, 1)
		rm := bound.room
		if !rm.Send(room.Cancel{ConnID: connID, Reply: reply}) {
			*bound = binding{}
			return nil
		}
		select {
		case err := <-reply:
			if err != nil {
				return errMessage(err)
			}
			*bound = binding{}
		case <-rm.Done():
			*bound = binding{}
		}

	case types.CmdStartGame:
		if bound.room == nil {
			return errMessage(game.ErrNotHost)
		}
		reply := make(chan error, 1)
		if !bound.room.Send(room.Start{ConnID: connID, Reply: reply}) {
			return nil
		}
		select {
		case err := <-reply:
			if err != nil {
				return errMessage(err)
			}
		case <-bound.room.Done():
		}

	case types.CmdGetGameStatus:
		rm := bound.room
		if rm == nil {
			rm = h.Get(cm.JoinCode)
		}
		if rm == nil {
			return errMessage(game.ErrNotFound)
		}
		rm.Send(room.QueryStatus{Outbox: outbox})

	default:
		log.Debug("unknown message type", zap.String("type", cm.Type))
		return &types.ServerMessage{Type: types.EvtError, Message: "unknown type"}
	}
	return nil
}

func errMessage(err error) *types.ServerMessage {
	return &types.ServerMessage{Type: types.EvtError, Message: game.Message(err)}
}

func joinError(err error) *types.ServerMessage {
	return &types.ServerMessage{Type: types.EvtJoinError, Message: game.Message(err)}
}
