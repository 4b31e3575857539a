package room

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Rascal55/MusicQuizApp/internal/game"
	"github.com/Rascal55/MusicQuizApp/internal/types"
)

// countdownFrom is the value broadcast with game-starting; ticks count
// down from countdownFrom-1 to 0.
const countdownFrom = 3

type Msg interface{ isRoomMsg() }

// HostJoin binds the connection as the session host. A second HostJoin
// from a new connection overwrites the binding (host page reload); the
// stale connection is unbound so its eventual disconnect is a no-op.
type HostJoin struct {
	ConnID string
	Outbox chan types.ServerMessage
}

func (HostJoin) isRoomMsg() {}

type PlayerJoin struct {
	ConnID string
	Name   string
	Outbox chan types.ServerMessage
	Reply  chan error
}

func (PlayerJoin) isRoomMsg() {}

// Leave is an explicit player-leave request; the connection stays open
// and may join another game once Reply fires (the roster entry and the
// outbox registration are gone by then).
type Leave struct {
	ConnID string
	Reply  chan struct{}
}

func (Leave) isRoomMsg() {}

// Disconnect is the transport telling us a connection died.
type Disconnect struct{ ConnID string }

func (Disconnect) isRoomMsg() {}

type Cancel struct {
	ConnID string
	Reply  chan error
}

func (Cancel) isRoomMsg() {}

type Start struct {
	ConnID string
	Reply  chan error
}

func (Start) isRoomMsg() {}

// GetStatus reflects room state for the REST layer without data races.
type GetStatus struct{ Reply chan View }

func (GetStatus) isRoomMsg() {}

// QueryStatus answers a get-game-status request on the given outbox.
type QueryStatus struct{ Outbox chan types.ServerMessage }

func (QueryStatus) isRoomMsg() {}

// Shutdown closes the room. A non-empty Reason is broadcast to members
// as game-cancelled before the outboxes close.
type Shutdown struct{ Reason string }

func (Shutdown) isRoomMsg() {}

type tickMsg struct {
	gen int
	n   int
}

func (tickMsg) isRoomMsg() {}

type View struct {
	JoinCode    string
	Status      game.Status
	PlayerCount int
	MaxPlayers  int
	Rounds      []game.Round
	Players     []game.Player
	CreatedAt   time.Time
	HostBound   bool
	NumMembers  int
}

type Options struct {
	Tick   time.Duration // countdown tick interval; 1s in production
	Logger *zap.Logger
	Detach func() // called once when the room closes, to unregister from the hub
}

type Room struct {
	inbox    chan Msg
	sess     game.Session
	members  map[string]chan types.ServerMessage
	roles    map[string]game.Role
	timer    *time.Timer
	timerGen int
	tick     time.Duration
	detach   func()
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context, sess game.Session, opts Options) *Room {
	ctx, cancel := context.WithCancel(parent)

	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	r := &Room{
		inbox:   make(chan Msg, 64),
		sess:    sess,
		members: make(map[string]chan types.ServerMessage),
		roles:   make(map[string]game.Role),
		tick:    opts.Tick,
		detach:  opts.Detach,
		log:     opts.Logger.With(zap.String("code", sess.JoinCode)),
		ctx:     ctx,
		cancel:  cancel,
	}

	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done closes when the room has shut down. Senders should select on it
// so a message to a dead room never blocks forever.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// Send delivers a message unless the room is already gone.
func (r *Room) Send(m Msg) bool {
	select {
	case r.inbox <- m:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// Status round-trips a GetStatus through the actor loop.
func (r *Room) Status(ctx context.Context) (View, bool) {
	reply := make(chan View, 1)
	select {
	case r.inbox <- GetStatus{Reply: reply}:
	case <-r.ctx.Done():
		return View{}, false
	case <-ctx.Done():
		return View{}, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-r.ctx.Done():
		return View{}, false
	case <-ctx.Done():
		return View{}, false
	}
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.close("")
			return

		case m := <-r.inbox:
			if r.handle(m) {
				return
			}
		}
	}
}

// handle applies one message; returning true means the room closed and
// the loop must exit.
func (r *Room) handle(m Msg) bool {
	switch msg := m.(type) {
	case HostJoin:
		if prev := r.sess.HostConnID; prev != "" && prev != msg.ConnID {
			// Reattach after a reload; unbind the stale connection so
			// its late disconnect doesn't cancel the game.
			delete(r.roles, prev)
			delete(r.members, prev)
		}
		r.sess.HostConnID = msg.ConnID
		r.members[msg.ConnID] = msg.Outbox
		r.roles[msg.ConnID] = game.RoleHost
		r.send(msg.Outbox, r.rosterMessage())
		r.log.Info("host attached", zap.String("conn_id", msg.ConnID))

	case PlayerJoin:
		p, err := r.sess.AddPlayer(msg.ConnID, msg.Name, time.Now())
		if err != nil {
			r.send(msg.Outbox, types.ServerMessage{Type: types.EvtJoinError, Message: game.Message(err)})
			msg.Reply <- err
			break
		}
		r.members[msg.ConnID] = msg.Outbox
		r.roles[msg.ConnID] = game.RolePlayer
		msg.Reply <- nil
		// The private ack goes out first, then the joiner sees the same
		// roster broadcast as everyone else; both ride one channel so
		// the order holds.
		r.send(msg.Outbox, types.ServerMessage{
			Type:       types.EvtJoinSuccess,
			JoinCode:   r.sess.JoinCode,
			PlayerID:   p.ID,
			PlayerName: p.Name,
		})
		r.broadcast(r.rosterMessage())
		r.log.Info("player joined", zap.String("conn_id", msg.ConnID), zap.String("player", p.Name))

	case Leave:
		done := r.dropPlayer(msg.ConnID)
		if msg.Reply != nil {
			msg.Reply <- struct{}{}
		}
		return done

	case Disconnect:
		switch r.roles[msg.ConnID] {
		case game.RoleHost:
			delete(r.roles, msg.ConnID)
			delete(r.members, msg.ConnID)
			r.log.Info("host disconnected, cancelling game")
			r.close("Host disconnected")
			return true
		case game.RolePlayer:
			return r.dropPlayer(msg.ConnID)
		default:
			// never admitted here; nothing to do
		}

	case Cancel:
		if r.roles[msg.ConnID] != game.RoleHost {
			msg.Reply <- game.ErrNotHost
			break
		}
		msg.Reply <- nil
		r.log.Info("game cancelled by host")
		r.close("Game cancelled by host")
		return true

	case Start:
		err := r.sess.CanStart()
		if r.roles[msg.ConnID] != game.RoleHost {
			err = game.ErrNotHost
		}
		if err != nil {
			msg.Reply <- err
			break
		}
		r.sess.Status = game.StatusStarting
		msg.Reply <- nil
		r.broadcast(types.ServerMessage{Type: types.EvtGameStarting, Countdown: types.Int(countdownFrom)})
		r.armTick(countdownFrom - 1)
		r.log.Info("countdown started", zap.Int("players", len(r.sess.Players)))

	case tickMsg:
		if msg.gen != r.timerGen || r.sess.Status != game.StatusStarting {
			break // stale fire from a cancelled countdown
		}
		r.broadcast(types.ServerMessage{Type: types.EvtCountdownUpdate, Countdown: types.Int(msg.n)})
		if msg.n == 0 {
			r.sess.Status = game.StatusActive
			r.broadcast(types.ServerMessage{Type: types.EvtGameStarted, Message: "Game started"})
			r.log.Info("game started")
			break
		}
		r.armTick(msg.n - 1)

	case GetStatus:
		msg.Reply <- r.view()

	case QueryStatus:
		n := len(r.sess.Players)
		r.send(msg.Outbox, types.ServerMessage{
			Type:        types.EvtGameStatus,
			GameID:      r.sess.JoinCode,
			Status:      r.sess.Status,
			PlayerCount: &n,
			MaxPlayers:  r.sess.Settings.MaxPlayers,
		})

	case Shutdown:
		r.close(msg.Reason)
		return true
	}
	return false
}

// dropPlayer handles both an explicit leave and a player disconnect.
// Returns true when removing the last player of a hostless session
// closed the room.
func (r *Room) dropPlayer(connID string) bool {
	delete(r.roles, connID)
	delete(r.members, connID)
	p, ok := r.sess.RemovePlayer(connID)
	if !ok {
		// leave raced with a disconnect, or the player was never here
		r.log.Debug("leave for unknown player", zap.String("conn_id", connID))
		return false
	}
	r.log.Info("player left", zap.String("player", p.Name))
	if len(r.sess.Players) == 0 && !r.sess.HasHost() {
		r.log.Info("lobby empty with no host, closing")
		r.close("")
		return true
	}
	r.broadcast(r.rosterMessage())
	return false
}

// armTick schedules the next countdown tick. The generation counter
// lets close and restarts invalidate fires already in flight.
func (r *Room) armTick(n int) {
	r.timerGen++
	gen := r.timerGen
	r.timer = time.AfterFunc(r.tick, func() {
		select {
		case r.inbox <- tickMsg{gen: gen, n: n}:
		case <-r.ctx.Done():
		}
	})
}

// close tears the room down. A non-empty farewell is broadcast as
// game-cancelled before the member outboxes close; pending messages in
// the outbox buffers still drain to the writers.
func (r *Room) close(farewell string) {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timerGen++
	if farewell != "" {
		r.broadcast(types.ServerMessage{Type: types.EvtGameCancelled, Message: farewell})
	}
	for id, ch := range r.members {
		close(ch)
		delete(r.members, id)
	}
	r.cancel()
	if r.detach != nil {
		r.detach()
	}
}

func (r *Room) broadcast(m types.ServerMessage) {
	for id, ch := range r.members {
		select {
		case ch <- m:
		default:
			// Slow or stuck client; cut it loose. The closed outbox
			// shuts its writer down and the disconnect path cleans up
			// the roster.
			close(ch)
			delete(r.members, id)
			delete(r.roles, id)
		}
	}
}

// send is a best-effort unicast; the target may not be a member (join
// rejections go to connections that were never admitted).
func (r *Room) send(ch chan types.ServerMessage, m types.ServerMessage) {
	select {
	case ch <- m:
	default:
	}
}

func (r *Room) rosterMessage() types.ServerMessage {
	players := make([]game.Player, len(r.sess.Players))
	copy(players, r.sess.Players)
	n := len(players)
	return types.ServerMessage{Type: types.EvtPlayersUpdated, Players: players, PlayerCount: &n}
}

func (r *Room) view() View {
	players := make([]game.Player, len(r.sess.Players))
	copy(players, r.sess.Players)
	rounds := make([]game.Round, len(r.sess.Rounds))
	copy(rounds, r.sess.Rounds)
	return View{
		JoinCode:    r.sess.JoinCode,
		Status:      r.sess.Status,
		PlayerCount: len(players),
		MaxPlayers:  r.sess.Settings.MaxPlayers,
		Rounds:      rounds,
		Players:     players,
		CreatedAt:   r.sess.CreatedAt,
		HostBound:   r.sess.HasHost(),
		NumMembers:  len(r.members),
	}
}
