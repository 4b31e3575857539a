package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Rascal55/MusicQuizApp/internal/game"
	"github.com/Rascal55/MusicQuizApp/internal/room"
)

type HubMsg interface{ isHubMsg() }

type CreateSession struct {
	Code     string
	Settings game.Settings
	Rounds   []game.Round
	Reply    chan CreateReply
}

type CreateReply struct {
	Room *room.Room
	Err  error
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type DeleteSession struct {
	Code  string
	Reply chan error
}

// RemoveRoom drops the store entry for a room that closed itself
// (host cancel, host disconnect, empty-lobby GC). Idempotent.
type RemoveRoom struct{ Code string }

type ListRooms struct {
	Reply chan []*room.Room
}

type ShutdownHub struct{}

func (CreateSession) isHubMsg() {}
func (GetRoom) isHubMsg()       {}
func (DeleteSession) isHubMsg() {}
func (RemoveRoom) isHubMsg()    {}
func (ListRooms) isHubMsg()     {}
func (ShutdownHub) isHubMsg()   {}

type entry struct {
	room      *room.Room
	createdAt time.Time
}

type Options struct {
	SessionTTL    time.Duration // max session age before the sweep reaps it
	SweepInterval time.Duration
	Tick          time.Duration // countdown tick passed through to rooms
	Logger        *zap.Logger
}

// Hub owns the join code -> session mapping. All mutation goes through
// its loop; everyone else holds join codes, never session state.
type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]entry
	opts   Options
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, opts Options) *Hub {
	ctx, cancel := context.WithCancel(parent)

	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 2 * time.Hour
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 10 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]entry),
		opts:   opts,
		log:    opts.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Create is a convenience wrapper around CreateSession for the HTTP layer.
func (h *Hub) Create(code string, settings game.Settings, rounds []game.Round) (*room.Room, error) {
	reply := make(chan CreateReply, 1)
	h.inbox <- CreateSession{Code: code, Settings: settings, Rounds: rounds, Reply: reply}
	res := <-reply
	return res.Room, res.Err
}

// Get returns the live room for a code, or nil.
func (h *Hub) Get(code string) *room.Room {
	reply := make(chan *room.Room, 1)
	h.inbox <- GetRoom{Code: code, Reply: reply}
	return <-reply
}

// Delete removes a session explicitly; game.ErrNotFound if absent.
func (h *Hub) Delete(code string) error {
	reply := make(chan error, 1)
	h.inbox <- DeleteSession{Code: code, Reply: reply}
	return <-reply
}

// List snapshots the live rooms.
func (h *Hub) List() []*room.Room {
	reply := make(chan []*room.Room, 1)
	h.inbox <- ListRooms{Reply: reply}
	return <-reply
}

func (h *Hub) loop() {
	sweep := time.NewTicker(h.opts.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case now := <-sweep.C:
			h.expire(now)

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession:
				sess, err := game.NewSession(msg.Code, msg.Settings, msg.Rounds, time.Now())
				if err != nil {
					msg.Reply <- CreateReply{Err: err}
					break
				}
				if _, exists := h.rooms[sess.JoinCode]; exists {
					msg.Reply <- CreateReply{Err: game.ErrCodeTaken}
					break
				}
				code := sess.JoinCode
				rm := room.New(h.ctx, sess, room.Options{
					Tick:   h.opts.Tick,
					Logger: h.log,
					Detach: func() {
						select {
						case h.inbox <- RemoveRoom{Code: code}:
						case <-h.ctx.Done():
						}
					},
				})
				h.rooms[code] = entry{room: rm, createdAt: sess.CreatedAt}
				h.log.Info("game created", zap.String("code", code), zap.Int("active_games", len(h.rooms)))
				msg.Reply <- CreateReply{Room: rm}

			case GetRoom:
				e := h.rooms[game.NormalizeCode(msg.Code)]
				msg.Reply <- e.room // nil when absent

			case DeleteSession:
				code := game.NormalizeCode(msg.Code)
				e, ok := h.rooms[code]
				if !ok {
					msg.Reply <- game.ErrNotFound
					break
				}
				delete(h.rooms, code)
				e.room.Send(room.Shutdown{Reason: "Game deleted"})
				h.log.Info("game deleted", zap.String("code", code), zap.Int("active_games", len(h.rooms)))
				msg.Reply <- nil

			case RemoveRoom:
				if _, ok := h.rooms[msg.Code]; ok {
					delete(h.rooms, msg.Code)
					h.log.Info("game closed", zap.String("code", msg.Code), zap.Int("active_games", len(h.rooms)))
				}

			case ListRooms:
				rooms := make([]*room.Room, 0, len(h.rooms))
				for _, e := range h.rooms {
					rooms = append(rooms, e.room)
				}
				msg.Reply <- rooms

			case ShutdownHub:
				for code, e := range h.rooms {
					e.room.Send(room.Shutdown{})
					delete(h.rooms, code)
				}
				h.cancel()
				return
			}
		}
	}
}

// expire reaps sessions past the TTL; a coarse net for abandoned
// browser tabs, not a correctness mechanism.
func (h *Hub) expire(now time.Time) {
	for code, e := range h.rooms {
		if now.Sub(e.createdAt) > h.opts.SessionTTL {
			delete(h.rooms, code)
			e.room.Send(room.Shutdown{Reason: "Game expired"})
			h.log.Info("game expired", zap.String("code", code), zap.Int("active_games", len(h.rooms)))
		}
	}
}
