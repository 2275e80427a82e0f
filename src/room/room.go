package room

import (
	"errors"
	"strings"
	"sync"

	"github.com/roomcast/roomcast/src/types"
	"github.com/rs/zerolog"
)

// EventBridge publishes accepted room events to other server instances.
// Defined here to avoid circular imports with the bridge package.
type EventBridge interface {
	Publish(ev types.Event) error
	Available() bool
}

var (
	// ErrNameTaken rejects a join for a username already in the room.
	ErrNameTaken = errors.New("room: username already taken")
	// ErrUnknownUser reports a typing event for an unregistered name.
	ErrUnknownUser = errors.New("room: unknown user")
	// ErrRoomClosed rejects operations after the event loop has stopped.
	ErrRoomClosed = errors.New("room: closed")
)

// Room is the single-writer owner of the shared chat state. All mutation
// flows through the Run loop, one event at a time: a mutation completes,
// its snapshot is built and handed to every session's send queue, and only
// then is the next event considered. Sessions never touch the state
// directly.
type Room struct {
	users    []types.User
	messages []string
	sessions map[string]*Session

	join     chan joinRequest
	leave    chan *Session
	events   chan types.Event
	remote   chan types.Event // events from the bridge, never re-published
	announce chan announceRequest

	bridge EventBridge

	mu     sync.RWMutex
	last   types.RoomState // latest snapshot, for read-side queries
	logger zerolog.Logger
	done   chan struct{}
}

type joinRequest struct {
	sess  *Session
	reply chan error
}

type announceRequest struct {
	text string
	done chan struct{}
}

// New creates a room with empty state. Call Run in a goroutine.
func New(logger zerolog.Logger) *Room {
	return &Room{
		sessions: make(map[string]*Session),
		join:     make(chan joinRequest),
		leave:    make(chan *Session),
		events:   make(chan types.Event, 256),
		remote:   make(chan types.Event, 256),
		announce: make(chan announceRequest),
		last:     types.EmptyRoom(),
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// SetBridge attaches a cross-instance event bridge. Accepted mutations are
// then also published to other instances.
func (r *Room) SetBridge(b EventBridge) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bridge = b
}

// Run starts the room event loop. Call in a goroutine.
func (r *Room) Run() {
	for {
		select {
		case req := <-r.join:
			req.reply <- r.addSession(req.sess)
		case sess := <-r.leave:
			r.removeSession(sess)
		case ev := <-r.events:
			r.applyEvent(ev, true)
		case ev := <-r.remote:
			r.applyEvent(ev, false)
		case req := <-r.announce:
			r.appendNotice(req.text)
			r.finishMutation(types.Event{Kind: types.EventNotice, Body: req.text}, true)
			close(req.done)
		case <-r.done:
			return
		}
	}
}

// Stop halts the room event loop.
func (r *Room) Stop() {
	close(r.done)
}

// Shutdown stops the event loop and closes every session's transport.
// The pumps observe the dead connections and unwind on their own.
func (r *Room) Shutdown() {
	r.Stop()
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.mu.RUnlock()
	for _, sess := range sessions {
		sess.conn.Close()
	}
}

// Join registers a named session with the room. It blocks until the event
// loop has processed the join and returns ErrNameTaken if the username is
// already present.
func (r *Room) Join(sess *Session) error {
	req := joinRequest{sess: sess, reply: make(chan error, 1)}
	select {
	case r.join <- req:
		return <-req.reply
	case <-r.done:
		return ErrRoomClosed
	}
}

// Leave queues a session for removal. Safe to call for sessions that never
// completed their join.
func (r *Room) Leave(sess *Session) {
	select {
	case r.leave <- sess:
	case <-r.done:
	}
}

// Submit queues a decoded client event for the room loop.
func (r *Room) Submit(ev types.Event) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

// ApplyRemote delivers an event relayed from another instance via the
// bridge. It is applied locally but never published back, preventing
// relay loops.
func (r *Room) ApplyRemote(ev types.Event) {
	select {
	case r.remote <- ev:
	case <-r.done:
	}
}

// Announce appends a "[SERVER]" notice and broadcasts the new snapshot.
// It blocks until the notice has been applied.
func (r *Room) Announce(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("room: empty announcement")
	}
	req := announceRequest{text: text, done: make(chan struct{})}
	select {
	case r.announce <- req:
		<-req.done
		return nil
	case <-r.done:
		return ErrRoomClosed
	}
}

func (r *Room) findUser(name string) int {
	for i := range r.users {
		if r.users[i].Name == name {
			return i
		}
	}
	return -1
}

func (r *Room) appendNotice(text string) {
	r.messages = append(r.messages, "[SERVER] "+text)
}
