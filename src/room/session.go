package room

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/roomcast/roomcast/src/protocol"
	"github.com/roomcast/roomcast/src/types"
	"github.com/rs/zerolog"
)

// State is a session's lifecycle phase.
type State int32

const (
	StateConnecting State = iota
	StateAwaitingName
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingName:
		return "awaiting-name"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// Session is the server-side handle for one connected participant. It
// owns the connection's read and write halves and forwards decoded events
// to the room; it never mutates room state itself.
type Session struct {
	ID   string
	Send chan types.RoomState

	conn     types.Conn
	room     *Room
	name     string
	connectedAt time.Time
	state    atomic.Int32
	logger   zerolog.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewSession wraps a connection. The username is learned from the first
// inbound frame, inside ReadPump.
func NewSession(id string, conn types.Conn, r *Room, logger zerolog.Logger) *Session {
	return &Session{
		ID:       id,
		Send:     make(chan types.RoomState, 256),
		conn:     conn,
		room:     r,
		connectedAt: time.Now(),
		logger:   logger.With().Str("session_id", id).Logger(),
		done:     make(chan struct{}),
	}
}

// Name returns the session's username, or "" before the handshake.
func (s *Session) Name() string { return s.name }

// Info returns metadata about this session.
func (s *Session) Info() types.SessionInfo {
	return types.SessionInfo{
		ID:          s.ID,
		Name:        s.name,
		State:       s.State().String(),
		ConnectedAt: s.connectedAt,
	}
}

// State returns the session's current lifecycle phase.
func (s *Session) State() State { return State(s.state.Load()) }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// ReadPump drives the session: it performs the name handshake, joins the
// room, then decodes inbound frames until the transport fails. Transport
// errors are terminal to this session only; they convert into a Leave and
// never propagate.
func (s *Session) ReadPump() {
	defer func() {
		s.setState(StateClosing)
		s.room.Leave(s)
		s.conn.Close()
	}()

	s.setState(StateAwaitingName)
	frame, err := s.conn.ReadText()
	if err != nil {
		s.logger.Debug().Err(err).Msg("connection lost before handshake")
		return
	}
	name, err := protocol.DecodeName(frame)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rejected handshake frame")
		return
	}
	s.name = name

	if err := s.room.Join(s); err != nil {
		s.logger.Warn().Err(err).Str("name", name).Msg("join rejected")
		return
	}
	s.setState(StateActive)

	for {
		frame, err := s.conn.ReadText()
		if err != nil {
			s.logger.Info().Err(err).Str("name", s.name).Msg("lost connection to client")
			return
		}
		ev, err := protocol.DecodeEvent(frame)
		if err != nil {
			// Dropped without a response frame: the sender gets no
			// refresh for a malformed event.
			s.logger.Warn().Err(err).Msg("dropped malformed frame")
			continue
		}
		// The session, not the frame, is authoritative for identity.
		ev.Name = s.name
		s.room.Submit(ev)
	}
}

// WritePump delivers snapshots queued by the room's broadcast. A write
// failure marks the session closing and closes the connection; the read
// pump then observes the dead transport and runs the leave path.
func (s *Session) WritePump() {
	defer s.conn.Close()

	for {
		select {
		case snap, ok := <-s.Send:
			if !ok {
				return
			}
			if err := s.conn.WriteJSON(snap); err != nil {
				s.setState(StateClosing)
				s.logger.Warn().Err(err).Msg("snapshot delivery failed")
				return
			}
		case <-s.done:
			return
		}
	}
}

// Close releases the session's channels. Called only from the room loop,
// which guarantees no broadcast can race a close.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.setState(StateClosed)
		close(s.done)
		close(s.Send)
	}
}
