package types

import "time"

// User is one participant in the room.
type User struct {
	Name     string `json:"name"`
	IsTyping bool   `json:"isTyping"`
}

// RoomState is a full point-in-time snapshot of the room. It is a value
// type: once constructed it is never mutated, only replaced wholesale by
// the next snapshot.
type RoomState struct {
	Users    []User   `json:"users"`
	Messages []string `json:"messages"`
}

// EmptyRoom returns a snapshot with no users and no messages.
func EmptyRoom() RoomState {
	return RoomState{Users: []User{}, Messages: []string{}}
}

// EventKind identifies a client-originated state-change request.
type EventKind string

const (
	EventMessage       EventKind = "message"
	EventStartedTyping EventKind = "startedTyping"
	EventStoppedTyping EventKind = "stoppedTyping"

	// Bridge-relay kinds. These never appear on the client wire; the
	// event codec rejects them.
	EventJoined EventKind = "joined"
	EventLeft   EventKind = "left"
	EventNotice EventKind = "notice"
)

// Event is one decoded client frame.
type Event struct {
	Name string    `json:"name"`
	Kind EventKind `json:"kind"`
	Body string    `json:"body,omitempty"`
}

// SessionInfo holds metadata about one connected session.
type SessionInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	State       string    `json:"state"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Conn abstracts a WebSocket connection for testability. Inbound frames
// are plain text (the handshake name or a pipe-delimited event); outbound
// frames are JSON-encoded snapshots.
type Conn interface {
	ReadText() (string, error)
	WriteJSON(v any) error
	Close() error
}
