// Package protocol implements the wire codec shared by server and client.
//
// Client to server frames are pipe-delimited text:
//
//	<name>|message|<body>
//	<name>|startedTyping
//	<name>|stoppedTyping
//
// Server to client frames are JSON-encoded room snapshots. The pipe is a
// framing character and is never legal inside a field; frames containing
// a stray pipe fail the field-count check and are rejected at decode.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roomcast/roomcast/src/types"
)

// Delimiter separates fields in a client event frame.
const Delimiter = "|"

// MaxNameBytes caps the handshake username frame.
const MaxNameBytes = 32

// ProtocolError reports a frame that could not be decoded. Callers drop
// the offending frame and continue; it is never fatal to a session.
type ProtocolError struct {
	Frame  string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol: %s in frame %q", e.Reason, e.Frame)
}

// EncodeEvent renders an event as a wire frame.
func EncodeEvent(ev types.Event) string {
	switch ev.Kind {
	case types.EventMessage:
		return ev.Name + Delimiter + string(ev.Kind) + Delimiter + ev.Body
	default:
		return ev.Name + Delimiter + string(ev.Kind)
	}
}

// DecodeEvent parses a client event frame. Field counts are exact: a
// message frame has three fields, a typing frame has two. Anything else,
// including a pipe smuggled into a body, is a ProtocolError.
func DecodeEvent(frame string) (types.Event, error) {
	parts := strings.Split(frame, Delimiter)
	if len(parts) < 2 {
		return types.Event{}, &ProtocolError{Frame: frame, Reason: "too few fields"}
	}
	name := parts[0]
	if name == "" {
		return types.Event{}, &ProtocolError{Frame: frame, Reason: "empty name"}
	}

	switch types.EventKind(parts[1]) {
	case types.EventMessage:
		if len(parts) != 3 {
			return types.Event{}, &ProtocolError{Frame: frame, Reason: "message needs exactly 3 fields"}
		}
		return types.Event{Name: name, Kind: types.EventMessage, Body: parts[2]}, nil
	case types.EventStartedTyping:
		if len(parts) != 2 {
			return types.Event{}, &ProtocolError{Frame: frame, Reason: "startedTyping takes no body"}
		}
		return types.Event{Name: name, Kind: types.EventStartedTyping}, nil
	case types.EventStoppedTyping:
		if len(parts) != 2 {
			return types.Event{}, &ProtocolError{Frame: frame, Reason: "stoppedTyping takes no body"}
		}
		return types.Event{Name: name, Kind: types.EventStoppedTyping}, nil
	default:
		return types.Event{}, &ProtocolError{Frame: frame, Reason: "unknown command " + parts[1]}
	}
}

// DecodeName validates and normalizes the handshake frame: trimmed,
// non-empty, capped at MaxNameBytes, no delimiter.
func DecodeName(frame string) (string, error) {
	name := strings.TrimSpace(frame)
	if name == "" {
		return "", &ProtocolError{Frame: frame, Reason: "empty username"}
	}
	if strings.Contains(name, Delimiter) {
		return "", &ProtocolError{Frame: frame, Reason: "username contains delimiter"}
	}
	if len(name) > MaxNameBytes {
		name = name[:MaxNameBytes]
	}
	return name, nil
}

// EncodeSnapshot renders a room snapshot as JSON.
func EncodeSnapshot(st types.RoomState) ([]byte, error) {
	return json.Marshal(st)
}

// DecodeSnapshot parses a JSON snapshot frame. Nil slices are normalized
// to empty so an empty room round-trips cleanly.
func DecodeSnapshot(data []byte) (types.RoomState, error) {
	var st types.RoomState
	if err := json.Unmarshal(data, &st); err != nil {
		return types.RoomState{}, &ProtocolError{Frame: string(data), Reason: "invalid snapshot: " + err.Error()}
	}
	for _, u := range st.Users {
		if u.Name == "" {
			return types.RoomState{}, &ProtocolError{Frame: string(data), Reason: "snapshot user without name"}
		}
	}
	if st.Users == nil {
		st.Users = []types.User{}
	}
	if st.Messages == nil {
		st.Messages = []string{}
	}
	return st, nil
}
