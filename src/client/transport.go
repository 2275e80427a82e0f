package client

import (
	"github.com/fasthttp/websocket"

	"github.com/roomcast/roomcast/src/protocol"
	"github.com/roomcast/roomcast/src/types"
)

// Transport is the client's view of the connection: text frames out,
// snapshot frames in.
type Transport interface {
	SendFrame(frame string) error
	ReadSnapshot() (types.RoomState, error)
	Close() error
}

// WSTransport is the WebSocket-backed transport.
type WSTransport struct {
	conn *websocket.Conn
}

// Dial connects to the chat server at the given WebSocket URL, e.g.
// "ws://localhost:5000/ws".
func Dial(url string) (*WSTransport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return &WSTransport{conn: conn}, nil
}

// Handshake sends the username as the first frame of the session.
func (t *WSTransport) Handshake(name string) error {
	return t.SendFrame(name)
}

// SendFrame writes one text frame.
func (t *WSTransport) SendFrame(frame string) error {
	return t.conn.WriteMessage(websocket.TextMessage, []byte(frame))
}

// ReadSnapshot blocks for the next server frame and decodes it as a room
// snapshot.
func (t *WSTransport) ReadSnapshot() (types.RoomState, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		return types.RoomState{}, err
	}
	return protocol.DecodeSnapshot(data)
}

// Close closes the underlying connection.
func (t *WSTransport) Close() error {
	return t.conn.Close()
}
