package bridge

import "github.com/roomcast/roomcast/src/types"

// Bridge defines the interface for cross-instance event relaying.
// Implementations forward accepted room events between server instances
// so every instance's room applies the same mutation sequence.
type Bridge interface {
	// Publish sends an accepted event to all other instances.
	Publish(ev types.Event) error

	// Start begins listening for events from other instances.
	Start() error

	// Stop shuts down the bridge connection.
	Stop() error

	// Available reports whether the bridge is connected and operational.
	Available() bool
}

// EventTarget is implemented by the Room to receive relayed events.
type EventTarget interface {
	ApplyRemote(ev types.Event)
}
