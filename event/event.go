// Package event provides the base publish/subscribe emitter: named listener lists,
// synchronous dispatch in registration order and listener lifecycle notifications.
package event

// Lifecycle and error event names
const (
	// EventNewListener is emitted with (name, *Listener) before a listener is added
	EventNewListener = "newListener"
	// EventRemoveListener is emitted with (name, *Listener) after a listener is removed
	EventRemoveListener = "removeListener"
	// EventError carries errors; emitting it without listeners panics
	EventError = "error"
)

// DefaultMaxListeners listener count per event above which a leak warning is logged
const DefaultMaxListeners = 10
