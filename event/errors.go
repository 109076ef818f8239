package event

import "github.com/KOMKZ/go-yogan-intercept/errcode"

// Module code 20 = event
const moduleCode = 20

// ErrInvalidListener a nil listener handle or function was passed
var ErrInvalidListener = errcode.New(moduleCode, 1, "event", "error.event.invalid_listener",
	"listener must be a non-nil function")

// ErrUnhandledError an "error" event was emitted with a non-error payload and no listener
var ErrUnhandledError = errcode.New(moduleCode, 2, "event", "error.event.unhandled",
	"unhandled error event")

// ErrInvalidMaxListeners a negative listener ceiling was passed
var ErrInvalidMaxListeners = errcode.New(moduleCode, 3, "event", "error.event.invalid_max_listeners",
	"max listeners must be a non-negative number")
