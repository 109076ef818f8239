package event

import (
	"sync"

	"github.com/KOMKZ/go-yogan-intercept/logger"
	"go.uber.org/zap"
)

// listenerList listeners of one event name plus the leak-warning flag
type listenerList struct {
	entries []*Listener
	warned  bool
}

// Emitter synchronous publish/subscribe emitter
//
// Listeners run on the caller's goroutine in registration order. The internal lock is
// never held while a listener runs, so listeners may emit, register or remove freely.
type Emitter struct {
	mu           sync.RWMutex
	listeners    map[string]*listenerList
	names        []string // event names in first-registration order
	maxListeners int
	logger       *logger.CtxZapLogger
	attachments  map[string]any
}

// New creates an emitter
func New(opts ...Option) *Emitter {
	e := &Emitter{
		listeners:    make(map[string]*listenerList),
		maxListeners: DefaultMaxListeners,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.GetLogger("event")
	}
	return e
}

// On registers a listener and returns the emitter for chaining
// Panics with ErrInvalidListener on a nil handle
func (e *Emitter) On(name string, l *Listener) *Emitter {
	e.AddListener(name, l)
	return e
}

// AddListener registers a listener
// "newListener" is emitted before the listener is appended
func (e *Emitter) AddListener(name string, l *Listener) {
	if !l.valid() {
		panic(ErrInvalidListener)
	}
	e.add(name, l)
}

// Once registers a listener that is removed before its first invocation
func (e *Emitter) Once(name string, l *Listener) *Emitter {
	if !l.valid() {
		panic(ErrInvalidListener)
	}

	fired := false
	wrapper := &Listener{origin: l}
	wrapper.fn = func(args ...any) {
		if fired {
			return
		}
		fired = true
		e.RemoveListener(name, wrapper)
		l.Call(args...)
	}

	e.add(name, wrapper)
	return e
}

func (e *Emitter) add(name string, l *Listener) {
	e.Emit(EventNewListener, name, l.public())

	e.mu.Lock()
	list, ok := e.listeners[name]
	if !ok {
		list = &listenerList{}
		e.listeners[name] = list
		e.names = append(e.names, name)
	}
	list.entries = append(list.entries, l)

	count := len(list.entries)
	limit := e.maxListeners
	warn := limit > 0 && count > limit && !list.warned
	if warn {
		list.warned = true
	}
	e.mu.Unlock()

	if warn {
		e.logger.Warn("possible listener leak detected, use SetMaxListeners to raise the limit",
			zap.String("event", name),
			zap.Int("count", count),
			zap.Int("max", limit))
	}
}

// Emit invokes the listeners of name in registration order
// Returns whether at least one listener ran. Emitting "error" with no listener panics
// with the error payload (or ErrUnhandledError when the payload is not an error).
func (e *Emitter) Emit(name string, args ...any) bool {
	e.mu.RLock()
	var snapshot []*Listener
	if list, ok := e.listeners[name]; ok {
		snapshot = make([]*Listener, len(list.entries))
		copy(snapshot, list.entries)
	}
	e.mu.RUnlock()

	if len(snapshot) == 0 {
		if name == EventError {
			panic(unhandledError(args))
		}
		return false
	}

	for _, l := range snapshot {
		l.Call(args...)
	}
	return true
}

func unhandledError(args []any) error {
	if len(args) == 0 || args[0] == nil {
		return ErrUnhandledError
	}
	if err, ok := args[0].(error); ok {
		return err
	}
	return ErrUnhandledError.WithData("value", args[0])
}

// Listeners returns a snapshot of the listeners registered for name
// Once registrations are reported as the handle that was passed to Once
func (e *Emitter) Listeners(name string) []*Listener {
	e.mu.RLock()
	defer e.mu.RUnlock()

	list, ok := e.listeners[name]
	if !ok {
		return []*Listener{}
	}

	result := make([]*Listener, 0, len(list.entries))
	for _, l := range list.entries {
		result = append(result, l.public())
	}
	return result
}

// ListenerCount number of listeners registered for name
func (e *Emitter) ListenerCount(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if list, ok := e.listeners[name]; ok {
		return len(list.entries)
	}
	return 0
}

// EventNames returns the names that currently have listeners
func (e *Emitter) EventNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, len(e.names))
	copy(names, e.names)
	return names
}

// Off removes a listener and returns the emitter for chaining
func (e *Emitter) Off(name string, l *Listener) *Emitter {
	e.RemoveListener(name, l)
	return e
}

// RemoveListener removes the most recently registered occurrence of l
// Emits "removeListener" after removal. Returns false (and emits nothing) when l is not registered.
func (e *Emitter) RemoveListener(name string, l *Listener) bool {
	if l == nil {
		panic(ErrInvalidListener)
	}

	e.mu.Lock()
	list, ok := e.listeners[name]
	if !ok {
		e.mu.Unlock()
		return false
	}

	idx := -1
	for i := len(list.entries) - 1; i >= 0; i-- {
		if list.entries[i].matches(l) {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return false
	}

	removed := list.entries[idx]
	if len(list.entries) == 1 {
		e.deleteLocked(name)
	} else {
		entries := make([]*Listener, 0, len(list.entries)-1)
		entries = append(entries, list.entries[:idx]...)
		list.entries = append(entries, list.entries[idx+1:]...)
	}
	e.mu.Unlock()

	e.Emit(EventRemoveListener, name, removed.public())
	return true
}

// RemoveAllListeners removes the listeners of the given names, or of every name when none is given
// Each removal emits its own "removeListener"; the "removeListener" list itself is cleared last.
func (e *Emitter) RemoveAllListeners(names ...string) *Emitter {
	if len(names) == 0 {
		for _, name := range e.EventNames() {
			if name != EventRemoveListener {
				e.removeAll(name)
			}
		}
		e.removeAll(EventRemoveListener)
		return e
	}

	for _, name := range names {
		e.removeAll(name)
	}
	return e
}

// removeAll clears one list in LIFO order
func (e *Emitter) removeAll(name string) {
	e.mu.RLock()
	var snapshot []*Listener
	if list, ok := e.listeners[name]; ok {
		snapshot = make([]*Listener, len(list.entries))
		copy(snapshot, list.entries)
	}
	e.mu.RUnlock()

	for i := len(snapshot) - 1; i >= 0; i-- {
		e.RemoveListener(name, snapshot[i])
	}
}

func (e *Emitter) deleteLocked(name string) {
	delete(e.listeners, name)
	for i, n := range e.names {
		if n == name {
			e.names = append(e.names[:i:i], e.names[i+1:]...)
			break
		}
	}
}

// SetMaxListeners sets the per-event listener ceiling (0 = unlimited)
// Panics with ErrInvalidMaxListeners on a negative value
func (e *Emitter) SetMaxListeners(n int) *Emitter {
	if n < 0 {
		panic(ErrInvalidMaxListeners.WithData("value", n))
	}

	e.mu.Lock()
	e.maxListeners = n
	e.mu.Unlock()
	return e
}

// MaxListeners returns the per-event listener ceiling
func (e *Emitter) MaxListeners() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.maxListeners
}

// Set stores a value on this emitter instance
// Extensions use it to keep per-instance state (see intercept.Patch)
func (e *Emitter) Set(key string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.attachments == nil {
		e.attachments = make(map[string]any)
	}
	e.attachments[key] = value
}

// Get returns a value stored with Set
func (e *Emitter) Get(key string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	value, ok := e.attachments[key]
	return value, ok
}
