package event

// ListenerFunc receives the emitted arguments
type ListenerFunc func(args ...any)

// Listener registered listener handle
// Go funcs are not comparable, so a listener is identified by its handle pointer
type Listener struct {
	fn ListenerFunc

	// origin is the handle wrapped by Once
	origin *Listener
}

// NewListener creates a listener handle
//
//	l := event.NewListener(func(args ...any) { ... })
//	em.On("user.login", l)
//	em.Off("user.login", l)
func NewListener(fn ListenerFunc) *Listener {
	return &Listener{fn: fn}
}

// Call invokes the listener
func (l *Listener) Call(args ...any) {
	l.fn(args...)
}

// matches reports whether this entry was registered for target (directly or via Once)
func (l *Listener) matches(target *Listener) bool {
	return l == target || (l.origin != nil && l.origin == target)
}

func (l *Listener) valid() bool {
	return l != nil && l.fn != nil
}

// public returns the handle callers registered (unwraps Once)
func (l *Listener) public() *Listener {
	if l.origin != nil {
		return l.origin
	}
	return l
}
