// Package intercept adds ordered interceptor chains to an event emitter.
//
// Interceptors registered for an event name run in registration order before the event's
// listeners. Each receives the arguments produced by the previous step and a continuation;
// calling next(nil, args...) passes control on, calling next(err) aborts the chain and
// emits "error" on the same emitter. Interceptors that never call next stall the chain.
//
//	em := intercept.New()
//	em.Intercept("order.created", intercept.NewInterceptor(func(next intercept.Next, args ...any) {
//		next(nil, enrich(args[0]))
//	}))
//	em.On("order.created", event.NewListener(func(args ...any) { ... }))
//	em.Emit("order.created", order)
package intercept

// Interceptor lifecycle event names
const (
	// EventNewInterceptor is emitted with (name, *Interceptor) before an interceptor is appended
	EventNewInterceptor = "newInterceptor"
	// EventRemoveInterceptor is emitted with (name, *Interceptor) after an interceptor is removed
	EventRemoveInterceptor = "removeInterceptor"
)

// DefaultMaxInterceptors interceptor count per event above which a leak warning is raised
const DefaultMaxInterceptors = 10

// Next continuation handed to every interceptor
// A non-nil err aborts the chain; otherwise args feed the next step.
type Next func(err error, args ...any)

// InterceptorFunc interceptor body
type InterceptorFunc func(next Next, args ...any)

// Interceptor registered interceptor handle, identified by pointer
type Interceptor struct {
	fn InterceptorFunc
}

// NewInterceptor creates an interceptor handle
func NewInterceptor(fn InterceptorFunc) *Interceptor {
	return &Interceptor{fn: fn}
}

// Call invokes the interceptor
func (i *Interceptor) Call(next Next, args ...any) {
	i.fn(next, args...)
}

func (i *Interceptor) valid() bool {
	return i != nil && i.fn != nil
}
