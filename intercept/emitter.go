package intercept

import (
	"context"

	"github.com/KOMKZ/go-yogan-intercept/event"
	"github.com/KOMKZ/go-yogan-intercept/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Base the emitter primitive an interceptor chain is layered on (satisfied by *event.Emitter)
type Base interface {
	// Emit invokes listeners in registration order and reports whether any ran
	Emit(name string, args ...any) bool
	// Listeners returns a snapshot of the listeners of name
	Listeners(name string) []*event.Listener
	// AddListener registers a listener, emitting "newListener"
	AddListener(name string, l *event.Listener)
	// RemoveListener removes a listener, emitting "removeListener" when something was removed
	RemoveListener(name string, l *event.Listener) bool
}

// attachable bases can hold the engine state on the instance itself (see event.Emitter.Set)
type attachable interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

const attachmentKey = "intercept.emitter"

// Emitter event emitter with per-event interceptor chains
type Emitter struct {
	base      Base
	id        string
	registry  *registry
	shim      *lifecycleShim
	logger    *logger.CtxZapLogger
	metrics   *ChainMetrics
	onWarning WarningHandler
}

// New creates an emitter with interceptor support built in
func New(opts ...Option) *Emitter {
	o := applyOptions(opts)

	baseOpts := o.baseOptions
	if o.logger != nil {
		baseOpts = append([]event.Option{event.WithLogger(o.logger)}, baseOpts...)
	}
	return augment(event.New(baseOpts...), o)
}

// Patch adds interceptor support to an existing base emitter
//
// Patching is idempotent: an *Emitter is returned unchanged, and a base that supports
// attachments (such as *event.Emitter) returns the Emitter created by the first Patch,
// keeping its interceptors and ceiling. Options only apply to the first Patch.
// Listener lifecycle notifications the base emits internally do not pass through interceptors.
func Patch(base Base, opts ...Option) *Emitter {
	if em, ok := base.(*Emitter); ok {
		return em
	}

	store, canAttach := base.(attachable)
	if canAttach {
		if existing, ok := store.Get(attachmentKey); ok {
			if em, ok := existing.(*Emitter); ok {
				return em
			}
		}
	}

	return augment(base, applyOptions(opts))
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// augment shared initialisation of New and Patch
// The engine is recorded on an attachable base so a later Patch finds it.
func augment(base Base, o options) *Emitter {
	em := &Emitter{
		base:      base,
		id:        uuid.NewString(),
		registry:  newRegistry(o.maxInterceptors),
		logger:    o.logger,
		metrics:   o.metrics,
		onWarning: o.onWarning,
	}

	if em.logger == nil {
		em.logger = logger.GetLogger("intercept")
	}
	em.logger = em.logger.With(zap.String("emitter_id", em.id))

	em.metrics.SetInterceptorCountCallback(func() int64 {
		return int64(em.registry.total())
	})

	em.shim = installShim(base)
	if store, ok := base.(attachable); ok {
		store.Set(attachmentKey, em)
	}
	return em
}

// ID unique id of this engine instance (present in logs and warnings)
func (e *Emitter) ID() string {
	return e.id
}

// Base returns the underlying emitter
func (e *Emitter) Base() Base {
	return e.base
}

// Emit runs the interceptor chain of name, then the listeners with the final arguments
//
// Without interceptors this is exactly Base.Emit. With interceptors the result is the
// listener result when the chain completes before the first interceptor returns, and false
// when the chain aborts or has not completed yet. An aborted chain emits "error" with the
// error passed to next.
func (e *Emitter) Emit(name string, args ...any) bool {
	chain := e.registry.snapshot(name)
	if len(chain) == 0 {
		return e.base.Emit(name, args...)
	}

	ctx := context.Background()
	e.metrics.RecordStarted(ctx, name)

	var (
		cursor int
		result bool
		next   Next
	)
	next = func(err error, out ...any) {
		if err != nil {
			e.logger.Debug("interceptor chain aborted",
				zap.String("event", name),
				zap.Int("position", cursor),
				zap.Error(err))
			e.metrics.RecordAborted(ctx, name)
			e.Emit(event.EventError, err)
			return
		}

		if cursor >= len(chain)-1 {
			e.metrics.RecordCompleted(ctx, name)
			result = e.base.Emit(name, out...)
			return
		}

		cursor++
		chain[cursor].Call(next, out...)
	}

	chain[0].Call(next, args...)
	return result
}

// Listeners returns the listeners of name, without the internal lifecycle listeners
func (e *Emitter) Listeners(name string) []*event.Listener {
	return e.shim.filter(name, e.base.Listeners(name))
}

// ListenerCount number of listeners visible through Listeners
func (e *Emitter) ListenerCount(name string) int {
	return len(e.Listeners(name))
}

// On registers a listener on the base emitter and returns e for chaining
func (e *Emitter) On(name string, l *event.Listener) *Emitter {
	e.base.AddListener(name, l)
	return e
}

// AddListener registers a listener on the base emitter
func (e *Emitter) AddListener(name string, l *event.Listener) {
	e.base.AddListener(name, l)
}

// Off removes a listener from the base emitter and returns e for chaining
func (e *Emitter) Off(name string, l *event.Listener) *Emitter {
	e.base.RemoveListener(name, l)
	return e
}

// RemoveListener removes a listener from the base emitter
func (e *Emitter) RemoveListener(name string, l *event.Listener) bool {
	return e.base.RemoveListener(name, l)
}

// Intercept appends an interceptor to the chain of name
//
// "newInterceptor" is emitted with (name, i) before the append. Crossing the ceiling raises
// one MaxInterceptorsExceededWarning per list. Panics with ErrInvalidInterceptor on a nil
// handle or function.
func (e *Emitter) Intercept(name string, i *Interceptor) *Emitter {
	if !i.valid() {
		panic(ErrInvalidInterceptor)
	}

	e.Emit(EventNewInterceptor, name, i)

	count, limit, warn := e.registry.add(name, i)
	if warn {
		e.warn(MaxInterceptorsExceededWarning{
			EmitterID: e.id,
			Event:     name,
			Count:     count,
			Max:       limit,
		})
	}
	return e
}

func (e *Emitter) warn(w MaxInterceptorsExceededWarning) {
	e.logger.Warn(w.Error(),
		zap.String("event", w.Event),
		zap.Int("count", w.Count),
		zap.Int("max", w.Max))
	e.metrics.RecordLeakWarning(context.Background(), w.Event)

	if e.onWarning != nil {
		e.onWarning(w)
	}
}

// Interceptors returns a copy of the chain of name (empty, never nil)
func (e *Emitter) Interceptors(name string) []*Interceptor {
	chain := e.registry.snapshot(name)
	if chain == nil {
		return []*Interceptor{}
	}
	return chain
}

// InterceptorCount length of the chain of name
func (e *Emitter) InterceptorCount(name string) int {
	return e.registry.count(name)
}

// InterceptedEvents event names that currently have interceptors, in first-registration order
func (e *Emitter) InterceptedEvents() []string {
	return e.registry.eventNames()
}

// RemoveInterceptor removes the most recently registered occurrence of i from the chain of name
//
// "removeInterceptor" is emitted with (name, i) after the removal; nothing is emitted when i
// is not registered. Panics with ErrInvalidInterceptor on a nil handle or function.
func (e *Emitter) RemoveInterceptor(name string, i *Interceptor) *Emitter {
	if !i.valid() {
		panic(ErrInvalidInterceptor)
	}

	if !e.registry.remove(name, i) {
		return e
	}

	e.Emit(EventRemoveInterceptor, name, i)
	return e
}

// RemoveAllInterceptors clears the chains of the given names, or every chain when none is given
//
// Interceptors are removed one at a time, last first, and each removal emits its own
// "removeInterceptor". When clearing everything the "removeInterceptor" chain goes last and
// the registry is reset afterwards.
func (e *Emitter) RemoveAllInterceptors(names ...string) *Emitter {
	if len(names) > 0 {
		for _, name := range names {
			e.removeAll(name)
		}
		return e
	}

	if e.registry.empty() {
		return e
	}

	for _, name := range e.registry.eventNames() {
		if name != EventRemoveInterceptor {
			e.removeAll(name)
		}
	}
	e.removeAll(EventRemoveInterceptor)
	e.registry.reset()
	return e
}

func (e *Emitter) removeAll(name string) {
	chain := e.registry.snapshot(name)
	for j := len(chain) - 1; j >= 0; j-- {
		e.RemoveInterceptor(name, chain[j])
	}
}

// SetMaxInterceptors sets the per-event interceptor ceiling (0 = never warn)
// Panics with ErrInvalidMaxInterceptors on a negative value
func (e *Emitter) SetMaxInterceptors(n int) *Emitter {
	if n < 0 {
		panic(ErrInvalidMaxInterceptors.WithData("value", n))
	}
	e.registry.setMax(n)
	return e
}

// MaxInterceptors returns the per-event interceptor ceiling
func (e *Emitter) MaxInterceptors() int {
	return e.registry.getMax()
}
