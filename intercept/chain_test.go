package intercept

import (
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-intercept/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== Pass-through =====

func TestEmit_NoInterceptors_MatchesBase(t *testing.T) {
	em := newTestEmitter()
	plain := newTestBase()

	assert.Equal(t, plain.Emit("data", 1), em.Emit("data", 1))

	var fromEm, fromPlain recorder
	em.On("data", fromEm.listener())
	plain.On("data", fromPlain.listener())

	assert.Equal(t, plain.Emit("data", 1, "two"), em.Emit("data", 1, "two"))
	assert.Equal(t, fromPlain.calls, fromEm.calls)
}

func TestEmit_RemovedInterceptors_PassThrough(t *testing.T) {
	em := newTestEmitter()
	i := NewInterceptor(func(next Next, args ...any) { next(nil, "changed") })
	em.Intercept("data", i).RemoveInterceptor("data", i)

	var rec recorder
	em.On("data", rec.listener())

	assert.True(t, em.Emit("data", "original"))
	assert.Equal(t, [][]any{{"original"}}, rec.calls)
}

// ===== Transformation =====

func TestEmit_SingleInterceptorTransforms(t *testing.T) {
	em := newTestEmitter()

	em.Intercept("aaaa", NewInterceptor(func(next Next, args ...any) {
		next(nil, "intercepted "+args[0].(string))
	}))

	var got string
	em.On("aaaa", event.NewListener(func(args ...any) {
		got = args[0].(string)
	}))

	assert.True(t, em.Emit("aaaa", "myData"))
	assert.Equal(t, "intercepted myData", got)
}

func TestEmit_ChainedInterceptors(t *testing.T) {
	em := newTestEmitter()

	var order []string
	em.Intercept("data", NewInterceptor(func(next Next, args ...any) {
		order = append(order, "first")
		assert.Equal(t, []any{"value"}, args)
		next(nil, "secondValue", "anotherValue")
	})).Intercept("data", NewInterceptor(func(next Next, args ...any) {
		order = append(order, "second")
		assert.Equal(t, []any{"secondValue", "anotherValue"}, args)
		next(nil, "thirdValue")
	})).Intercept("data", NewInterceptor(func(next Next, args ...any) {
		order = append(order, "third")
		assert.Equal(t, []any{"thirdValue"}, args)
		next(nil, "finalValue")
	}))

	var rec recorder
	em.On("data", rec.listener())

	assert.True(t, em.Emit("data", "value"))
	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.Equal(t, [][]any{{"finalValue"}}, rec.calls)
}

func TestEmit_ChainWithoutListeners(t *testing.T) {
	em := newTestEmitter()
	ran := false
	em.Intercept("data", NewInterceptor(func(next Next, args ...any) {
		ran = true
		next(nil, args...)
	}))

	assert.False(t, em.Emit("data"))
	assert.True(t, ran)
}

func TestEmit_InterceptorDropsArguments(t *testing.T) {
	em := newTestEmitter()
	em.Intercept("data", NewInterceptor(func(next Next, args ...any) { next(nil) }))

	var rec recorder
	em.On("data", rec.listener())

	assert.True(t, em.Emit("data", 1, 2, 3))
	require.Equal(t, 1, rec.count())
	assert.Empty(t, rec.calls[0])
}

// ===== Abort =====

func TestEmit_ErrorAbortsChain(t *testing.T) {
	em := newTestEmitter()
	boom := errors.New("boom")

	thirdRan := false
	em.Intercept("data", passThrough()).
		Intercept("data", NewInterceptor(func(next Next, args ...any) { next(boom, "ignored") })).
		Intercept("data", NewInterceptor(func(next Next, args ...any) {
			thirdRan = true
			next(nil, args...)
		}))

	var listener, errs recorder
	em.On("data", listener.listener())
	em.On(event.EventError, errs.listener())

	assert.False(t, em.Emit("data", "x"))
	assert.False(t, thirdRan)
	assert.Equal(t, 0, listener.count())
	assert.Equal(t, [][]any{{boom}}, errs.calls)
}

func TestEmit_ErrorWithoutHandlerPanics(t *testing.T) {
	em := newTestEmitter()
	boom := errors.New("boom")
	em.Intercept("data", NewInterceptor(func(next Next, args ...any) { next(boom) }))

	assert.PanicsWithValue(t, boom, func() { em.Emit("data") })
}

func TestEmit_ErrorEventIsIntercepted(t *testing.T) {
	em := newTestEmitter()
	boom := errors.New("boom")
	wrapped := errors.New("wrapped")

	em.Intercept("data", NewInterceptor(func(next Next, args ...any) { next(boom) }))
	em.Intercept(event.EventError, NewInterceptor(func(next Next, args ...any) {
		assert.Equal(t, boom, args[0])
		next(nil, wrapped)
	}))

	var errs recorder
	em.On(event.EventError, errs.listener())

	em.Emit("data")
	assert.Equal(t, [][]any{{wrapped}}, errs.calls)
}

// ===== Continuation edge cases =====

func TestEmit_ContinuationNeverCalled(t *testing.T) {
	em := newTestEmitter()

	var pending Next
	em.Intercept("data", NewInterceptor(func(next Next, args ...any) {
		pending = next
	}))

	var rec recorder
	em.On("data", rec.listener())

	assert.False(t, em.Emit("data", "x"), "the chain has not completed when Emit returns")
	assert.Equal(t, 0, rec.count())

	require.NotNil(t, pending)
	pending(nil, "late")
	assert.Equal(t, [][]any{{"late"}}, rec.calls)
}

func TestEmit_ContinuationCalledTwice(t *testing.T) {
	em := newTestEmitter()
	em.Intercept("data", NewInterceptor(func(next Next, args ...any) {
		next(nil, "once")
		next(nil, "twice")
	}))

	var rec recorder
	em.On("data", rec.listener())

	assert.True(t, em.Emit("data"))
	assert.Equal(t, [][]any{{"once"}, {"twice"}}, rec.calls)
}

func TestEmit_InterceptorPanicPropagates(t *testing.T) {
	em := newTestEmitter()
	em.Intercept("data", NewInterceptor(func(next Next, args ...any) {
		panic("interceptor failed")
	}))

	var rec recorder
	em.On("data", rec.listener())

	assert.PanicsWithValue(t, "interceptor failed", func() { em.Emit("data") })
	assert.Equal(t, 0, rec.count())
}

// ===== Re-entrancy =====

func TestEmit_NestedEmissionCompletesFirst(t *testing.T) {
	em := newTestEmitter()

	var order []string
	em.Intercept("outer", NewInterceptor(func(next Next, args ...any) {
		order = append(order, "outer:interceptor")
		em.Emit("inner", "payload")
		order = append(order, "outer:after-inner")
		next(nil, args...)
	}))
	em.Intercept("inner", NewInterceptor(func(next Next, args ...any) {
		order = append(order, "inner:interceptor")
		next(nil, args...)
	}))
	em.On("inner", event.NewListener(func(args ...any) { order = append(order, "inner:listener") }))
	em.On("outer", event.NewListener(func(args ...any) { order = append(order, "outer:listener") }))

	assert.True(t, em.Emit("outer"))
	assert.Equal(t, []string{
		"outer:interceptor",
		"inner:interceptor",
		"inner:listener",
		"outer:after-inner",
		"outer:listener",
	}, order)
}

func TestEmit_SameEventReentrant(t *testing.T) {
	em := newTestEmitter()

	em.Intercept("count", NewInterceptor(func(next Next, args ...any) {
		n := args[0].(int)
		if n < 3 {
			em.Emit("count", n+1)
		}
		next(nil, n*10)
	}))

	var rec recorder
	em.On("count", rec.listener())

	assert.True(t, em.Emit("count", 1))
	assert.Equal(t, [][]any{{30}, {20}, {10}}, rec.calls)
}

func TestEmit_ChainUsesSnapshot(t *testing.T) {
	em := newTestEmitter()

	lastRuns := 0
	last := NewInterceptor(func(next Next, args ...any) {
		lastRuns++
		next(nil, args...)
	})
	first := NewInterceptor(func(next Next, args ...any) {
		em.RemoveInterceptor("data", last)
		next(nil, args...)
	})
	em.Intercept("data", first).Intercept("data", last)

	var rec recorder
	em.On("data", rec.listener())

	assert.True(t, em.Emit("data", "x"))
	assert.Equal(t, 1, lastRuns, "removal during a chain applies to the next emission")
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, []*Interceptor{first}, em.Interceptors("data"))

	assert.True(t, em.Emit("data", "y"))
	assert.Equal(t, 1, lastRuns)
	assert.Equal(t, 2, rec.count())
}
