package intercept

import (
	"github.com/KOMKZ/go-yogan-intercept/event"
	"github.com/KOMKZ/go-yogan-intercept/logger"
	"go.uber.org/zap"
)

func nopLogger() *logger.CtxZapLogger {
	return logger.NewCtxZapLogger(zap.NewNop(), "intercept")
}

func newTestEmitter(opts ...Option) *Emitter {
	return New(append([]Option{WithLogger(nopLogger())}, opts...)...)
}

func newTestBase() *event.Emitter {
	return event.New(event.WithLogger(logger.NewCtxZapLogger(zap.NewNop(), "event")))
}

func passThrough() *Interceptor {
	return NewInterceptor(func(next Next, args ...any) {
		next(nil, args...)
	})
}

// recorder collects the arguments of every call
type recorder struct {
	calls [][]any
}

func (r *recorder) listener() *event.Listener {
	return event.NewListener(func(args ...any) {
		r.calls = append(r.calls, args)
	})
}

func (r *recorder) count() int {
	return len(r.calls)
}
