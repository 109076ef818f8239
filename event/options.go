package event

import "github.com/KOMKZ/go-yogan-intercept/logger"

// Option Emitter configuration options
type Option func(*Emitter)

// WithLogger sets the logger used for leak warnings
func WithLogger(l *logger.CtxZapLogger) Option {
	return func(e *Emitter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxListeners sets the per-event listener ceiling (0 disables the warning)
// Negative values are ignored
func WithMaxListeners(n int) Option {
	return func(e *Emitter) {
		if n >= 0 {
			e.maxListeners = n
		}
	}
}
