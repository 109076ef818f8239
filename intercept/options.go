package intercept

import (
	"github.com/KOMKZ/go-yogan-intercept/event"
	"github.com/KOMKZ/go-yogan-intercept/logger"
)

type options struct {
	logger          *logger.CtxZapLogger
	maxInterceptors int
	onWarning       WarningHandler
	metrics         *ChainMetrics
	baseOptions     []event.Option
}

func defaultOptions() options {
	return options{maxInterceptors: DefaultMaxInterceptors}
}

// Option configures an Emitter
type Option func(*options)

// WithLogger sets the logger (defaults to the "intercept" module logger)
func WithLogger(l *logger.CtxZapLogger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxInterceptors sets the initial per-event interceptor ceiling (0 disables the warning)
// Negative values are ignored
func WithMaxInterceptors(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxInterceptors = n
		}
	}
}

// WithWarningHandler receives every leak warning in addition to the WARN log entry
func WithWarningHandler(h WarningHandler) Option {
	return func(o *options) {
		o.onWarning = h
	}
}

// WithMetrics records chain outcomes and leak warnings
func WithMetrics(m *ChainMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithBaseOptions configures the event.Emitter built by New (ignored by Patch)
func WithBaseOptions(opts ...event.Option) Option {
	return func(o *options) {
		o.baseOptions = append(o.baseOptions, opts...)
	}
}
