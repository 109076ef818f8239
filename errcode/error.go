// Package errcode provides layered error codes shared by the emitter packages.
// Error code format: MMBBBB (MM = module code 2 digits, BBBB = business code 4 digits)
package errcode

import "fmt"

// LayeredError hierarchical error code
// Supports error chaining, dynamic messages and context data
type LayeredError struct {
	module string         // Module name (event, intercept)
	code   int            // Complete error code (MMBBBB, e.g., 210001)
	msgKey string         // Message key (e.g., "error.intercept.invalid_interceptor")
	msg    string         // Default message
	data   map[string]any // context data
	cause  error          // Original error (error chain)
}

// New creates a layered error code
// moduleCode: Module code (10-99)
// businessCode: Business code (0001-9999)
func New(moduleCode, businessCode int, module, msgKey, msg string) *LayeredError {
	return &LayeredError{
		module: module,
		code:   moduleCode*10000 + businessCode,
		msgKey: msgKey,
		msg:    msg,
		data:   make(map[string]any),
	}
}

// Error implements the error interface
func (e *LayeredError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.cause)
	}
	return e.msg
}

// Code returns the full error code
func (e *LayeredError) Code() int {
	return e.code
}

// Module returns the module name
func (e *LayeredError) Module() string {
	return e.module
}

// MsgKey returns the message key
func (e *LayeredError) MsgKey() string {
	return e.msgKey
}

// Message returns the message without the cause
func (e *LayeredError) Message() string {
	return e.msg
}

// Data returns the context data
func (e *LayeredError) Data() map[string]any {
	return e.data
}

// Unwrap supports Go 1.13+ error chains
func (e *LayeredError) Unwrap() error {
	return e.cause
}

// Is matches any LayeredError carrying the same code
func (e *LayeredError) Is(target error) bool {
	t, ok := target.(*LayeredError)
	if !ok {
		return false
	}
	return e.code == t.code
}

// WithMsgf formats a replacement message (returns a new instance)
func (e *LayeredError) WithMsgf(format string, args ...any) *LayeredError {
	clone := *e
	clone.msg = fmt.Sprintf(format, args...)
	return &clone
}

// WithData adds a single context value (returns a new instance)
func (e *LayeredError) WithData(key string, value any) *LayeredError {
	clone := *e
	clone.data = make(map[string]any, len(e.data)+1)
	for k, v := range e.data {
		clone.data[k] = v
	}
	clone.data[key] = value
	return &clone
}

// Wrap attaches the original error (returns a new instance)
func (e *LayeredError) Wrap(cause error) *LayeredError {
	if cause == nil {
		return e
	}
	clone := *e
	clone.cause = cause
	return &clone
}

// String returns a debug representation
func (e *LayeredError) String() string {
	if e.cause != nil {
		return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s, cause:%v}",
			e.code, e.module, e.msg, e.cause)
	}
	return fmt.Sprintf("LayeredError{code:%d, module:%s, msg:%s}",
		e.code, e.module, e.msg)
}
