package intercept

import "github.com/KOMKZ/go-yogan-intercept/errcode"

// Module code 21 = intercept
const moduleCode = 21

// ErrInvalidInterceptor a nil interceptor handle or function was passed
var ErrInvalidInterceptor = errcode.New(moduleCode, 1, "intercept", "error.intercept.invalid_interceptor",
	"interceptor must be a non-nil function")

// ErrInvalidMaxInterceptors a negative interceptor ceiling was passed
var ErrInvalidMaxInterceptors = errcode.New(moduleCode, 2, "intercept", "error.intercept.invalid_max_interceptors",
	"max interceptors must be a non-negative number")
