package intercept

import "fmt"

// MaxInterceptorsExceededWarning raised once per event list when it grows past the ceiling
type MaxInterceptorsExceededWarning struct {
	EmitterID string
	Event     string
	Count     int
	Max       int
}

// Error implements error so warnings can be logged and wrapped like errors
func (w MaxInterceptorsExceededWarning) Error() string {
	return fmt.Sprintf("possible interceptor leak detected: %d %q interceptors added (max %d), use SetMaxInterceptors to raise the limit",
		w.Count, w.Event, w.Max)
}

// WarningHandler receives leak warnings
type WarningHandler func(w MaxInterceptorsExceededWarning)
