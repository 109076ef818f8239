package intercept

import (
	"context"
	"fmt"
	"strings"

	"github.com/KOMKZ/go-yogan-intercept/component"
)

// HealthChecker reports an unhealthy emitter when any event holds more interceptors than the ceiling
type HealthChecker struct {
	emitter *Emitter
}

// NewHealthChecker creates a health checker for em
func NewHealthChecker(em *Emitter) *HealthChecker {
	return &HealthChecker{emitter: em}
}

// Name implements component.HealthChecker
func (h *HealthChecker) Name() string {
	return component.ComponentIntercept
}

// Check implements component.HealthChecker
func (h *HealthChecker) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if h.emitter == nil {
		return fmt.Errorf("intercept emitter not available")
	}

	limit := h.emitter.MaxInterceptors()
	if limit <= 0 {
		return nil
	}

	var leaking []string
	for _, name := range h.emitter.InterceptedEvents() {
		if n := h.emitter.InterceptorCount(name); n > limit {
			leaking = append(leaking, fmt.Sprintf("%s=%d", name, n))
		}
	}
	if len(leaking) > 0 {
		return fmt.Errorf("possible interceptor leak (max %d): %s", limit, strings.Join(leaking, ", "))
	}
	return nil
}

// GetHealthChecker implements component.HealthCheckProvider (nil while disabled)
func (c *Component) GetHealthChecker() component.HealthChecker {
	if !c.IsEnabled() {
		return nil
	}
	return NewHealthChecker(c.emitter)
}

var _ component.HealthCheckProvider = (*Component)(nil)
