package telemetry

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-intercept/component"
)

// HealthChecker reports whether an enabled manager still owns live providers
type HealthChecker struct {
	manager *Manager
}

// Name implements component.HealthChecker
func (h *HealthChecker) Name() string {
	return component.ComponentTelemetry
}

// Check implements component.HealthChecker
func (h *HealthChecker) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := h.manager
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.config.Enabled {
		return nil
	}
	if m.tracerProvider == nil {
		return fmt.Errorf("tracer provider not running")
	}
	if m.config.Metrics.Enabled && m.metricsManager == nil {
		return fmt.Errorf("meter provider not running")
	}
	return nil
}

// GetHealthChecker implements component.HealthCheckProvider
func (m *Manager) GetHealthChecker() component.HealthChecker {
	return &HealthChecker{manager: m}
}

var _ component.HealthCheckProvider = (*Manager)(nil)
