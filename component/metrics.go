package component

import "go.opentelemetry.io/otel/metric"

// MetricsProvider defines the interface for components that provide metrics.
//
//	func (c *Component) MetricsName() string {
//	    return "intercept"
//	}
type MetricsProvider interface {
	// MetricsName returns the metrics group name (used for Meter naming).
	MetricsName() string

	// RegisterMetrics registers all metrics for this component.
	// Called after component Init.
	RegisterMetrics(meter metric.Meter) error

	// IsMetricsEnabled returns whether metrics collection is enabled for this component.
	IsMetricsEnabled() bool
}
