package intercept

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsConfig holds configuration for interceptor chain metrics
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ChainMetrics implements component.MetricsProvider for interceptor chains.
// A nil *ChainMetrics records nothing.
type ChainMetrics struct {
	config     MetricsConfig
	registered bool
	mu         sync.RWMutex

	chainsStarted   metric.Int64Counter
	chainsCompleted metric.Int64Counter
	chainsAborted   metric.Int64Counter
	leakWarnings    metric.Int64Counter
	interceptors    metric.Int64ObservableGauge

	interceptorCountCallback func() int64
}

// NewChainMetrics creates a new chain metrics provider
func NewChainMetrics(cfg MetricsConfig) *ChainMetrics {
	return &ChainMetrics{config: cfg}
}

// MetricsName returns the metrics group name
func (m *ChainMetrics) MetricsName() string {
	return "intercept"
}

// IsMetricsEnabled returns whether metrics collection is enabled
func (m *ChainMetrics) IsMetricsEnabled() bool {
	return m != nil && m.config.Enabled
}

// RegisterMetrics registers all chain metrics with the provided Meter
func (m *ChainMetrics) RegisterMetrics(meter metric.Meter) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	var err error
	m.chainsStarted, err = meter.Int64Counter(
		"intercept_chains_started_total",
		metric.WithDescription("Emissions that entered an interceptor chain"),
		metric.WithUnit("{chain}"),
	)
	if err != nil {
		return err
	}

	m.chainsCompleted, err = meter.Int64Counter(
		"intercept_chains_completed_total",
		metric.WithDescription("Interceptor chains that reached the listeners"),
		metric.WithUnit("{chain}"),
	)
	if err != nil {
		return err
	}

	m.chainsAborted, err = meter.Int64Counter(
		"intercept_chains_aborted_total",
		metric.WithDescription("Interceptor chains aborted with an error"),
		metric.WithUnit("{chain}"),
	)
	if err != nil {
		return err
	}

	m.leakWarnings, err = meter.Int64Counter(
		"intercept_leak_warnings_total",
		metric.WithDescription("Interceptor lists that exceeded the configured ceiling"),
		metric.WithUnit("{warning}"),
	)
	if err != nil {
		return err
	}

	m.interceptors, err = meter.Int64ObservableGauge(
		"intercept_registered_interceptors",
		metric.WithDescription("Interceptors currently registered"),
		metric.WithUnit("{interceptor}"),
		metric.WithInt64Callback(m.collectInterceptorCount),
	)
	if err != nil {
		return err
	}

	m.registered = true
	return nil
}

func (m *ChainMetrics) collectInterceptorCount(_ context.Context, observer metric.Int64Observer) error {
	m.mu.RLock()
	callback := m.interceptorCountCallback
	m.mu.RUnlock()

	if callback != nil {
		observer.Observe(callback())
	}
	return nil
}

// SetInterceptorCountCallback sets the source of the registered-interceptors gauge
func (m *ChainMetrics) SetInterceptorCountCallback(callback func() int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interceptorCountCallback = callback
}

// RecordStarted records an emission entering a chain
func (m *ChainMetrics) RecordStarted(ctx context.Context, eventName string) {
	if counter := m.counter(func() metric.Int64Counter { return m.chainsStarted }); counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", eventName)))
	}
}

// RecordCompleted records a chain reaching the listeners
func (m *ChainMetrics) RecordCompleted(ctx context.Context, eventName string) {
	if counter := m.counter(func() metric.Int64Counter { return m.chainsCompleted }); counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", eventName)))
	}
}

// RecordAborted records a chain aborted by an interceptor error
func (m *ChainMetrics) RecordAborted(ctx context.Context, eventName string) {
	if counter := m.counter(func() metric.Int64Counter { return m.chainsAborted }); counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", eventName)))
	}
}

// RecordLeakWarning records a leak warning
func (m *ChainMetrics) RecordLeakWarning(ctx context.Context, eventName string) {
	if counter := m.counter(func() metric.Int64Counter { return m.leakWarnings }); counter != nil {
		counter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", eventName)))
	}
}

// counter returns the instrument once metrics are registered and enabled
func (m *ChainMetrics) counter(get func() metric.Int64Counter) metric.Int64Counter {
	if m == nil || !m.config.Enabled {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.registered {
		return nil
	}
	return get()
}

// IsRegistered returns whether metrics have been registered
func (m *ChainMetrics) IsRegistered() bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registered
}
