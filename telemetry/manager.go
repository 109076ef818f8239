// Package telemetry wires OpenTelemetry tracing and metrics for the host application
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/KOMKZ/go-yogan-intercept/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	otelTrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Manager Telemetry Manager
// Owns the TracerProvider, the MetricsManager and the MetricsRegistry.
type Manager struct {
	config          Config
	logger          *logger.CtxZapLogger
	tracerProvider  *trace.TracerProvider
	metricsManager  *MetricsManager
	metricsRegistry *MetricsRegistry
	metricReader    sdkmetric.Reader
	mu              sync.RWMutex
}

// ManagerOption configures the Manager
type ManagerOption func(*Manager)

// WithMetricReader replaces the exporter-backed periodic reader (tests use a ManualReader)
func WithMetricReader(reader sdkmetric.Reader) ManagerOption {
	return func(m *Manager) {
		m.metricReader = reader
	}
}

// NewManager creates a telemetry manager
func NewManager(config Config, log *logger.CtxZapLogger, opts ...ManagerOption) *Manager {
	if log == nil {
		log = logger.GetLogger("yogan")
	}
	m := &Manager{
		config: config,
		logger: log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start builds the providers; a disabled manager only gets a registry over the global no-op provider
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.config.Enabled {
		m.metricsRegistry = NewMetricsRegistry(nil,
			WithNamespace(m.config.Metrics.Namespace),
			WithLogger(m.logger))
		m.metricsRegistry.SetEnabled(false)
		m.logger.InfoCtx(ctx, "Telemetry disabled, skipping initialization")
		return nil
	}

	res, err := m.createResource(ctx)
	if err != nil {
		return fmt.Errorf("create resource failed: %w", err)
	}

	exporter, err := m.createSpanExporter(ctx)
	if err != nil {
		return fmt.Errorf("create exporter failed: %w", err)
	}

	opts := []trace.TracerProviderOption{
		trace.WithResource(res),
		trace.WithSampler(m.createSampler()),
	}
	if m.config.Batch.Enabled {
		opts = append(opts, trace.WithBatcher(exporter,
			trace.WithBatchTimeout(m.config.Batch.ScheduleDelay),
			trace.WithExportTimeout(m.config.Batch.ExportTimeout),
		))
	} else {
		opts = append(opts, trace.WithSyncer(exporter))
	}
	m.tracerProvider = trace.NewTracerProvider(opts...)

	otel.SetTracerProvider(m.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if m.config.Metrics.Enabled {
		m.metricsManager, err = NewMetricsManager(ctx, m.config, res, m.metricReader)
		if err != nil {
			return fmt.Errorf("create metrics manager failed: %w", err)
		}
		m.metricsRegistry = NewMetricsRegistry(m.metricsManager.MeterProvider(),
			WithNamespace(m.config.Metrics.Namespace),
			WithBaseLabels(m.buildBaseLabels()),
			WithLogger(m.logger))
	} else {
		m.metricsRegistry = NewMetricsRegistry(nil,
			WithNamespace(m.config.Metrics.Namespace),
			WithLogger(m.logger))
		m.metricsRegistry.SetEnabled(false)
	}

	m.logger.InfoCtx(ctx, "✅ Telemetry started",
		zap.String("service_name", m.config.ServiceName),
		zap.String("exporter", m.config.Exporter.Type),
		zap.String("sampler", m.config.Sampler.Type),
		zap.Bool("metrics", m.config.Metrics.Enabled),
	)
	return nil
}

// Shutdown flushes and stops both providers (samber/do shutdown hook)
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	if m.metricsManager != nil {
		if err := m.metricsManager.Shutdown(ctx); err != nil {
			m.logger.ErrorCtx(ctx, "Failed to shutdown Metrics", zap.Error(err))
			errs = append(errs, err)
		}
		m.metricsManager = nil
	}
	if m.tracerProvider != nil {
		if err := m.tracerProvider.Shutdown(ctx); err != nil {
			m.logger.ErrorCtx(ctx, "Failed to shutdown TracerProvider", zap.Error(err))
			errs = append(errs, fmt.Errorf("shutdown tracer provider failed: %w", err))
		}
		m.tracerProvider = nil
	}
	return errors.Join(errs...)
}

// GetTracer obtains a tracer (global no-op tracer when disabled)
func (m *Manager) GetTracer(name string) otelTrace.Tracer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.tracerProvider == nil {
		return otel.GetTracerProvider().Tracer(name)
	}
	return m.tracerProvider.Tracer(name)
}

// GetMetricsManager obtains the Metrics manager (nil unless metrics are enabled)
func (m *Manager) GetMetricsManager() *MetricsManager {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metricsManager
}

// GetMetricsRegistry obtains the metrics registry (nil before Start)
func (m *Manager) GetMetricsRegistry() *MetricsRegistry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metricsRegistry
}

// IsEnabled whether enabled
func (m *Manager) IsEnabled() bool {
	return m.config.Enabled
}

// GetConfig Retrieve configuration
func (m *Manager) GetConfig() Config {
	return m.config
}

func (m *Manager) createSampler() trace.Sampler {
	switch m.config.Sampler.Type {
	case "always_on":
		return trace.AlwaysSample()
	case "always_off":
		return trace.NeverSample()
	case "trace_id_ratio":
		return trace.TraceIDRatioBased(m.config.Sampler.Ratio)
	default:
		return trace.ParentBased(trace.AlwaysSample())
	}
}

// buildBaseLabels global labels attached by the registry
func (m *Manager) buildBaseLabels() []attribute.KeyValue {
	labels := []attribute.KeyValue{
		attribute.String("service.name", m.config.ServiceName),
		attribute.String("service.version", m.config.ServiceVersion),
	}
	for k, v := range m.config.Metrics.Labels {
		labels = append(labels, attribute.String(k, v))
	}
	return labels
}
