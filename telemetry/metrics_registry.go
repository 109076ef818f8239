package telemetry

import (
	"fmt"
	"sync"

	"github.com/KOMKZ/go-yogan-intercept/component"
	"github.com/KOMKZ/go-yogan-intercept/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// MetricsRegistry binds component.MetricsProviders to scoped meters of one MeterProvider
//
// Each provider name owns exactly one meter scope, "{namespace}_{name}", carrying the base
// labels as instrumentation attributes. Names are bound at most once.
type MetricsRegistry struct {
	mu sync.RWMutex

	mp         metric.MeterProvider
	namespace  string
	baseLabels []attribute.KeyValue
	disabled   bool
	log        *logger.CtxZapLogger

	meters map[string]metric.Meter
	bound  map[string]component.MetricsProvider
	order  []string
}

// MetricsRegistryOption configures the MetricsRegistry
type MetricsRegistryOption func(*MetricsRegistry)

// WithNamespace sets the scope prefix ("" leaves provider names unprefixed)
func WithNamespace(namespace string) MetricsRegistryOption {
	return func(r *MetricsRegistry) { r.namespace = namespace }
}

// WithBaseLabels sets the labels attached to every scope
func WithBaseLabels(labels []attribute.KeyValue) MetricsRegistryOption {
	return func(r *MetricsRegistry) { r.baseLabels = labels }
}

// WithLogger sets the registry logger
func WithLogger(l *logger.CtxZapLogger) MetricsRegistryOption {
	return func(r *MetricsRegistry) { r.log = l }
}

// NewMetricsRegistry creates a registry over mp (the global MeterProvider when nil)
func NewMetricsRegistry(mp metric.MeterProvider, opts ...MetricsRegistryOption) *MetricsRegistry {
	r := &MetricsRegistry{
		mp:        mp,
		namespace: "yogan",
		meters:    make(map[string]metric.Meter),
		bound:     make(map[string]component.MetricsProvider),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.mp == nil {
		r.mp = otel.GetMeterProvider()
	}
	if r.log == nil {
		r.log = logger.GetLogger("telemetry")
	}
	return r
}

// Register binds p to its scope and lets it create its instruments
// A disabled registry or provider is skipped without error; the binding is only kept when
// RegisterMetrics succeeds.
func (r *MetricsRegistry) Register(p component.MetricsProvider) error {
	if p == nil {
		return fmt.Errorf("metrics provider is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disabled {
		return nil
	}
	name := p.MetricsName()
	if !p.IsMetricsEnabled() {
		r.log.Debug("metrics disabled for provider", zap.String("provider", name))
		return nil
	}
	if name == "" {
		return fmt.Errorf("metrics provider name is empty")
	}
	if _, dup := r.bound[name]; dup {
		return fmt.Errorf("metrics provider %q already registered", name)
	}

	scope := r.scopeName(name)
	if err := p.RegisterMetrics(r.meterFor(name)); err != nil {
		return fmt.Errorf("register metrics for %q failed: %w", name, err)
	}

	r.bound[name] = p
	r.order = append(r.order, name)
	r.log.Info("metrics provider registered", zap.String("provider", name), zap.String("scope", scope))
	return nil
}

// Lookup returns the provider bound to name
func (r *MetricsRegistry) Lookup(name string) (component.MetricsProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.bound[name]
	return p, ok
}

// GetMeter returns the meter of the name scope, creating it on first use
func (r *MetricsRegistry) GetMeter(name string) metric.Meter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meterFor(name)
}

// meterFor requires r.mu held for writing
func (r *MetricsRegistry) meterFor(name string) metric.Meter {
	if m, ok := r.meters[name]; ok {
		return m
	}
	m := r.mp.Meter(r.scopeName(name), metric.WithInstrumentationAttributes(r.baseLabels...))
	r.meters[name] = m
	return m
}

func (r *MetricsRegistry) scopeName(name string) string {
	if r.namespace == "" {
		return name
	}
	return r.namespace + "_" + name
}

// GetBaseLabels returns a copy of the base labels
func (r *MetricsRegistry) GetBaseLabels() []attribute.KeyValue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]attribute.KeyValue(nil), r.baseLabels...)
}

// IsEnabled reports whether Register binds providers
func (r *MetricsRegistry) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.disabled
}

// SetEnabled switches registration on or off; existing bindings are kept
func (r *MetricsRegistry) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disabled = !enabled
}

// GetProviders returns the bound providers in registration order
func (r *MetricsRegistry) GetProviders() []component.MetricsProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]component.MetricsProvider, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.bound[name])
	}
	return out
}

// GetProviderCount number of bound providers
func (r *MetricsRegistry) GetProviderCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
