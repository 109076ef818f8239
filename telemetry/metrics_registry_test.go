package telemetry

import (
	"context"
	"testing"

	"github.com/KOMKZ/go-yogan-intercept/intercept"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type stubProvider struct {
	name       string
	enabled    bool
	err        error
	registered metric.Meter
}

func (p *stubProvider) MetricsName() string    { return p.name }
func (p *stubProvider) IsMetricsEnabled() bool { return p.enabled }
func (p *stubProvider) RegisterMetrics(meter metric.Meter) error {
	p.registered = meter
	return p.err
}

func newTestRegistry(opts ...MetricsRegistryOption) *MetricsRegistry {
	return NewMetricsRegistry(noop.NewMeterProvider(), append([]MetricsRegistryOption{WithLogger(nopLogger())}, opts...)...)
}

func TestMetricsRegistry_Register(t *testing.T) {
	r := newTestRegistry()

	p := &stubProvider{name: "intercept", enabled: true}
	require.NoError(t, r.Register(p))
	assert.NotNil(t, p.registered)
	assert.Equal(t, 1, r.GetProviderCount())

	assert.ErrorContains(t, r.Register(&stubProvider{name: "intercept", enabled: true}), "already registered")
	assert.ErrorContains(t, r.Register(nil), "nil")
	assert.ErrorContains(t, r.Register(&stubProvider{enabled: true}), "empty")
	assert.ErrorContains(t, r.Register(&stubProvider{name: "bad", enabled: true, err: assert.AnError}), "register metrics")
	assert.Len(t, r.GetProviders(), 1)

	got, ok := r.Lookup("intercept")
	require.True(t, ok)
	assert.Same(t, p, got)
	_, ok = r.Lookup("bad")
	assert.False(t, ok, "failed registration is not bound")
}

func TestMetricsRegistry_ScopeName(t *testing.T) {
	assert.Equal(t, "yogan_intercept", newTestRegistry().scopeName("intercept"))
	assert.Equal(t, "intercept", newTestRegistry(WithNamespace("")).scopeName("intercept"))
}

func TestMetricsRegistry_ProvidersInRegistrationOrder(t *testing.T) {
	r := newTestRegistry()
	b := &stubProvider{name: "b", enabled: true}
	a := &stubProvider{name: "a", enabled: true}
	require.NoError(t, r.Register(b))
	require.NoError(t, r.Register(a))

	providers := r.GetProviders()
	require.Len(t, providers, 2)
	assert.Same(t, b, providers[0])
	assert.Same(t, a, providers[1])
}

func TestMetricsRegistry_SkipsDisabled(t *testing.T) {
	r := newTestRegistry()

	off := &stubProvider{name: "off"}
	require.NoError(t, r.Register(off))
	assert.Nil(t, off.registered)

	r.SetEnabled(false)
	on := &stubProvider{name: "on", enabled: true}
	require.NoError(t, r.Register(on))
	assert.Nil(t, on.registered)
	assert.Zero(t, r.GetProviderCount())
}

func TestMetricsRegistry_MetersAreCached(t *testing.T) {
	r := newTestRegistry(WithNamespace("app"), WithBaseLabels([]attribute.KeyValue{attribute.String("env", "test")}))

	r.GetMeter("intercept")
	r.GetMeter("intercept")
	r.GetMeter("event")
	assert.Len(t, r.meters, 2)

	labels := r.GetBaseLabels()
	labels[0] = attribute.String("changed", "x")
	assert.Equal(t, "env", string(r.GetBaseLabels()[0].Key))
}

func TestMetricsRegistry_InterceptChainMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	r := NewMetricsRegistry(provider, WithNamespace("app"), WithLogger(nopLogger()))
	chainMetrics := intercept.NewChainMetrics(intercept.MetricsConfig{Enabled: true})
	require.NoError(t, r.Register(chainMetrics))

	em := intercept.New(intercept.WithLogger(nopLogger()), intercept.WithMetrics(chainMetrics))
	em.Intercept("data", intercept.NewInterceptor(func(next intercept.Next, args ...any) {
		next(nil, args...)
	}))
	em.Emit("data", 1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	assert.Equal(t, "app_intercept", rm.ScopeMetrics[0].Scope.Name)

	names := make([]string, 0)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "intercept_chains_started_total")
	assert.Contains(t, names, "intercept_registered_interceptors")
}
