package intercept

import (
	"context"
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-intercept/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestChainMetrics_MetricsProvider(t *testing.T) {
	m := NewChainMetrics(MetricsConfig{Enabled: true})
	assert.Equal(t, "intercept", m.MetricsName())
	assert.True(t, m.IsMetricsEnabled())
	assert.False(t, m.IsRegistered())

	assert.False(t, NewChainMetrics(MetricsConfig{}).IsMetricsEnabled())

	var nilMetrics *ChainMetrics
	assert.False(t, nilMetrics.IsMetricsEnabled())
	assert.False(t, nilMetrics.IsRegistered())
	assert.NotPanics(t, func() {
		nilMetrics.RecordStarted(context.Background(), "x")
		nilMetrics.SetInterceptorCountCallback(func() int64 { return 1 })
	})
}

func TestChainMetrics_RegisterIdempotent(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	m := NewChainMetrics(MetricsConfig{Enabled: true})

	require.NoError(t, m.RegisterMetrics(meter))
	require.NoError(t, m.RegisterMetrics(meter))
	assert.True(t, m.IsRegistered())
	assert.NotNil(t, m.chainsStarted)
	assert.NotNil(t, m.interceptors)
}

func TestChainMetrics_RecordBeforeRegister(t *testing.T) {
	m := NewChainMetrics(MetricsConfig{Enabled: true})
	assert.NotPanics(t, func() {
		ctx := context.Background()
		m.RecordStarted(ctx, "x")
		m.RecordCompleted(ctx, "x")
		m.RecordAborted(ctx, "x")
		m.RecordLeakWarning(ctx, "x")
	})
}

// collect reads every int64 sum and gauge by metric name
func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	values := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					values[m.Name] += dp.Value
				}
			}
		}
	}
	return values
}

func TestChainMetrics_RecordsChainOutcomes(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m := NewChainMetrics(MetricsConfig{Enabled: true})
	require.NoError(t, m.RegisterMetrics(provider.Meter("intercept")))

	em := newTestEmitter(WithMetrics(m), WithMaxInterceptors(1))
	em.On(event.EventError, event.NewListener(func(...any) {}))

	em.Intercept("ok", passThrough())
	em.Intercept("fail", NewInterceptor(func(next Next, args ...any) { next(errors.New("no")) }))
	em.Intercept("ok", passThrough())

	em.Emit("ok")
	em.Emit("ok")
	em.Emit("fail")
	em.Emit("plain")

	values := collect(t, reader)
	assert.EqualValues(t, 3, values["intercept_chains_started_total"])
	assert.EqualValues(t, 2, values["intercept_chains_completed_total"])
	assert.EqualValues(t, 1, values["intercept_chains_aborted_total"])
	assert.EqualValues(t, 1, values["intercept_leak_warnings_total"])
	assert.EqualValues(t, 3, values["intercept_registered_interceptors"])
}

func TestChainMetrics_DisabledRecordsNothing(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m := NewChainMetrics(MetricsConfig{Enabled: false})
	require.NoError(t, m.RegisterMetrics(provider.Meter("intercept")))

	em := newTestEmitter(WithMetrics(m))
	em.Intercept("ok", passThrough())
	em.Emit("ok")

	values := collect(t, reader)
	assert.Zero(t, values["intercept_chains_started_total"])
}
