package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-intercept/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

func nopLogger() *logger.CtxZapLogger {
	return logger.NewCtxZapLogger(zap.NewNop(), "telemetry")
}

func enabledConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.ServiceName = "test-service"
	cfg.Exporter.Type = "noop"
	cfg.Batch.Enabled = false
	return cfg
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, enabledConfig().Validate())

	cfg := enabledConfig()
	cfg.ServiceName = ""
	assert.ErrorContains(t, cfg.Validate(), "service_name")

	cfg = enabledConfig()
	cfg.Exporter.Type = "jaeger"
	assert.ErrorContains(t, cfg.Validate(), "unsupported exporter type")

	cfg = enabledConfig()
	cfg.Exporter.Type = "otlp"
	cfg.Exporter.Endpoint = ""
	assert.ErrorContains(t, cfg.Validate(), "endpoint")

	cfg = enabledConfig()
	cfg.Sampler.Type = "trace_id_ratio"
	cfg.Sampler.Ratio = 1.5
	assert.ErrorContains(t, cfg.Validate(), "ratio")

	cfg = enabledConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.ExportInterval = 0
	assert.ErrorContains(t, cfg.Validate(), "export_interval")
}

func TestManager_Disabled(t *testing.T) {
	m := NewManager(DefaultConfig(), nopLogger())
	require.NoError(t, m.Start(context.Background()))

	assert.False(t, m.IsEnabled())
	assert.Nil(t, m.tracerProvider)
	assert.Nil(t, m.GetMetricsManager())
	require.NotNil(t, m.GetMetricsRegistry())
	assert.False(t, m.GetMetricsRegistry().IsEnabled())
	assert.NotNil(t, m.GetTracer("x"))
	assert.NoError(t, m.Shutdown(context.Background()))
}

func TestManager_TracingOnly(t *testing.T) {
	m := NewManager(enabledConfig(), nopLogger())
	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Shutdown(context.Background()) }()

	require.NotNil(t, m.tracerProvider)
	assert.Nil(t, m.GetMetricsManager())
	assert.False(t, m.GetMetricsRegistry().IsEnabled())

	_, span := m.GetTracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}

func TestManager_StdoutExporter(t *testing.T) {
	cfg := enabledConfig()
	cfg.Exporter.Type = "stdout"
	cfg.Batch.Enabled = true
	cfg.Batch.ScheduleDelay = time.Second

	m := NewManager(cfg, nopLogger())
	require.NoError(t, m.Start(context.Background()))
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.Nil(t, m.tracerProvider)
}

func TestManager_MetricsWithReader(t *testing.T) {
	cfg := enabledConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Labels = map[string]string{"env": "test"}

	reader := sdkmetric.NewManualReader()
	m := NewManager(cfg, nopLogger(), WithMetricReader(reader))
	require.NoError(t, m.Start(context.Background()))
	defer func() { _ = m.Shutdown(context.Background()) }()

	require.NotNil(t, m.GetMetricsManager())
	registry := m.GetMetricsRegistry()
	require.NotNil(t, registry)
	assert.True(t, registry.IsEnabled())
	assert.Len(t, registry.GetBaseLabels(), 3)
}

func TestManager_Samplers(t *testing.T) {
	for _, sampler := range []string{"always_on", "always_off", "trace_id_ratio", "parent_based_always_on"} {
		cfg := enabledConfig()
		cfg.Sampler.Type = sampler
		m := NewManager(cfg, nopLogger())
		assert.NotNil(t, m.createSampler(), sampler)
	}
}

func TestFlattenMap(t *testing.T) {
	flat := flattenMap(map[string]any{
		"deployment": map[string]any{"environment": "test"},
		"replicas":   3,
	}, "")

	assert.Equal(t, "test", flat["deployment.environment"])
	assert.Equal(t, "3", flat["replicas"])
}
