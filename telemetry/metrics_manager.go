package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// MetricsManager Metrics 管理器
type MetricsManager struct {
	meterProvider *sdkmetric.MeterProvider
	config        MetricsConfig
}

// NewMetricsManager 创建 Metrics 管理器
// reader 为空时按 exporter 类型创建周期读取器；noop exporter 不挂载读取器
func NewMetricsManager(ctx context.Context, cfg Config, res *resource.Resource, reader sdkmetric.Reader) (*MetricsManager, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if reader == nil {
		exporter, err := createMetricExporter(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if exporter != nil {
			reader = sdkmetric.NewPeriodicReader(
				exporter,
				sdkmetric.WithInterval(cfg.Metrics.ExportInterval),
				sdkmetric.WithTimeout(cfg.Metrics.ExportTimeout),
			)
		}
	}
	if reader != nil {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)

	// 设置全局 MeterProvider
	otel.SetMeterProvider(mp)

	return &MetricsManager{
		meterProvider: mp,
		config:        cfg.Metrics,
	}, nil
}

// Shutdown 关闭 Metrics（最后一次导出）
func (m *MetricsManager) Shutdown(ctx context.Context) error {
	return m.meterProvider.Shutdown(ctx)
}

// MeterProvider 获取 MeterProvider
func (m *MetricsManager) MeterProvider() metric.MeterProvider {
	return m.meterProvider
}

// GetMeter 获取 Meter（供应用使用）
func (m *MetricsManager) GetMeter(name string) metric.Meter {
	return m.meterProvider.Meter(name)
}

// GetConfig 获取配置
func (m *MetricsManager) GetConfig() MetricsConfig {
	return m.config
}
