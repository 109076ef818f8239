package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

// createSpanExporter span exporter for the configured type
// Traces are exported to stdout; otlp falls back to noop for spans (metrics only over otlp)
func (m *Manager) createSpanExporter(_ context.Context) (trace.SpanExporter, error) {
	switch m.config.Exporter.Type {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	case "otlp", "noop":
		return &noopExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", m.config.Exporter.Type)
	}
}

// createMetricExporter metric exporter for the configured type (nil for noop)
func createMetricExporter(ctx context.Context, cfg Config) (sdkmetric.Exporter, error) {
	switch cfg.Exporter.Type {
	case "otlp":
		opts := []otlpmetricgrpc.Option{
			otlpmetricgrpc.WithEndpoint(cfg.Exporter.Endpoint),
			otlpmetricgrpc.WithTimeout(cfg.Exporter.Timeout),
		}
		if cfg.Exporter.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		if len(cfg.Exporter.Headers) > 0 {
			opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Exporter.Headers))
		}

		exporter, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return exporter, nil

	case "stdout":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return exporter, nil

	case "noop":
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported metrics exporter type: %s", cfg.Exporter.Type)
	}
}

// noopExporter dummy span exporter
type noopExporter struct{}

func (n *noopExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noopExporter) Shutdown(ctx context.Context) error {
	return nil
}
