package telemetry

import (
	"fmt"
	"time"
)

// Config OpenTelemetry configuration
type Config struct {
	Enabled        bool           `mapstructure:"enabled"`             // Is enabled
	ServiceName    string         `mapstructure:"service_name"`        // service name
	ServiceVersion string         `mapstructure:"service_version"`     // service version
	Exporter       ExporterConfig `mapstructure:"exporter"`            // exporter configuration
	Sampler        SamplerConfig  `mapstructure:"sampler"`             // Sampling configuration
	ResourceAttrs  map[string]any `mapstructure:"resource_attributes"` // Resource attributes (support nesting)
	Batch          BatchConfig    `mapstructure:"batch"`               // Span batch processing
	Metrics        MetricsConfig  `mapstructure:"metrics"`             // Metrics configuration
}

// ExporterConfig exporter configuration
type ExporterConfig struct {
	Type     string            `mapstructure:"type"`     // otlp, stdout, noop
	Endpoint string            `mapstructure:"endpoint"` // otlp endpoint
	Insecure bool              `mapstructure:"insecure"` // plaintext otlp connection
	Timeout  time.Duration     `mapstructure:"timeout"`  // Export timeout
	Headers  map[string]string `mapstructure:"headers"`  // Custom headers (for authentication etc.)
}

// SamplerConfig Sampling configuration
type SamplerConfig struct {
	Type  string  `mapstructure:"type"`  // always_on, always_off, trace_id_ratio, parent_based_always_on
	Ratio float64 `mapstructure:"ratio"` // effective only with trace_id_ratio
}

// BatchConfig span batch processing configuration
type BatchConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	ScheduleDelay time.Duration `mapstructure:"schedule_delay"`
	ExportTimeout time.Duration `mapstructure:"export_timeout"`
}

// MetricsConfig Metrics configuration
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`         // Whether Metrics is enabled
	ExportInterval time.Duration     `mapstructure:"export_interval"` // export interval
	ExportTimeout  time.Duration     `mapstructure:"export_timeout"`  // Export timeout
	Namespace      string            `mapstructure:"namespace"`       // meter name prefix
	Labels         map[string]string `mapstructure:"labels"`          // Global labels (env, region, etc.)
}

// DefaultConfig returns the default configuration (telemetry off)
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "intercept-service",
		ServiceVersion: "1.0.0",
		Exporter: ExporterConfig{
			Type:     "stdout",
			Endpoint: "localhost:4317",
			Insecure: true,
			Timeout:  10 * time.Second,
		},
		Sampler: SamplerConfig{
			Type:  "parent_based_always_on",
			Ratio: 1.0,
		},
		ResourceAttrs: make(map[string]any),
		Batch: BatchConfig{
			Enabled:       true,
			ScheduleDelay: 5 * time.Second,
			ExportTimeout: 30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:        false,
			ExportInterval: 10 * time.Second,
			ExportTimeout:  5 * time.Second,
			Namespace:      "yogan",
			Labels:         make(map[string]string),
		},
	}
}

// Validate checks the configuration; a disabled configuration is always valid
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required when telemetry is enabled")
	}

	switch c.Exporter.Type {
	case "otlp", "stdout", "noop":
	default:
		return fmt.Errorf("unsupported exporter type: %s (supported: otlp, stdout, noop)", c.Exporter.Type)
	}

	if c.Exporter.Type == "otlp" && c.Exporter.Endpoint == "" {
		return fmt.Errorf("exporter endpoint is required for otlp exporter")
	}

	switch c.Sampler.Type {
	case "always_on", "always_off", "trace_id_ratio", "parent_based_always_on":
	default:
		return fmt.Errorf("unsupported sampler type: %s", c.Sampler.Type)
	}

	if c.Sampler.Type == "trace_id_ratio" && (c.Sampler.Ratio < 0 || c.Sampler.Ratio > 1) {
		return fmt.Errorf("sampler ratio must be between 0 and 1, got: %f", c.Sampler.Ratio)
	}

	if c.Metrics.Enabled && c.Metrics.ExportInterval <= 0 {
		return fmt.Errorf("metrics export_interval must be positive, got: %s", c.Metrics.ExportInterval)
	}

	return nil
}
