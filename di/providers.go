package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/KOMKZ/go-yogan-intercept/config"
	"github.com/KOMKZ/go-yogan-intercept/health"
	"github.com/KOMKZ/go-yogan-intercept/intercept"
	"github.com/KOMKZ/go-yogan-intercept/logger"
	"github.com/KOMKZ/go-yogan-intercept/telemetry"
	"github.com/samber/do/v2"
)

// ErrInterceptDisabled the intercept section has enabled=false
var ErrInterceptDisabled = errors.New("intercept component is disabled")

// ErrHealthDisabled the health section has enabled=false
var ErrHealthDisabled = errors.New("health check is disabled")

// ConfigOptions 配置组件选项
type ConfigOptions struct {
	ConfigFile string // YAML 配置文件路径（不存在时使用默认值）
	EnvPrefix  string // 环境变量前缀，如 YOGAN
	AppName    string // 健康检查元数据
	AppVersion string
}

// envBindings 支持环境变量覆盖的配置项（键名含下划线，需显式绑定）
var envBindings = map[string]string{
	"logger.level":                "LOGGER_LEVEL",
	"logger.encoding":             "LOGGER_ENCODING",
	"intercept.enabled":           "INTERCEPT_ENABLED",
	"intercept.max_interceptors":  "INTERCEPT_MAX_INTERCEPTORS",
	"intercept.max_listeners":     "INTERCEPT_MAX_LISTENERS",
	"intercept.metrics.enabled":   "INTERCEPT_METRICS_ENABLED",
	"telemetry.enabled":           "TELEMETRY_ENABLED",
	"telemetry.exporter.type":     "TELEMETRY_EXPORTER_TYPE",
	"telemetry.exporter.endpoint": "TELEMETRY_EXPORTER_ENDPOINT",
	"telemetry.metrics.enabled":   "TELEMETRY_METRICS_ENABLED",
	"health.enabled":              "HEALTH_ENABLED",
	"health.timeout":              "HEALTH_TIMEOUT",
}

// ProvideConfigLoader 创建 config.Loader 的 Provider（文件优先级 10，环境变量 50）
func ProvideConfigLoader(opts ConfigOptions) func(do.Injector) (*config.Loader, error) {
	return func(i do.Injector) (*config.Loader, error) {
		loader := config.NewLoader()
		if opts.ConfigFile != "" {
			loader.AddSource(config.NewFileSource(opts.ConfigFile, 10))
		}
		if opts.EnvPrefix != "" {
			env := config.NewEnvSource(opts.EnvPrefix, 50)
			for key, envKey := range envBindings {
				env.AddBinding(key, envKey)
			}
			loader.AddSource(env)
		}

		if err := loader.Load(); err != nil {
			return nil, err
		}
		return loader, nil
	}
}

// ProvideLoggerManager 创建 logger.Manager 的 Provider
// 依赖：config.Loader（读取 logger 段，缺失或无效时使用默认配置）
func ProvideLoggerManager(i do.Injector) (*logger.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return logger.NewManager(logger.DefaultManagerConfig()), nil
	}

	cfg := logger.DefaultManagerConfig()
	if err := loader.Unmarshal("logger", &cfg); err != nil {
		return logger.NewManager(logger.DefaultManagerConfig()), nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}
	return logger.NewManager(cfg), nil
}

// ProvideCtxLogger 创建命名 CtxZapLogger 的 Provider 工厂
func ProvideCtxLogger(moduleName string) func(do.Injector) (*logger.CtxZapLogger, error) {
	return func(i do.Injector) (*logger.CtxZapLogger, error) {
		mgr, err := do.Invoke[*logger.Manager](i)
		if err != nil {
			return logger.GetLogger(moduleName), nil
		}
		return mgr.GetLogger(moduleName), nil
	}
}

// ProvideTelemetryManager 创建并启动 telemetry.Manager
// 依赖：config.Loader, logger.Manager
func ProvideTelemetryManager(i do.Injector) (*telemetry.Manager, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}
	mgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}

	cfg := telemetry.DefaultConfig()
	if loader.IsSet("telemetry") {
		if err := loader.Unmarshal("telemetry", &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal telemetry config failed: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate telemetry config failed: %w", err)
	}

	tm := telemetry.NewManager(cfg, mgr.GetLogger("telemetry"))
	if err := tm.Start(context.Background()); err != nil {
		return nil, err
	}
	return tm, nil
}

// ProvideMetricsRegistry 统一 Metrics 注册中心（来自 telemetry.Manager）
func ProvideMetricsRegistry(i do.Injector) (*telemetry.MetricsRegistry, error) {
	tm, err := do.Invoke[*telemetry.Manager](i)
	if err != nil {
		return nil, err
	}
	return tm.GetMetricsRegistry(), nil
}

// ProvideInterceptComponent 初始化并启动拦截器组件，注册其指标
// 依赖：config.Loader, logger.Manager, telemetry.MetricsRegistry
func ProvideInterceptComponent(i do.Injector) (*intercept.Component, error) {
	loader, err := do.Invoke[*config.Loader](i)
	if err != nil {
		return nil, err
	}
	mgr, err := do.Invoke[*logger.Manager](i)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	comp := intercept.NewComponent()
	comp.SetLogger(mgr.GetLogger("intercept"))
	if err := comp.Init(ctx, loader); err != nil {
		return nil, err
	}
	if err := comp.Start(ctx); err != nil {
		return nil, err
	}

	registry, err := do.Invoke[*telemetry.MetricsRegistry](i)
	if err != nil {
		return nil, err
	}
	if comp.IsEnabled() {
		if err := registry.Register(comp); err != nil {
			return nil, err
		}
	}
	return comp, nil
}

// ProvideEmitter 根事件发射器（组件禁用时返回 ErrInterceptDisabled）
func ProvideEmitter(i do.Injector) (*intercept.Emitter, error) {
	comp, err := do.Invoke[*intercept.Component](i)
	if err != nil {
		return nil, err
	}
	if !comp.IsEnabled() {
		return nil, ErrInterceptDisabled
	}
	return comp.GetEmitter(), nil
}

// ProvideHealthAggregator 健康检查聚合器：拦截器组件为必需项，telemetry 为可选项
func ProvideHealthAggregator(opts ConfigOptions) func(do.Injector) (*health.Aggregator, error) {
	return func(i do.Injector) (*health.Aggregator, error) {
		loader, err := do.Invoke[*config.Loader](i)
		if err != nil {
			return nil, err
		}

		cfg := health.DefaultConfig()
		if loader.IsSet("health") {
			if err := loader.Unmarshal("health", &cfg); err != nil {
				return nil, fmt.Errorf("unmarshal health config failed: %w", err)
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validate health config failed: %w", err)
		}
		if !cfg.Enabled {
			return nil, ErrHealthDisabled
		}

		comp, err := do.Invoke[*intercept.Component](i)
		if err != nil {
			return nil, err
		}
		tm, err := do.Invoke[*telemetry.Manager](i)
		if err != nil {
			return nil, err
		}

		agg := health.NewAggregator(cfg.Timeout)
		agg.RegisterProvider(comp, false)
		agg.RegisterProvider(tm, true)
		agg.SetMetadata("service", opts.AppName)
		agg.SetMetadata("version", opts.AppVersion)
		return agg, nil
	}
}

// RegisterCoreProviders 按依赖层级注册所有 Provider（懒加载）
func RegisterCoreProviders(injector do.Injector, opts ConfigOptions) {
	// Layer 0: Config
	do.Provide(injector, ProvideConfigLoader(opts))

	// Layer 1: Logger
	do.Provide(injector, ProvideLoggerManager)
	do.Provide(injector, ProvideCtxLogger("yogan"))

	// Layer 2: Telemetry
	do.Provide(injector, ProvideTelemetryManager)
	do.Provide(injector, ProvideMetricsRegistry)

	// Layer 3: Intercept
	do.Provide(injector, ProvideInterceptComponent)
	do.Provide(injector, ProvideEmitter)

	// Layer 4: Health
	do.Provide(injector, ProvideHealthAggregator(opts))
}
