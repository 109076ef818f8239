package intercept

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-intercept/component"
	"github.com/KOMKZ/go-yogan-intercept/logger"
	"github.com/KOMKZ/go-yogan-intercept/validator"
	"go.opentelemetry.io/otel/metric"
)

// Component 拦截器组件
type Component struct {
	emitter *Emitter
	metrics *ChainMetrics
	logger  *logger.CtxZapLogger
	config  Config
}

// NewComponent 创建拦截器组件
func NewComponent() *Component {
	return &Component{}
}

// Name 返回组件名称
func (c *Component) Name() string {
	return component.ComponentIntercept
}

// DependsOn 返回依赖的组件
func (c *Component) DependsOn() []string {
	return []string{
		component.ComponentConfig,
		component.ComponentLogger,
		"optional:" + component.ComponentTelemetry,
	}
}

// Init 初始化组件
func (c *Component) Init(ctx context.Context, loader component.ConfigLoader) error {
	if c.logger == nil {
		c.logger = logger.GetLogger("intercept")
	}
	c.logger.DebugCtx(ctx, "🔧 拦截器组件开始初始化...")

	c.config = DefaultConfig()
	if err := loader.Unmarshal("intercept", &c.config); err != nil {
		return fmt.Errorf("load intercept config: %w", err)
	}
	if err := validator.Validate(c.config); err != nil {
		return err
	}

	if !c.config.Enabled {
		c.logger.InfoCtx(ctx, "⏭️ 拦截器组件已禁用")
		return nil
	}

	c.metrics = NewChainMetrics(c.config.Metrics)
	opts := append(c.config.Options(), WithLogger(c.logger), WithMetrics(c.metrics))
	c.emitter = New(opts...)

	c.logger.InfoCtx(ctx, fmt.Sprintf("✅ 拦截器组件初始化完成 (max_interceptors=%d)", c.config.MaxInterceptors))
	return nil
}

// SetLogger 设置日志实例（Init 之前调用，用于 DI 模式复用已创建的 Logger）
func (c *Component) SetLogger(l *logger.CtxZapLogger) {
	c.logger = l
}

// Start 启动组件
func (c *Component) Start(ctx context.Context) error {
	return nil
}

// Stop 停止组件：移除所有拦截器（允许重复调用）
func (c *Component) Stop(ctx context.Context) error {
	if c.emitter != nil {
		c.emitter.RemoveAllInterceptors()
		c.logger.InfoCtx(ctx, "✅ 拦截器组件已停止")
	}
	return nil
}

// Shutdown samber/do 关闭钩子
func (c *Component) Shutdown(ctx context.Context) error {
	return c.Stop(ctx)
}

// GetEmitter 获取事件发射器（组件禁用时为 nil）
func (c *Component) GetEmitter() *Emitter {
	return c.emitter
}

// IsEnabled 是否启用
func (c *Component) IsEnabled() bool {
	return c.config.Enabled && c.emitter != nil
}

// MetricsName implements component.MetricsProvider
func (c *Component) MetricsName() string {
	return "intercept"
}

// IsMetricsEnabled implements component.MetricsProvider
func (c *Component) IsMetricsEnabled() bool {
	return c.metrics.IsMetricsEnabled()
}

// RegisterMetrics implements component.MetricsProvider
func (c *Component) RegisterMetrics(meter metric.Meter) error {
	if c.metrics == nil {
		return nil
	}
	return c.metrics.RegisterMetrics(meter)
}

var (
	_ component.Component       = (*Component)(nil)
	_ component.MetricsProvider = (*Component)(nil)
	_ component.MetricsProvider = (*ChainMetrics)(nil)
	_ Base                      = (*Emitter)(nil)
)
