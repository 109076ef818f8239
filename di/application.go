package di

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/KOMKZ/go-yogan-intercept/config"
	"github.com/KOMKZ/go-yogan-intercept/health"
	"github.com/KOMKZ/go-yogan-intercept/intercept"
	"github.com/KOMKZ/go-yogan-intercept/logger"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// AppState 应用状态
type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

// String 状态字符串表示
func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// DoApplication 基于 samber/do 的应用框架
type DoApplication struct {
	injector *do.RootScope

	// 配置管理
	configFile   string
	envPrefix    string
	configLoader *config.Loader

	// 日志
	logger *logger.CtxZapLogger

	// 生命周期
	ctx    context.Context
	cancel context.CancelFunc
	state  AppState
	mu     sync.RWMutex

	// 应用元信息
	name    string
	version string

	// 回调函数
	onSetup    func(*DoApplication) error
	onReady    func(*DoApplication) error
	onShutdown func(context.Context) error
}

// DoAppOption 应用选项函数
type DoAppOption func(*DoApplication)

// WithConfigFile 设置配置文件
func WithConfigFile(path string) DoAppOption {
	return func(app *DoApplication) {
		app.configFile = path
	}
}

// WithEnvPrefix 设置环境变量前缀
func WithEnvPrefix(prefix string) DoAppOption {
	return func(app *DoApplication) {
		app.envPrefix = prefix
	}
}

// WithName 设置应用名称
func WithName(name string) DoAppOption {
	return func(app *DoApplication) {
		app.name = name
	}
}

// WithVersion 设置应用版本
func WithVersion(version string) DoAppOption {
	return func(app *DoApplication) {
		app.version = version
	}
}

// WithOnSetup 设置 Setup 回调
func WithOnSetup(fn func(*DoApplication) error) DoAppOption {
	return func(app *DoApplication) {
		app.onSetup = fn
	}
}

// WithOnReady 设置 Ready 回调
func WithOnReady(fn func(*DoApplication) error) DoAppOption {
	return func(app *DoApplication) {
		app.onReady = fn
	}
}

// WithOnShutdown 设置 Shutdown 回调
func WithOnShutdown(fn func(context.Context) error) DoAppOption {
	return func(app *DoApplication) {
		app.onShutdown = fn
	}
}

// NewDoApplication 创建基于 samber/do 的应用实例
func NewDoApplication(opts ...DoAppOption) *DoApplication {
	ctx, cancel := context.WithCancel(context.Background())

	app := &DoApplication{
		injector:  do.New(),
		envPrefix: "YOGAN",
		ctx:       ctx,
		cancel:    cancel,
		state:     StateInit,
		name:      "intercept-app",
		version:   "0.0.1",
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// Apply 在 Setup 之前追加选项（如命令行参数解析后的配置路径）
func (app *DoApplication) Apply(opts ...DoAppOption) {
	for _, opt := range opts {
		opt(app)
	}
}

// Injector 获取 do.Injector
func (app *DoApplication) Injector() *do.RootScope {
	return app.injector
}

// Logger 获取日志实例
func (app *DoApplication) Logger() *logger.CtxZapLogger {
	return app.logger
}

// ConfigLoader 获取配置加载器
func (app *DoApplication) ConfigLoader() *config.Loader {
	return app.configLoader
}

// Emitter 获取根事件发射器（拦截器组件禁用时返回 ErrInterceptDisabled）
func (app *DoApplication) Emitter() (*intercept.Emitter, error) {
	return do.Invoke[*intercept.Emitter](app.injector)
}

// Health 执行健康检查（health.enabled=false 时返回 ErrHealthDisabled）
func (app *DoApplication) Health(ctx context.Context) (*health.Response, error) {
	agg, err := do.Invoke[*health.Aggregator](app.injector)
	if err != nil {
		return nil, err
	}
	return agg.Check(ctx), nil
}

// Context 获取应用上下文（Shutdown 时取消）
func (app *DoApplication) Context() context.Context {
	return app.ctx
}

// State 获取当前状态
func (app *DoApplication) State() AppState {
	app.mu.RLock()
	defer app.mu.RUnlock()
	return app.state
}

func (app *DoApplication) setState(state AppState) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.state = state
}

// Setup 初始化阶段
// 1. 注册 Provider
// 2. 加载配置
// 3. 初始化日志
func (app *DoApplication) Setup() error {
	app.setState(StateSetup)

	RegisterCoreProviders(app.injector, ConfigOptions{
		ConfigFile: app.configFile,
		EnvPrefix:  app.envPrefix,
		AppName:    app.name,
		AppVersion: app.version,
	})

	loader, err := do.Invoke[*config.Loader](app.injector)
	if err != nil {
		return fmt.Errorf("初始化配置失败: %w", err)
	}
	app.configLoader = loader

	appLogger, err := do.Invoke[*logger.CtxZapLogger](app.injector)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	app.logger = appLogger.With(zap.String("app", app.name))

	app.logger.Debug("🔧 应用初始化中...",
		zap.String("version", app.version),
		zap.String("config_file", app.configFile),
	)

	if app.onSetup != nil {
		if err := app.onSetup(app); err != nil {
			return fmt.Errorf("setup 回调失败: %w", err)
		}
	}
	return nil
}

// Start 启动应用：触发拦截器组件（及其依赖）的懒加载
func (app *DoApplication) Start() error {
	if _, err := do.Invoke[*intercept.Component](app.injector); err != nil {
		return fmt.Errorf("启动拦截器组件失败: %w", err)
	}

	app.setState(StateRunning)
	app.logger.Debug("✅ 应用启动完成", zap.String("state", app.State().String()))

	if app.onReady != nil {
		if err := app.onReady(app); err != nil {
			return fmt.Errorf("ready 回调失败: %w", err)
		}
	}
	return nil
}

// Run 运行应用（阻塞等待信号）
func (app *DoApplication) Run() error {
	if err := app.Setup(); err != nil {
		return err
	}
	if err := app.Start(); err != nil {
		return err
	}

	app.waitForSignal()
	return nil
}

func (app *DoApplication) waitForSignal() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		app.logger.Info("📥 收到退出信号", zap.String("signal", sig.String()))
	case <-app.ctx.Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		app.logger.Error("关闭失败", zap.Error(err))
	}
}

// Shutdown 优雅关闭
// samber/do 按依赖顺序反向关闭：拦截器 → telemetry → logger
func (app *DoApplication) Shutdown(ctx context.Context) error {
	if app.State() == StateStopped {
		return nil
	}
	app.setState(StateStopping)

	if app.onShutdown != nil {
		if err := app.onShutdown(ctx); err != nil && app.logger != nil {
			app.logger.Warn("shutdown 回调失败", zap.Error(err))
		}
	}

	app.cancel()
	if app.logger != nil {
		app.logger.Debug("🔄 关闭 DI 容器")
	}
	app.injector.Shutdown()

	app.setState(StateStopped)
	return nil
}
