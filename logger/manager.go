package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager Logger manager (one CtxZapLogger per module)
type Manager struct {
	baseConfig ManagerConfig
	loggers    map[string]*CtxZapLogger
	zapLoggers map[string]*zap.Logger
	writers    map[string][]*lumberjack.Logger // module -> file writers (closed in CloseAll)
	mu         sync.RWMutex
}

var (
	globalManager *Manager
	managerMu     sync.Mutex
)

// NewManager creates an independent Manager instance
// Zero-valued fields in cfg are filled with defaults
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		baseConfig: cfg,
		loggers:    make(map[string]*CtxZapLogger),
		zapLoggers: make(map[string]*zap.Logger),
		writers:    make(map[string][]*lumberjack.Logger),
	}
}

// InitManager installs the global Logger manager, replacing any previous one
func InitManager(cfg ManagerConfig) {
	managerMu.Lock()
	defer managerMu.Unlock()

	if globalManager != nil {
		globalManager.CloseAll()
	}
	globalManager = NewManager(cfg)
}

// GetLogger returns the CtxZapLogger of a module (thread-safe, created on demand)
// The returned Logger already carries the module field
func (m *Manager) GetLogger(moduleName string) *CtxZapLogger {
	m.mu.RLock()
	if l, exists := m.loggers[moduleName]; exists {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if l, exists := m.loggers[moduleName]; exists {
		return l
	}

	zapLogger := m.createLogger(moduleName).With(zap.String("module", moduleName))

	ctxLogger := &CtxZapLogger{
		// skip the CtxZapLogger wrapper frame
		base:   zapLogger.WithOptions(zap.AddCallerSkip(1)),
		module: moduleName,
		config: &m.baseConfig,
	}

	m.loggers[moduleName] = ctxLogger
	m.zapLoggers[moduleName] = zapLogger
	return ctxLogger
}

// createLogger builds the zap.Logger of a module
func (m *Manager) createLogger(moduleName string) *zap.Logger {
	cfg := m.baseConfig
	encoder := createEncoder(cfg.Encoding)
	level := ParseLevel(cfg.Level)

	var cores []zapcore.Core
	if cfg.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}

	if cfg.EnableFile {
		infoWriter := m.fileWriter(moduleName, cfg.moduleFilePath(moduleName, "info"))
		cores = append(cores, zapcore.NewCore(encoder, infoWriter,
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= level && lvl < zapcore.ErrorLevel
			})))

		errorWriter := m.fileWriter(moduleName, cfg.moduleFilePath(moduleName, "error"))
		cores = append(cores, zapcore.NewCore(encoder, errorWriter,
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
				return lvl >= zapcore.ErrorLevel
			})))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	var opts []zap.Option
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

// fileWriter creates a rotating file writer (lumberjack) and keeps it for CloseAll
func (m *Manager) fileWriter(moduleName, filename string) zapcore.WriteSyncer {
	_ = os.MkdirAll(filepath.Dir(filename), 0o755)

	lumberLogger := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    m.baseConfig.MaxSize,
		MaxBackups: m.baseConfig.MaxBackups,
		MaxAge:     m.baseConfig.MaxAge,
		Compress:   m.baseConfig.Compress,
		LocalTime:  true,
	}
	m.writers[moduleName] = append(m.writers[moduleName], lumberLogger)
	return zapcore.AddSync(lumberLogger)
}

// CloseAll flushes buffers and closes every file handle
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.zapLoggers {
		_ = l.Sync()
	}
	for _, writers := range m.writers {
		for _, w := range writers {
			_ = w.Close()
		}
	}

	m.loggers = make(map[string]*CtxZapLogger)
	m.zapLoggers = make(map[string]*zap.Logger)
	m.writers = make(map[string][]*lumberjack.Logger)
}

// Shutdown samber/do shutdown hook
func (m *Manager) Shutdown() error {
	m.CloseAll()
	return nil
}

func createEncoder(encoding string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if encoding == "console" {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

// GetLogger returns the module logger from the global manager
// The global manager is created with default configuration on first use
func GetLogger(moduleName string) *CtxZapLogger {
	managerMu.Lock()
	if globalManager == nil {
		globalManager = NewManager(DefaultManagerConfig())
	}
	m := globalManager
	managerMu.Unlock()

	return m.GetLogger(moduleName)
}

// CloseAll closes the global manager's loggers (call on application exit)
func CloseAll() {
	managerMu.Lock()
	defer managerMu.Unlock()

	if globalManager != nil {
		globalManager.CloseAll()
	}
}
