package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/KOMKZ/go-yogan-intercept/event"
	"github.com/KOMKZ/go-yogan-intercept/health"
	"github.com/KOMKZ/go-yogan-intercept/intercept"
	"github.com/KOMKZ/go-yogan-intercept/telemetry"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const baseConfig = `
logger:
  level: error
  encoding: console
intercept:
  max_interceptors: 3
`

func TestNewDoApplication(t *testing.T) {
	app := NewDoApplication()
	assert.NotNil(t, app.Injector())
	assert.Equal(t, StateInit, app.State())
	assert.Equal(t, "intercept-app", app.name)
	assert.Equal(t, "YOGAN", app.envPrefix)

	app = NewDoApplication(WithName("demo"), WithVersion("1.2.3"), WithConfigFile("x.yaml"), WithEnvPrefix("TEST"))
	assert.Equal(t, "demo", app.name)
	assert.Equal(t, "1.2.3", app.version)
	assert.Equal(t, "x.yaml", app.configFile)
	assert.Equal(t, "TEST", app.envPrefix)

	app.Apply(WithConfigFile("y.yaml"))
	assert.Equal(t, "y.yaml", app.configFile)
}

func TestAppState_String(t *testing.T) {
	assert.Equal(t, "Init", StateInit.String())
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Stopped", StateStopped.String())
	assert.Equal(t, "Unknown", AppState(42).String())
}

func TestDoApplication_Lifecycle(t *testing.T) {
	var calls []string
	app := NewDoApplication(
		WithConfigFile(writeConfig(t, baseConfig)),
		WithEnvPrefix("DI_LIFECYCLE_TEST"),
		WithOnSetup(func(*DoApplication) error { calls = append(calls, "setup"); return nil }),
		WithOnReady(func(*DoApplication) error { calls = append(calls, "ready"); return nil }),
		WithOnShutdown(func(context.Context) error { calls = append(calls, "shutdown"); return nil }),
	)

	require.NoError(t, app.Setup())
	assert.Equal(t, StateSetup, app.State())
	require.NotNil(t, app.ConfigLoader())
	require.NotNil(t, app.Logger())
	assert.Equal(t, 3, app.ConfigLoader().GetInt("intercept.max_interceptors"))

	require.NoError(t, app.Start())
	assert.Equal(t, StateRunning, app.State())

	em, err := app.Emitter()
	require.NoError(t, err)
	assert.Equal(t, 3, em.MaxInterceptors())

	var got []any
	em.On("data", event.NewListener(func(args ...any) { got = args }))
	em.Intercept("data", intercept.NewInterceptor(func(next intercept.Next, args ...any) {
		next(nil, "seen")
	}))
	assert.True(t, em.Emit("data", "raw"))
	assert.Equal(t, []any{"seen"}, got)

	require.NoError(t, app.Shutdown(context.Background()))
	assert.Equal(t, StateStopped, app.State())
	assert.Zero(t, em.InterceptorCount("data"))
	assert.Error(t, app.Context().Err())
	assert.Equal(t, []string{"setup", "ready", "shutdown"}, calls)

	require.NoError(t, app.Shutdown(context.Background()))
	assert.Equal(t, []string{"setup", "ready", "shutdown"}, calls)
}

func TestDoApplication_EnvOverride(t *testing.T) {
	t.Setenv("DI_ENV_TEST_INTERCEPT_MAX_INTERCEPTORS", "7")

	app := NewDoApplication(WithConfigFile(writeConfig(t, baseConfig)), WithEnvPrefix("DI_ENV_TEST"))
	require.NoError(t, app.Setup())
	require.NoError(t, app.Start())
	defer func() { _ = app.Shutdown(context.Background()) }()

	em, err := app.Emitter()
	require.NoError(t, err)
	assert.Equal(t, 7, em.MaxInterceptors())
}

func TestDoApplication_MissingConfigFileUsesDefaults(t *testing.T) {
	app := NewDoApplication(WithConfigFile(filepath.Join(t.TempDir(), "absent.yaml")), WithEnvPrefix("DI_ABSENT_TEST"))
	require.NoError(t, app.Setup())
	require.NoError(t, app.Start())
	defer func() { _ = app.Shutdown(context.Background()) }()

	em, err := app.Emitter()
	require.NoError(t, err)
	assert.Equal(t, intercept.DefaultMaxInterceptors, em.MaxInterceptors())
}

func TestDoApplication_InterceptDisabled(t *testing.T) {
	app := NewDoApplication(WithConfigFile(writeConfig(t, `
intercept:
  enabled: false
`)), WithEnvPrefix("DI_DISABLED_TEST"))
	require.NoError(t, app.Setup())
	require.NoError(t, app.Start())
	defer func() { _ = app.Shutdown(context.Background()) }()

	em, err := app.Emitter()
	assert.Error(t, err)
	assert.Nil(t, em)
}

func TestDoApplication_InvalidInterceptConfig(t *testing.T) {
	app := NewDoApplication(WithConfigFile(writeConfig(t, `
intercept:
  max_interceptors: -1
`)), WithEnvPrefix("DI_INVALID_TEST"))
	require.NoError(t, app.Setup())
	defer func() { _ = app.Shutdown(context.Background()) }()

	assert.Error(t, app.Start())
}

func TestDoApplication_CallbackErrors(t *testing.T) {
	app := NewDoApplication(
		WithConfigFile(writeConfig(t, baseConfig)),
		WithEnvPrefix("DI_CALLBACK_TEST"),
		WithOnSetup(func(*DoApplication) error { return assert.AnError }),
	)
	assert.ErrorIs(t, app.Setup(), assert.AnError)
	_ = app.Shutdown(context.Background())
}

func TestDoApplication_TelemetryRegistersChainMetrics(t *testing.T) {
	app := NewDoApplication(WithConfigFile(writeConfig(t, baseConfig+`
  metrics:
    enabled: true
telemetry:
  enabled: true
  service_name: di-test
  exporter:
    type: noop
  batch:
    enabled: false
  metrics:
    enabled: true
    export_interval: 1s
`)), WithEnvPrefix("DI_TELEMETRY_TEST"))
	require.NoError(t, app.Setup())
	require.NoError(t, app.Start())
	defer func() { _ = app.Shutdown(context.Background()) }()

	registry, err := do.Invoke[*telemetry.MetricsRegistry](app.Injector())
	require.NoError(t, err)
	assert.True(t, registry.IsEnabled())
	assert.Equal(t, 1, registry.GetProviderCount())

	comp, err := do.Invoke[*intercept.Component](app.Injector())
	require.NoError(t, err)
	assert.True(t, comp.IsMetricsEnabled())
}

func TestDoApplication_Health(t *testing.T) {
	app := NewDoApplication(
		WithConfigFile(writeConfig(t, baseConfig)),
		WithEnvPrefix("DI_HEALTH_TEST"),
		WithName("health-app"),
		WithVersion("9.9.9"),
	)
	require.NoError(t, app.Setup())
	require.NoError(t, app.Start())
	defer func() { _ = app.Shutdown(context.Background()) }()

	resp, err := app.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, health.StatusHealthy, resp.Status)
	assert.Contains(t, resp.Checks, "intercept")
	assert.Contains(t, resp.Checks, "telemetry")
	assert.Equal(t, "health-app", resp.Metadata["service"])
	assert.Equal(t, "9.9.9", resp.Metadata["version"])

	em, err := app.Emitter()
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		em.Intercept("leaky", intercept.NewInterceptor(func(next intercept.Next, args ...any) { next(nil, args...) }))
	}

	resp, err = app.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, health.StatusUnhealthy, resp.Status)
	assert.Contains(t, resp.Checks["intercept"].Error, "leaky=4")
}

func TestDoApplication_HealthDisabled(t *testing.T) {
	app := NewDoApplication(WithConfigFile(writeConfig(t, `
health:
  enabled: false
`)), WithEnvPrefix("DI_HEALTH_DISABLED_TEST"))
	require.NoError(t, app.Setup())
	require.NoError(t, app.Start())
	defer func() { _ = app.Shutdown(context.Background()) }()

	_, err := app.Health(context.Background())
	assert.ErrorContains(t, err, ErrHealthDisabled.Error())
}
