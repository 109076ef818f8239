// Package application runs a cobra command tree on top of di.DoApplication
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/KOMKZ/go-yogan-intercept/di"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// CLIApplication CLI 应用（组合 DoApplication + cobra 根命令）
//
// Setup 和 Start 在根命令的 PersistentPreRunE 中执行，子命令不应再定义自己的 PersistentPreRunE。
type CLIApplication struct {
	*di.DoApplication

	rootCmd    *cobra.Command
	configFile string
	envPrefix  string
}

// NewCLI 创建 CLI 应用，并在根命令上注册 --config / --env-prefix
func NewCLI(rootCmd *cobra.Command, opts ...di.DoAppOption) *CLIApplication {
	c := &CLIApplication{
		DoApplication: di.NewDoApplication(opts...),
		rootCmd:       rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "YAML configuration file")
	flags.StringVar(&c.envPrefix, "env-prefix", "", "environment variable prefix (default YOGAN)")
	return c
}

// Execute 解析命令行并执行命令，无论成功与否都会优雅关闭
func (c *CLIApplication) Execute(ctx context.Context) error {
	c.rootCmd.PersistentPreRunE = c.setup

	err := c.rootCmd.ExecuteContext(ctx)
	shutdownErr := c.gracefulShutdown()

	if err != nil {
		return err
	}
	return shutdownErr
}

func (c *CLIApplication) setup(cmd *cobra.Command, _ []string) error {
	flags := c.rootCmd.PersistentFlags()
	if flags.Changed("config") {
		c.Apply(di.WithConfigFile(c.configFile))
	}
	if flags.Changed("env-prefix") {
		c.Apply(di.WithEnvPrefix(c.envPrefix))
	}

	if err := c.Setup(); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}
	if err := c.Start(); err != nil {
		return fmt.Errorf("start failed: %w", err)
	}

	c.Logger().DebugCtx(cmd.Context(), "✅ CLI application initialized", zap.String("command", cmd.Name()))
	return nil
}

// gracefulShutdown CLI 命令执行很快，超时时间较短
func (c *CLIApplication) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Shutdown(ctx)
}

// GetRootCmd 获取根命令
func (c *CLIApplication) GetRootCmd() *cobra.Command {
	return c.rootCmd
}

// AddCommand 添加子命令（链式调用）
func (c *CLIApplication) AddCommand(cmds ...*cobra.Command) *CLIApplication {
	c.rootCmd.AddCommand(cmds...)
	return c
}
