// Command intercept-demo pipes stdin lines through an interceptor chain
package main

import (
	"context"
	"os"

	"github.com/KOMKZ/go-yogan-intercept/application"
	"github.com/KOMKZ/go-yogan-intercept/di"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newApp() *application.CLIApplication {
	rootCmd := &cobra.Command{
		Use:           "intercept-demo",
		Short:         "Interceptor chain demo over stdin",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app := application.NewCLI(rootCmd,
		di.WithName("intercept-demo"),
		di.WithVersion(version),
	)
	app.AddCommand(newPipeCmd(app), newHealthCmd(app), newVersionCmd())
	return app
}

func main() {
	app := newApp()
	if err := app.Execute(context.Background()); err != nil {
		app.GetRootCmd().PrintErrln("Error:", err)
		os.Exit(1)
	}
}
